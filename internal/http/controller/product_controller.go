package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/akilcn01-oss/Inventory-Management/internal/model"
	"github.com/akilcn01-oss/Inventory-Management/internal/repository"
	"github.com/akilcn01-oss/Inventory-Management/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService *service.ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ProductRequest is the body of create and update requests. Updates replace every field.
type ProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Quantity    int     `json:"quantity" binding:"gte=0"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Description string  `json:"description" binding:"max=1000"`
}

func (r ProductRequest) draft() model.Product {
	return model.Product{
		Name:        r.Name,
		Category:    r.Category,
		Quantity:    r.Quantity,
		Price:       r.Price,
		Description: r.Description,
	}
}

// ListProductsRequest represents the query parameters for listing products.
type ListProductsRequest struct {
	Skip     int    `form:"skip"`
	Limit    *int   `form:"limit"`
	Category string `form:"category"`
	Search   string `form:"search"`
	LowStock bool   `form:"low_stock"`
}

// CategoriesResponse wraps the category list.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ListProducts handles GET /products.
func (pc *ProductController) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	limit := repository.DefaultLimit
	if req.Limit != nil {
		if *req.Limit < 1 {
			abortWithDetail(c, http.StatusUnprocessableEntity, "limit must be between 1 and 1000")
			return
		}
		limit = *req.Limit
	}

	query := repository.NewQuery().WithCategory(req.Category).WithSearch(req.Search)
	if req.LowStock {
		query.WithLowStockBelow(pc.productService.LowStockThreshold())
	}
	if err := query.ApplyPagination(req.Skip, limit); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	products, err := pc.productService.ListProducts(c.Request.Context(), *query)
	if err != nil {
		respondError(c, err, "Failed to fetch products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /products/:id.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := pc.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /products. The API answers 200, not 201, on success.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	req, ok := bindProduct(c)
	if !ok {
		return
	}

	created, err := pc.productService.CreateProduct(c.Request.Context(), req.draft())
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusOK, created)
}

// UpdateProduct handles PUT /products/:id.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	req, ok := bindProduct(c)
	if !ok {
		return
	}

	updated, err := pc.productService.UpdateProduct(c.Request.Context(), id, req.draft())
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteProduct handles DELETE /products/:id.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	deleted, err := pc.productService.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Product '%s' deleted successfully", deleted.Name)})
}

// DashboardStats handles GET /dashboard/stats.
func (pc *ProductController) DashboardStats(c *gin.Context) {
	stats, err := pc.productService.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch dashboard statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Categories handles GET /categories.
func (pc *ProductController) Categories(c *gin.Context) {
	categories, err := pc.productService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, CategoriesResponse{Categories: categories})
}

// Report handles GET /documents/products/:kind and serves the document as an attachment.
func (pc *ProductController) Report(c *gin.Context) {
	kind, err := model.ParseReportKind(c.Param("kind"))
	if err != nil {
		abortWithDetail(c, http.StatusNotFound, err.Error())
		return
	}

	data, err := pc.productService.Report(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err, "Failed to generate report")
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+kind.FileName(time.Now()))
	c.Data(http.StatusOK, service.ReportContentType, data)
}

func productID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, "product id must be an integer")
		return 0, false
	}
	return id, true
}

func bindProduct(c *gin.Context) (ProductRequest, bool) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			abortWithDetail(c, http.StatusUnprocessableEntity, fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
			return req, false
		}
		abortWithDetail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return req, false
	}
	return req, true
}

func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		abortWithDetail(c, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", c.Param("id")))
	case errors.Is(err, model.ErrValidation), errors.Is(err, repository.ErrInvalidPagination):
		abortWithDetail(c, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error(fallback, slog.Any("err", err), slog.String("path", c.Request.URL.Path))
		abortWithDetail(c, http.StatusInternalServerError, fallback)
	}
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
