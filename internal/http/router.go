package http

import (
	"github.com/akilcn01-oss/Inventory-Management/internal/http/controller"
	"github.com/akilcn01-oss/Inventory-Management/internal/http/middleware"
	"github.com/akilcn01-oss/Inventory-Management/internal/service"
	"github.com/gin-gonic/gin"
)

// InitRouter registers the inventory API on server. A nil limiter disables rate limiting.
func InitRouter(server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController, limiter *middleware.RateLimiter) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery())
	server.Use(middleware.Logger())
	server.Use(middleware.CORS())
	if limiter != nil {
		server.Use(limiter.Middleware())
	}

	server.GET("/", ctr.Root)
	server.GET("/health", ctr.Health)

	// Product endpoints
	products := server.Group("/products")
	{
		products.GET("", productCtr.ListProducts)
		products.POST("", productCtr.CreateProduct)
		products.GET("/:id", productCtr.GetProduct)
		products.PUT("/:id", productCtr.UpdateProduct)
		products.DELETE("/:id", productCtr.DeleteProduct)
	}

	server.GET("/dashboard/stats", productCtr.DashboardStats)
	server.GET("/categories", productCtr.Categories)

	documents := server.Group("/documents/products")
	{
		documents.GET("/:kind", productCtr.Report)
	}

	return server
}

// NewEngine builds a gin engine serving the API backed by productService.
func NewEngine(productService *service.ProductService, limiter *middleware.RateLimiter) *gin.Engine {
	server := gin.New()
	server.HandleMethodNotAllowed = true
	return InitRouter(server,
		controller.New(productService),
		controller.NewProductController(productService),
		limiter)
}
