package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/akilcn01-oss/Inventory-Management/internal/metrics"
	"github.com/akilcn01-oss/Inventory-Management/internal/model"
	"github.com/akilcn01-oss/Inventory-Management/internal/repository"
)

const (
	// RecentWindow is how far back a product counts as recently added.
	RecentWindow = 7 * 24 * time.Hour
	// TopCategoriesLimit is the number of categories reported on the dashboard.
	TopCategoriesLimit = 5
)

// EventPublisher delivers product change events. Implementations must be safe for concurrent use.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event model.ProductEvent) error
}

type ProductService struct {
	repo              repository.ProductRepository
	publisher         EventPublisher
	lowStockThreshold int
	now               func() time.Time
}

// NewProductService creates the service. publisher may be nil to disable change events.
func NewProductService(repo repository.ProductRepository, publisher EventPublisher, lowStockThreshold int) *ProductService {
	return &ProductService{
		repo:              repo,
		publisher:         publisher,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

// WithClock replaces the time source. It is meant for tests.
func (ps *ProductService) WithClock(now func() time.Time) *ProductService {
	ps.now = now
	return ps
}

func (ps *ProductService) LowStockThreshold() int {
	return ps.lowStockThreshold
}

func (ps *ProductService) Ping(ctx context.Context) error {
	return ps.repo.Ping(ctx)
}

func (ps *ProductService) ListProducts(ctx context.Context, query repository.Query) ([]model.Product, error) {
	return ps.repo.List(ctx, query)
}

func (ps *ProductService) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	return ps.repo.FindByID(ctx, id)
}

func (ps *ProductService) CreateProduct(ctx context.Context, draft model.Product) (*model.Product, error) {
	product, err := normalize(draft)
	if err != nil {
		return nil, err
	}
	ts := model.NewTimestamp(ps.now())
	product.ID = 0
	product.CreatedAt = ts
	product.UpdatedAt = ts

	created, err := ps.repo.Create(ctx, &product)
	if err != nil {
		return nil, storageError(err)
	}

	metrics.ProductsCreated.Inc()
	ps.publish(ctx, model.EventActionCreated, *created)
	return created, nil
}

// UpdateProduct replaces every mutable field of product id with draft.
func (ps *ProductService) UpdateProduct(ctx context.Context, id int, draft model.Product) (*model.Product, error) {
	product, err := normalize(draft)
	if err != nil {
		return nil, err
	}
	product.ID = id
	product.UpdatedAt = model.NewTimestamp(ps.now())

	updated, err := ps.repo.Update(ctx, &product)
	if err != nil {
		return nil, storageError(err)
	}

	metrics.ProductsUpdated.Inc()
	ps.publish(ctx, model.EventActionUpdated, *updated)
	return updated, nil
}

// DeleteProduct removes product id and returns it as it was before deletion.
func (ps *ProductService) DeleteProduct(ctx context.Context, id int) (*model.Product, error) {
	var deleted *model.Product
	err := ps.withinTransaction(ctx, func(repo repository.ProductRepository) error {
		product, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.DeleteByID(ctx, id); err != nil {
			return err
		}
		deleted = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ProductsDeleted.Inc()
	ps.publish(ctx, model.EventActionDeleted, *deleted)
	return deleted, nil
}

func (ps *ProductService) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
	products, err := ps.repo.All(ctx)
	if err != nil {
		return model.DashboardStats{}, err
	}

	recentSince := model.NewTimestamp(ps.now().Add(-RecentWindow))
	counts := make(map[string]int)
	stats := model.DashboardStats{TotalProducts: len(products)}
	for _, p := range products {
		counts[p.Category]++
		stats.TotalInventoryValue += p.TotalValue()
		if p.IsLowStock(ps.lowStockThreshold) {
			stats.LowStockCount++
		}
		if !p.CreatedAt.IsZero() && !p.CreatedAt.Before(recentSince.Time) {
			stats.RecentProducts++
		}
	}
	stats.TotalCategories = len(counts)
	stats.TotalInventoryValue = roundCents(stats.TotalInventoryValue)

	top := make([]model.CategoryStats, 0, len(counts))
	for name, count := range counts {
		top = append(top, model.CategoryStats{Name: name, Count: count})
	}
	slices.SortFunc(top, func(a, b model.CategoryStats) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	stats.TopCategories = top[:min(len(top), TopCategoriesLimit)]
	return stats, nil
}

// Categories returns the distinct categories in use, sorted.
func (ps *ProductService) Categories(ctx context.Context) ([]string, error) {
	products, err := ps.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0)
	for _, p := range products {
		categories = append(categories, p.Category)
	}
	slices.Sort(categories)
	return slices.Compact(categories), nil
}

func (ps *ProductService) withinTransaction(ctx context.Context, fn func(repo repository.ProductRepository) error) error {
	if tx, ok := ps.repo.(repository.Transactor); ok {
		return tx.WithinTransaction(ctx, fn)
	}
	return fn(ps.repo)
}

func (ps *ProductService) publish(ctx context.Context, action model.EventAction, p model.Product) {
	if ps.publisher == nil {
		return
	}
	event := model.NewProductEvent(action, p, ps.lowStockThreshold)
	if err := ps.publisher.PublishProductEvent(ctx, event); err != nil {
		// the write already succeeded
		slog.Error("Failed to publish product event", slog.Any("err", err), slog.String("action", string(action)), slog.Int("product_id", p.ID))
	}
}

// normalize trims text fields, rounds the price to cents and validates the result.
func normalize(draft model.Product) (model.Product, error) {
	p := draft
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Description = strings.TrimSpace(p.Description)
	p.Price = roundCents(p.Price)
	if err := p.Validate(); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func storageError(err error) error {
	var constraintErr *repository.ConstraintError
	if errors.As(err, &constraintErr) {
		return &model.ValidationError{Field: constraintErr.Constraint, Message: fmt.Sprintf("Rejected by storage: %s", constraintErr.Error())}
	}
	return err
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
