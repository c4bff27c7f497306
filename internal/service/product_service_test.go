package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/akilcn01-oss/Inventory-Management/internal/model"
	"github.com/akilcn01-oss/Inventory-Management/internal/repository"
	"github.com/akilcn01-oss/Inventory-Management/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

// MockRepository is a mock implementation of repository.ProductRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	args := m.Called(ctx, p)
	if fn, ok := args.Get(0).(func(context.Context, *model.Product) *model.Product); ok {
		return fn(ctx, p), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, query repository.Query) ([]model.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	args := m.Called(ctx, p)
	if fn, ok := args.Get(0).(func(context.Context, *model.Product) *model.Product); ok {
		return fn(ctx, p), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockRepository) DeleteByID(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) All(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockTxRepository adds transaction support to MockRepository
type MockTxRepository struct {
	MockRepository
}

func (m *MockTxRepository) WithinTransaction(ctx context.Context, fn func(repo repository.ProductRepository) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// MockPublisher is a mock implementation of service.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductEvent(ctx context.Context, event model.ProductEvent) error {
	return m.Called(ctx, event).Error(0)
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	mockPublisher := new(MockPublisher)

	mockRepo.On("Create", ctx, mock.AnythingOfType("*model.Product")).
		Return(func(_ context.Context, p *model.Product) *model.Product {
			stored := *p
			stored.ID = 42
			return &stored
		}, nil)
	mockPublisher.On("PublishProductEvent", ctx, model.ProductEvent{
		Action:    model.EventActionCreated,
		ProductID: 42,
		Name:      "Laptop",
		Category:  "Electronics",
		Quantity:  3,
		Price:     1299.99,
		LowStock:  true,
	}).Return(nil)

	productService := service.NewProductService(mockRepo, mockPublisher, 10).WithClock(func() time.Time { return fixedNow })

	created, err := productService.CreateProduct(ctx, model.Product{
		ID:       99,
		Name:     "  Laptop ",
		Category: "Electronics\t",
		Quantity: 3,
		Price:    1299.989,
	})

	require.NoError(t, err)
	assert.Equal(t, 42, created.ID)
	assert.Equal(t, "Laptop", created.Name)
	assert.Equal(t, "Electronics", created.Category)
	assert.Equal(t, 1299.99, created.Price)
	assert.Equal(t, model.NewTimestamp(fixedNow), created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestCreateProduct_InvalidDraftNeverReachesStorage(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	productService := service.NewProductService(mockRepo, nil, 10)

	tests := []struct {
		name  string
		draft model.Product
		field string
	}{
		{"blank name", model.Product{Name: "   ", Category: "Electronics", Quantity: 5, Price: 9.99}, "name"},
		{"negative quantity", model.Product{Name: "Cable", Category: "Electronics", Quantity: -1, Price: 9.99}, "quantity"},
		{"price rounds to zero", model.Product{Name: "Cable", Category: "Electronics", Quantity: 1, Price: 0.004}, "price"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := productService.CreateProduct(ctx, tt.draft)

			var validationErr *model.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProduct_PublishFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	mockPublisher := new(MockPublisher)

	mockRepo.On("Create", ctx, mock.AnythingOfType("*model.Product")).Return(&model.Product{ID: 1, Name: "Desk"}, nil)
	mockPublisher.On("PublishProductEvent", ctx, mock.AnythingOfType("model.ProductEvent")).Return(errors.New("queue unavailable"))

	productService := service.NewProductService(mockRepo, mockPublisher, 10)

	created, err := productService.CreateProduct(ctx, model.Product{Name: "Desk", Category: "Furniture", Quantity: 1, Price: 100})

	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	mockPublisher.AssertExpectations(t)
}

func TestCreateProduct_ConstraintViolationIsValidationError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*model.Product")).
		Return(nil, fmt.Errorf("failed to insert product: %w", &repository.ConstraintError{Constraint: "products_price_check"}))

	_, err := service.NewProductService(mockRepo, nil, 10).
		CreateProduct(ctx, model.Product{Name: "Desk", Category: "Furniture", Quantity: 1, Price: 100})

	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	mockPublisher := new(MockPublisher)

	created := model.NewTimestamp(fixedNow.Add(-48 * time.Hour))
	mockRepo.On("Update", ctx, mock.MatchedBy(func(p *model.Product) bool {
		return p.ID == 7 && p.Name == "Chair" && p.UpdatedAt == model.NewTimestamp(fixedNow)
	})).Return(func(_ context.Context, p *model.Product) *model.Product {
		stored := *p
		stored.CreatedAt = created
		return &stored
	}, nil)
	mockPublisher.On("PublishProductEvent", ctx, mock.MatchedBy(func(e model.ProductEvent) bool {
		return e.Action == model.EventActionUpdated && e.ProductID == 7 && !e.LowStock
	})).Return(nil)

	productService := service.NewProductService(mockRepo, mockPublisher, 10).WithClock(func() time.Time { return fixedNow })

	updated, err := productService.UpdateProduct(ctx, 7, model.Product{Name: "Chair", Category: "Furniture", Quantity: 40, Price: 45})

	require.NoError(t, err)
	assert.Equal(t, created, updated.CreatedAt)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	mockRepo.On("Update", ctx, mock.AnythingOfType("*model.Product")).Return(nil, repository.ErrNotFound)

	_, err := service.NewProductService(mockRepo, nil, 10).
		UpdateProduct(ctx, 404, model.Product{Name: "Chair", Category: "Furniture", Quantity: 1, Price: 45})

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockTxRepository)
	mockPublisher := new(MockPublisher)

	product := &model.Product{ID: 5, Name: "Test Product", Category: "Misc", Quantity: 2, Price: 99.99}

	// Mock WithinTransaction to execute the function immediately
	mockRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(repository.ProductRepository) error")).
		Run(func(args mock.Arguments) {
			fn := args.Get(1).(func(repository.ProductRepository) error)
			require.NoError(t, fn(mockRepo))
		}).Return(nil)
	mockRepo.On("FindByID", ctx, 5).Return(product, nil)
	mockRepo.On("DeleteByID", ctx, 5).Return(nil)
	mockPublisher.On("PublishProductEvent", ctx, model.NewProductEvent(model.EventActionDeleted, *product, 10)).Return(nil)

	productService := service.NewProductService(mockRepo, mockPublisher, 10)

	deleted, err := productService.DeleteProduct(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, "Test Product", deleted.Name)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	mockRepo.On("FindByID", ctx, 5).Return(nil, repository.ErrNotFound)

	_, err := service.NewProductService(mockRepo, nil, 10).DeleteProduct(ctx, 5)

	require.ErrorIs(t, err, repository.ErrNotFound)
	mockRepo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)

	products := []model.Product{
		{ID: 2, Name: "Product 2", Price: 20.0},
		{ID: 1, Name: "Product 1", Price: 10.0},
	}

	query := repository.NewQuery().WithCategory("Misc")
	mockRepo.On("List", ctx, *query).Return(products, nil)

	productService := service.NewProductService(mockRepo, nil, 10)

	results, err := productService.ListProducts(ctx, *query)

	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "Product 2", results[0].Name)

	mockRepo.AssertExpectations(t)
}

func seededService(t *testing.T, products ...model.Product) *service.ProductService {
	t.Helper()
	repo := repository.NewMemoryProductRepository()
	for _, p := range products {
		p := p
		_, err := repo.Create(context.Background(), &p)
		require.NoError(t, err)
	}
	return service.NewProductService(repo, nil, 10).WithClock(func() time.Time { return fixedNow })
}

func stocked(name, category string, qty int, price float64, age time.Duration) model.Product {
	ts := model.NewTimestamp(fixedNow.Add(-age))
	return model.Product{Name: name, Category: category, Quantity: qty, Price: price, CreatedAt: ts, UpdatedAt: ts}
}

func TestDashboardStats(t *testing.T) {
	day := 24 * time.Hour
	productService := seededService(t,
		stocked("Laptop", "Electronics", 5, 1000, time.Hour),
		stocked("Phone", "Electronics", 20, 500, 2*day),
		stocked("Cable", "Electronics", 100, 2.5, 30*day),
		stocked("Desk", "Furniture", 3, 250, 7*day),
		stocked("Chair", "Furniture", 12, 80.10, 8*day),
		stocked("Pen", "Office", 9, 1.2, 60*day),
		stocked("Apple", "Food", 50, 0.5, day),
		stocked("Bread", "Bakery", 10, 3, day),
		stocked("Ball", "Toys", 10, 12, day),
	)

	stats, err := productService.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 9, stats.TotalProducts)
	assert.Equal(t, 6, stats.TotalCategories)
	assert.Equal(t, 3, stats.LowStockCount, "Laptop, Desk and Pen are below 10")
	assert.Equal(t, 6, stats.RecentProducts, "products exactly seven days old still count")
	assert.InDelta(t, 5000+10000+250+750+961.2+10.8+25+30+120, stats.TotalInventoryValue, 0.001)
	assert.Equal(t, []model.CategoryStats{
		{Name: "Electronics", Count: 3},
		{Name: "Furniture", Count: 2},
		{Name: "Bakery", Count: 1},
		{Name: "Food", Count: 1},
		{Name: "Office", Count: 1},
	}, stats.TopCategories)
}

func TestDashboardStats_Empty(t *testing.T) {
	stats, err := seededService(t).DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.TotalProducts)
	assert.NotNil(t, stats.TopCategories)
	assert.Empty(t, stats.TopCategories)
}

func TestCategories(t *testing.T) {
	productService := seededService(t,
		stocked("Laptop", "Electronics", 5, 1000, 0),
		stocked("Desk", "Furniture", 3, 250, 0),
		stocked("Phone", "Electronics", 20, 500, 0))

	categories, err := productService.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Furniture"}, categories)

	empty, err := seededService(t).Categories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestPing(t *testing.T) {
	mockRepo := new(MockRepository)
	mockRepo.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	assert.Error(t, service.NewProductService(mockRepo, nil, 10).Ping(context.Background()))
}
