package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/akilcn01-oss/Inventory-Management/internal/model"
)

// MemoryProductRepository is an in-memory ProductRepository.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[int]model.Product
	nextID   int
}

// NewMemoryProductRepository creates an empty repository. Ids start at 1.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[int]model.Product),
		nextID:   1,
	}
}

func matchesQuery(p model.Product, q Query) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if q.LowStockBelow > 0 && p.Quantity >= q.LowStockBelow {
		return false
	}
	return true
}

func newestFirst(a, b model.Product) int {
	if c := b.CreatedAt.Compare(a.CreatedAt.Time); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func (r *MemoryProductRepository) Create(_ context.Context, p *model.Product) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *p
	stored.ID = r.nextID
	r.nextID++
	r.products[stored.ID] = stored
	return &stored, nil
}

func (r *MemoryProductRepository) List(_ context.Context, q Query) ([]model.Product, error) {
	r.mu.RLock()
	filtered := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if matchesQuery(p, q) {
			filtered = append(filtered, p)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(filtered, newestFirst)

	start := min(max(q.Skip, 0), len(filtered))
	end := min(start+q.EffectiveLimit(), len(filtered))
	return filtered[start:end], nil
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id int) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProductRepository) Update(_ context.Context, p *model.Product) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[p.ID]
	if !ok {
		return nil, ErrNotFound
	}
	updated := *p
	updated.CreatedAt = existing.CreatedAt
	r.products[p.ID] = updated
	return &updated, nil
}

func (r *MemoryProductRepository) DeleteByID(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) All(_ context.Context) ([]model.Product, error) {
	r.mu.RLock()
	all := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, p)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b model.Product) int { return cmp.Compare(a.ID, b.ID) })
	return all, nil
}

func (r *MemoryProductRepository) Ping(context.Context) error {
	return nil
}
