package repository

import (
	"context"
	"errors"

	"github.com/akilcn01-oss/Inventory-Management/internal/model"
)

// ErrNotFound is returned when no product has the requested id.
var ErrNotFound = errors.New("product not found")

// ProductRepository defines the storage operations of the inventory API.
type ProductRepository interface {
	// Create stores p, assigning its id. p.CreatedAt and p.UpdatedAt must already be set.
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	// List returns one page ordered by created_at DESC, id DESC.
	List(ctx context.Context, query Query) ([]model.Product, error)
	FindByID(ctx context.Context, id int) (*model.Product, error)
	// Update replaces every mutable field of the product with p.ID. CreatedAt is preserved.
	Update(ctx context.Context, p *model.Product) (*model.Product, error)
	DeleteByID(ctx context.Context, id int) error
	// All returns every product in id order.
	All(ctx context.Context) ([]model.Product, error)
	Ping(ctx context.Context) error
}

// Transactor is implemented by repositories that can run several operations atomically.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repo ProductRepository) error) error
}

// ConstraintError represents a storage constraint violation, such as a failed CHECK.
type ConstraintError struct {
	Constraint string
	Detail     string
}

func (c *ConstraintError) Error() string {
	if c.Detail == "" {
		return "constraint violated: " + c.Constraint
	}
	return "constraint violated: " + c.Constraint + ": " + c.Detail
}
