package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxDescriptionLength is the longest description the API accepts.
const MaxDescriptionLength = 1000

// Product represents a product entity as exchanged with the inventory API.
// A Product with a zero ID is a draft that has not been persisted yet.
type Product struct {
	ID          int       `json:"id,omitempty"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// IsPersisted reports whether the product was returned by the server.
func (p Product) IsPersisted() bool {
	return p.ID != 0 && !p.CreatedAt.IsZero()
}

// IsValid reports whether the product may be submitted for create or update.
func (p Product) IsValid() bool {
	return strings.TrimSpace(p.Name) != "" &&
		strings.TrimSpace(p.Category) != "" &&
		p.Quantity >= 0 &&
		p.Price > 0
}

// Validate returns the first rule the product breaks as a *ValidationError, or nil.
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return &ValidationError{Field: "name", Message: "Product name is required"}
	case strings.TrimSpace(p.Category) == "":
		return &ValidationError{Field: "category", Message: "Category is required"}
	case p.Quantity < 0:
		return &ValidationError{Field: "quantity", Message: "Quantity cannot be negative"}
	case p.Price <= 0:
		return &ValidationError{Field: "price", Message: "Price must be greater than 0"}
	case utf8.RuneCountInString(p.Description) > MaxDescriptionLength:
		return &ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLength),
		}
	}
	return nil
}

// TotalValue is quantity multiplied by price.
func (p Product) TotalValue() float64 {
	return float64(p.Quantity) * p.Price
}

// IsLowStock reports whether the quantity is strictly below threshold.
func (p Product) IsLowStock(threshold int) bool {
	return p.Quantity < threshold
}

// IsCriticalStock reports whether the quantity is below half of the low-stock threshold.
func (p Product) IsCriticalStock(threshold int) bool {
	return p.Quantity < threshold/2
}

// FormattedPrice renders the unit price as currency.
func (p Product) FormattedPrice() string {
	return fmt.Sprintf("$%.2f", p.Price)
}

// FormattedTotalValue renders the total value as currency.
func (p Product) FormattedTotalValue() string {
	return fmt.Sprintf("$%.2f", p.TotalValue())
}

// Draft returns a copy without server-assigned fields, suitable for a create request.
func (p Product) Draft() Product {
	p.ID = 0
	p.CreatedAt = Timestamp{}
	p.UpdatedAt = Timestamp{}
	return p
}

func (p Product) String() string {
	return fmt.Sprintf("Product{id=%d, name=%q, category=%q, quantity=%d, price=%.2f}",
		p.ID, p.Name, p.Category, p.Quantity, p.Price)
}
