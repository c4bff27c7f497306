package model

// EventAction is the kind of change a ProductEvent reports.
type EventAction string

const (
	// EventActionCreated is emitted after a product has been created
	EventActionCreated EventAction = "created"
	// EventActionUpdated is emitted after a product has been replaced
	EventActionUpdated EventAction = "updated"
	// EventActionDeleted is emitted after a product has been deleted
	EventActionDeleted EventAction = "deleted"
)

// ProductEvent is the change notification published by the inventory API.
type ProductEvent struct {
	Action    EventAction `json:"action"`
	ProductID int         `json:"product_id"`
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Quantity  int         `json:"quantity"`
	Price     float64     `json:"price"`
	LowStock  bool        `json:"low_stock"`
}

// NewProductEvent builds the event for p, flagging low stock against threshold.
func NewProductEvent(action EventAction, p Product, threshold int) ProductEvent {
	return ProductEvent{
		Action:    action,
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Quantity:  p.Quantity,
		Price:     p.Price,
		LowStock:  p.IsLowStock(threshold),
	}
}
