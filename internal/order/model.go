package order

import (
	"time"

	"farmdirect-be/internal/product"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusProcessing     Status = "processing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// ValidStatus reports whether s is one of the six enumerated statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func Terminal(s Status) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// next holds the single forward edge for each non-terminal status.
var next = map[Status]Status{
	StatusPending:        StatusConfirmed,
	StatusConfirmed:      StatusProcessing,
	StatusProcessing:     StatusOutForDelivery,
	StatusOutForDelivery: StatusDelivered,
}

// CanTransition reports whether from→to is a legal edge of the lifecycle:
// the single forward step, or cancellation from any non-terminal status.
func CanTransition(from, to Status) bool {
	if Terminal(from) {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return next[from] == to
}

type Order struct {
	ID                int64      `json:"id"`
	CustomerID        int64      `json:"customerId"`
	TotalAmount       float64    `json:"totalAmount"`
	Status            Status     `json:"status"`
	CreatedAt         time.Time  `json:"createdAt"`
	DeliveryAddress   string     `json:"deliveryAddress"`
	DeliveryNotes     string     `json:"deliveryNotes,omitempty"`
	DeliveryPersonID  *int64     `json:"deliveryPersonId"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

// OrderItem is a line of an order. Price is snapshotted at order-creation
// time and never tracks later product price changes.
type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"orderId"`
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// DetailedItem is an order line joined with its product for display.
// Product is nil when the listing has since been deleted.
type DetailedItem struct {
	OrderItem
	Product *product.Product `json:"product"`
}

type Detail struct {
	Order
	Items []*DetailedItem `json:"items"`
}

type PlaceOrderParams struct {
	CustomerID      int64
	DeliveryAddress string
	DeliveryNotes   string
}
