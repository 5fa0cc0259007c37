package delivery

import (
	"encoding/json"
	"time"

	"farmdirect-be/internal/order"
)

// Delivery is the courier-side view of an order in flight. Its status
// mirrors the order's; the timestamps are stamped by the order state
// machine as the order moves through out_for_delivery and delivered.
type Delivery struct {
	ID               int64           `json:"id"`
	DeliveryPersonID int64           `json:"delivery_person_id"`
	OrderID          int64           `json:"order_id"`
	Status           order.Status    `json:"status"`
	ScheduledTime    time.Time       `json:"scheduled_time"`
	StartTime        *time.Time      `json:"start_time"`
	CompletedTime    *time.Time      `json:"completed_time"`
	RouteInfo        json.RawMessage `json:"route_info,omitempty"`
}

// WithOrder is a list entry enriched with the underlying order.
type WithOrder struct {
	Delivery
	Order *order.Order `json:"order"`
}

// Detail is a single delivery enriched with the full order detail
// (order, items, products).
type Detail struct {
	Delivery
	Order *order.Detail `json:"order"`
}
