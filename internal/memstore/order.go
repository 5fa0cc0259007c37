package memstore

import (
	"context"
	"time"

	"farmdirect-be/internal/delivery"
	"farmdirect-be/internal/order"
)

type orderRepo struct {
	s *Store
}

// PlaceOrder converts the customer's cart into an order inside one write
// critical section, so a concurrent product deletion or second checkout
// cannot interleave.
func (r *orderRepo) PlaceOrder(_ context.Context, params order.PlaceOrderParams) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type line struct {
		cartID    int64
		productID int64
		quantity  int
		price     float64
	}
	var lines []line
	var total float64

	for _, id := range sortedIDs(r.s.cartItems) {
		item := r.s.cartItems[id]
		if item.UserID != params.CustomerID {
			continue
		}
		p, ok := r.s.products[item.ProductID]
		if !ok {
			return nil, order.ErrProductNotFound
		}
		lines = append(lines, line{
			cartID:    item.ID,
			productID: item.ProductID,
			quantity:  item.Quantity,
			price:     p.Price,
		})
		total += p.Price * float64(item.Quantity)
	}

	if len(lines) == 0 {
		return nil, order.ErrEmptyCart
	}

	o := order.Order{
		ID:              r.s.next("order"),
		CustomerID:      params.CustomerID,
		TotalAmount:     total,
		Status:          order.StatusPending,
		CreatedAt:       time.Now(),
		DeliveryAddress: params.DeliveryAddress,
		DeliveryNotes:   params.DeliveryNotes,
	}
	r.s.orders[o.ID] = o

	for _, l := range lines {
		item := order.OrderItem{
			ID:        r.s.next("order_item"),
			OrderID:   o.ID,
			ProductID: l.productID,
			Quantity:  l.quantity,
			Price:     l.price,
		}
		r.s.orderItems[item.ID] = item
		delete(r.s.cartItems, l.cartID)
	}

	return cloneOrder(o), nil
}

func (r *orderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *orderRepo) GetItems(_ context.Context, orderID int64) ([]*order.OrderItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]*order.OrderItem, 0)
	for _, id := range sortedIDs(r.s.orderItems) {
		if r.s.orderItems[id].OrderID == orderID {
			item := r.s.orderItems[id]
			items = append(items, &item)
		}
	}
	return items, nil
}

func (r *orderRepo) ListByCustomer(_ context.Context, customerID int64) ([]*order.Order, error) {
	return r.listWhere(func(o order.Order) bool { return o.CustomerID == customerID })
}

func (r *orderRepo) ListByDeliveryPerson(_ context.Context, deliveryPersonID int64) ([]*order.Order, error) {
	return r.listWhere(func(o order.Order) bool {
		return o.DeliveryPersonID != nil && *o.DeliveryPersonID == deliveryPersonID
	})
}

func (r *orderRepo) ListByFarmer(_ context.Context, farmerID int64) ([]*order.Order, error) {
	r.s.mu.RLock()
	orderIDs := make(map[int64]bool)
	for _, item := range r.s.orderItems {
		if p, ok := r.s.products[item.ProductID]; ok && p.FarmerID == farmerID {
			orderIDs[item.OrderID] = true
		}
	}
	r.s.mu.RUnlock()

	return r.listWhere(func(o order.Order) bool { return orderIDs[o.ID] })
}

func (r *orderRepo) listWhere(match func(order.Order) bool) ([]*order.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*order.Order, 0)
	for _, id := range reversed(sortedIDs(r.s.orders)) {
		if match(r.s.orders[id]) {
			out = append(out, cloneOrder(r.s.orders[id]))
		}
	}
	return out, nil
}

// UpdateStatus mutates the order and its delivery record (if any) in one
// critical section, mirroring the SQL transaction.
func (r *orderRepo) UpdateStatus(_ context.Context, orderID int64, status order.Status, now time.Time) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}

	o.Status = status
	r.s.orders[orderID] = o

	for id, d := range r.s.deliveries {
		if d.OrderID != orderID {
			continue
		}
		d.Status = status
		if status == order.StatusOutForDelivery && d.StartTime == nil {
			t := now
			d.StartTime = &t
		}
		if status == order.StatusDelivered {
			t := now
			d.CompletedTime = &t
		}
		r.s.deliveries[id] = d
	}

	return cloneOrder(o), nil
}

// AssignDeliveryPerson claims an unassigned order and creates its
// delivery record atomically; a second claim sees the set pointer and
// conflicts, matching the SQL IS NULL guard.
func (r *orderRepo) AssignDeliveryPerson(_ context.Context, orderID, deliveryPersonID int64, scheduledTime time.Time) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	if o.DeliveryPersonID != nil {
		return nil, order.ErrAlreadyAssigned
	}

	o.DeliveryPersonID = &deliveryPersonID
	r.s.orders[orderID] = o

	d := delivery.Delivery{
		ID:               r.s.next("delivery"),
		DeliveryPersonID: deliveryPersonID,
		OrderID:          orderID,
		Status:           order.StatusConfirmed,
		ScheduledTime:    scheduledTime,
	}
	r.s.deliveries[d.ID] = d

	return cloneOrder(o), nil
}

func cloneOrder(o order.Order) *order.Order {
	if o.DeliveryPersonID != nil {
		id := *o.DeliveryPersonID
		o.DeliveryPersonID = &id
	}
	if o.EstimatedDelivery != nil {
		t := *o.EstimatedDelivery
		o.EstimatedDelivery = &t
	}
	return &o
}
