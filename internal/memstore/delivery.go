package memstore

import (
	"context"

	"farmdirect-be/internal/delivery"
)

type deliveryRepo struct {
	s *Store
}

func (r *deliveryRepo) GetByID(_ context.Context, id int64) (*delivery.Delivery, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.deliveries[id]
	if !ok {
		return nil, delivery.ErrDeliveryNotFound
	}
	return cloneDelivery(d), nil
}

func (r *deliveryRepo) ListByDeliveryPerson(_ context.Context, deliveryPersonID int64) ([]*delivery.Delivery, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*delivery.Delivery, 0)
	for _, id := range reversed(sortedIDs(r.s.deliveries)) {
		if r.s.deliveries[id].DeliveryPersonID == deliveryPersonID {
			out = append(out, cloneDelivery(r.s.deliveries[id]))
		}
	}
	return out, nil
}

func cloneDelivery(d delivery.Delivery) *delivery.Delivery {
	if d.StartTime != nil {
		t := *d.StartTime
		d.StartTime = &t
	}
	if d.CompletedTime != nil {
		t := *d.CompletedTime
		d.CompletedTime = &t
	}
	if d.RouteInfo != nil {
		d.RouteInfo = append(d.RouteInfo[:0:0], d.RouteInfo...)
	}
	return &d
}
