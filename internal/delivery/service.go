package delivery

import (
	"context"
	"errors"

	"farmdirect-be/internal/order"
	"farmdirect-be/internal/user"
)

type Service interface {
	// ListFor returns the caller's deliveries, each enriched with its
	// order.
	ListFor(ctx context.Context, caller user.Principal) ([]*WithOrder, error)

	// Get returns a single delivery with its full order detail. Only the
	// assigned delivery person may read it.
	Get(ctx context.Context, caller user.Principal, deliveryID int64) (*Detail, error)

	// UpdateStatus moves the delivery's order through the state machine.
	// The order transition mirrors back onto the delivery record,
	// including the start/completed time stamps.
	UpdateStatus(ctx context.Context, caller user.Principal, deliveryID int64, status order.Status) (*Delivery, error)
}

type service struct {
	repo      Repository
	orderRepo order.Repository
	orderSvc  order.Service
}

func NewService(repo Repository, orderRepo order.Repository, orderSvc order.Service) Service {
	return &service{repo: repo, orderRepo: orderRepo, orderSvc: orderSvc}
}

func (s *service) ListFor(ctx context.Context, caller user.Principal) ([]*WithOrder, error) {
	if caller.Role != user.RoleDelivery {
		return nil, order.ErrForbidden
	}

	deliveries, err := s.repo.ListByDeliveryPerson(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	enriched := make([]*WithOrder, 0, len(deliveries))
	for _, d := range deliveries {
		o, err := s.orderRepo.GetByID(ctx, d.OrderID)
		if err != nil && !errors.Is(err, order.ErrOrderNotFound) {
			return nil, err
		}
		enriched = append(enriched, &WithOrder{Delivery: *d, Order: o})
	}

	return enriched, nil
}

func (s *service) Get(ctx context.Context, caller user.Principal, deliveryID int64) (*Detail, error) {
	d, err := s.owned(ctx, caller, deliveryID)
	if err != nil {
		return nil, err
	}

	od, err := s.orderSvc.GetDetail(ctx, caller, d.OrderID)
	if err != nil {
		return nil, err
	}

	return &Detail{Delivery: *d, Order: od}, nil
}

func (s *service) UpdateStatus(ctx context.Context, caller user.Principal, deliveryID int64, status order.Status) (*Delivery, error) {
	d, err := s.owned(ctx, caller, deliveryID)
	if err != nil {
		return nil, err
	}

	if _, err := s.orderSvc.UpdateStatus(ctx, caller, d.OrderID, status); err != nil {
		return nil, err
	}

	// Re-read to pick up the mirrored status and time stamps.
	return s.repo.GetByID(ctx, deliveryID)
}

func (s *service) owned(ctx context.Context, caller user.Principal, deliveryID int64) (*Delivery, error) {
	if caller.Role != user.RoleDelivery {
		return nil, order.ErrForbidden
	}

	d, err := s.repo.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if d.DeliveryPersonID != caller.ID {
		return nil, ErrNotAssignee
	}
	return d, nil
}
