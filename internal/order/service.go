package order

import (
	"context"
	"errors"
	"strconv"
	"time"

	"farmdirect-be/internal/logger"
	"farmdirect-be/internal/metrics"
	"farmdirect-be/internal/product"
	"farmdirect-be/internal/user"

	"go.uber.org/zap"
)

// scheduledTimeOffset is the placeholder delivery-scheduling policy applied
// at self-assignment. A real ETA estimator may replace it, but a delivery
// always has a non-null scheduled time from creation.
const scheduledTimeOffset = 24 * time.Hour

// Publisher emits order lifecycle events to the message broker.
// Publishing is best-effort: failures are logged, never surfaced.
type Publisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
}

// Event type names on the wire.
const (
	EventPlaced        = "order.placed"
	EventStatusChanged = "order.status_changed"
	EventAssigned      = "order.delivery_assigned"
)

type StatusChangedEvent struct {
	Type       string    `json:"type"`
	OrderID    int64     `json:"order_id"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PlacedEvent struct {
	Type        string    `json:"type"`
	OrderID     int64     `json:"order_id"`
	CustomerID  int64     `json:"customer_id"`
	TotalAmount float64   `json:"total_amount"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type AssignedEvent struct {
	Type             string    `json:"type"`
	OrderID          int64     `json:"order_id"`
	DeliveryPersonID int64     `json:"delivery_person_id"`
	OccurredAt       time.Time `json:"occurred_at"`
}

type Service interface {
	PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Order, error)
	ListFor(ctx context.Context, caller user.Principal) ([]*Order, error)
	GetDetail(ctx context.Context, caller user.Principal, orderID int64) (*Detail, error)
	UpdateStatus(ctx context.Context, caller user.Principal, orderID int64, status Status) (*Order, error)
	AssignDelivery(ctx context.Context, caller user.Principal, orderID int64) (*Order, error)

	// Confirm advances a pending order to confirmed. It is reserved for
	// the payment gate; no caller role may reach this edge directly.
	Confirm(ctx context.Context, orderID int64) (*Order, error)
}

type service struct {
	repo        Repository
	productRepo product.Repository
	events      Publisher
}

func NewService(repo Repository, productRepo product.Repository, events Publisher) Service {
	return &service{repo: repo, productRepo: productRepo, events: events}
}

func (s *service) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Order, error) {
	if params.DeliveryAddress == "" {
		return nil, ErrMissingAddress
	}

	o, err := s.repo.PlaceOrder(ctx, params)
	if err != nil {
		return nil, err
	}

	metrics.OrdersPlacedTotal.Inc()
	s.publish(ctx, o.ID, PlacedEvent{
		Type:        EventPlaced,
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		TotalAmount: o.TotalAmount,
		OccurredAt:  time.Now(),
	})

	return o, nil
}

func (s *service) ListFor(ctx context.Context, caller user.Principal) ([]*Order, error) {
	switch caller.Role {
	case user.RoleCustomer:
		return s.repo.ListByCustomer(ctx, caller.ID)
	case user.RoleDelivery:
		return s.repo.ListByDeliveryPerson(ctx, caller.ID)
	case user.RoleFarmer:
		return s.repo.ListByFarmer(ctx, caller.ID)
	}
	return nil, ErrForbidden
}

func (s *service) GetDetail(ctx context.Context, caller user.Principal, orderID int64) (*Detail, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !s.canView(ctx, caller, o) {
		return nil, ErrForbidden
	}

	items, err := s.repo.GetItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	detailed := make([]*DetailedItem, 0, len(items))
	for _, item := range items {
		p, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil && !errors.Is(err, product.ErrProductNotFound) {
			return nil, err
		}
		detailed = append(detailed, &DetailedItem{OrderItem: *item, Product: p})
	}

	return &Detail{Order: *o, Items: detailed}, nil
}

func (s *service) canView(ctx context.Context, caller user.Principal, o *Order) bool {
	switch caller.Role {
	case user.RoleCustomer:
		return o.CustomerID == caller.ID
	case user.RoleDelivery:
		return o.DeliveryPersonID != nil && *o.DeliveryPersonID == caller.ID
	case user.RoleFarmer:
		orders, err := s.repo.ListByFarmer(ctx, caller.ID)
		if err != nil {
			return false
		}
		for _, fo := range orders {
			if fo.ID == o.ID {
				return true
			}
		}
	}
	return false
}

// UpdateStatus applies a role-checked status transition to an order and,
// atomically, to its delivery record. Transition authority:
//
//	customer  — cancel own non-terminal orders, nothing else
//	farmer    — no status authority
//	delivery  — forward edges (confirmed→processing→out_for_delivery→
//	            delivered) on orders assigned to them
//
// pending→confirmed is reserved for Confirm (the payment gate).
func (s *service) UpdateStatus(ctx context.Context, caller user.Principal, orderID int64, status Status) (*Order, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case user.RoleCustomer:
		if o.CustomerID != caller.ID {
			return nil, ErrForbidden
		}
		if status != StatusCancelled {
			return nil, ErrForbidden
		}
	case user.RoleDelivery:
		if o.DeliveryPersonID == nil || *o.DeliveryPersonID != caller.ID {
			return nil, ErrForbidden
		}
		if status == StatusCancelled || status == StatusConfirmed {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	if !CanTransition(o.Status, status) {
		return nil, ErrInvalidTransition
	}

	return s.applyTransition(ctx, o, status)
}

func (s *service) Confirm(ctx context.Context, orderID int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Idempotent: a replayed confirmation leaves the order confirmed.
	if o.Status == StatusConfirmed {
		return o, nil
	}
	if o.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	return s.applyTransition(ctx, o, StatusConfirmed)
}

func (s *service) applyTransition(ctx context.Context, o *Order, status Status) (*Order, error) {
	from := o.Status

	updated, err := s.repo.UpdateStatus(ctx, o.ID, status, time.Now())
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusTransitionsTotal.WithLabelValues(string(from), string(status)).Inc()
	logger.FromCtx(ctx).Info("order status changed",
		zap.Int64("order_id", o.ID),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	s.publish(ctx, o.ID, StatusChangedEvent{
		Type:       EventStatusChanged,
		OrderID:    o.ID,
		From:       from,
		To:         status,
		OccurredAt: time.Now(),
	})

	return updated, nil
}

// AssignDelivery lets a delivery person claim an unassigned confirmed
// order. Assignment happens exactly once; there is no reassignment path.
func (s *service) AssignDelivery(ctx context.Context, caller user.Principal, orderID int64) (*Order, error) {
	if caller.Role != user.RoleDelivery {
		return nil, ErrForbidden
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.DeliveryPersonID != nil {
		return nil, ErrAlreadyAssigned
	}
	if o.Status != StatusConfirmed {
		return nil, ErrOrderNotConfirmed
	}

	updated, err := s.repo.AssignDeliveryPerson(ctx, orderID, caller.ID, time.Now().Add(scheduledTimeOffset))
	if err != nil {
		return nil, err
	}

	metrics.DeliveriesAssignedTotal.Inc()
	logger.FromCtx(ctx).Info("delivery person assigned",
		zap.Int64("order_id", orderID),
		zap.Int64("delivery_person_id", caller.ID),
	)
	s.publish(ctx, orderID, AssignedEvent{
		Type:             EventAssigned,
		OrderID:          orderID,
		DeliveryPersonID: caller.ID,
		OccurredAt:       time.Now(),
	})

	return updated, nil
}

func (s *service) publish(ctx context.Context, orderID int64, event interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, orderKey(orderID), event); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish order event",
			zap.Int64("order_id", orderID), zap.Error(err))
	}
}

func orderKey(orderID int64) string {
	return "order-" + strconv.FormatInt(orderID, 10)
}
