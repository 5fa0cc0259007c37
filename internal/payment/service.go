package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmdirect-be/internal/logger"
	"farmdirect-be/internal/metrics"
	"farmdirect-be/internal/order"
	"farmdirect-be/internal/user"

	"go.uber.org/zap"
)

type Service interface {
	// InitiateCheckout records a pending payment for the caller's order
	// and opens a checkout session at the gateway. The order's status is
	// untouched until the completion webhook arrives.
	InitiateCheckout(ctx context.Context, caller user.Principal, params CheckoutParams) (*CheckoutResult, error)

	GetPayment(ctx context.Context, id int64) (*Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID int64) ([]*Payment, error)

	// ConfirmPayment completes a payment and confirms its order. Safe to
	// replay: a completed payment and a confirmed order stay as they are.
	ConfirmPayment(ctx context.Context, paymentID, orderID int64, transactionID string) error

	// FailPayment marks a payment failed. The order stays pending so the
	// customer can retry or cancel.
	FailPayment(ctx context.Context, paymentID int64) error

	InitiateSubscription(ctx context.Context, params SubscriptionParams) (*SubscriptionResult, error)
	GetSubscriptionByFarmer(ctx context.Context, farmerID int64) (*Subscription, error)
	CancelSubscription(ctx context.Context, id int64) (*Subscription, error)

	// ListSubscriptionInvoices returns the subscription's billing history,
	// oldest first.
	ListSubscriptionInvoices(ctx context.Context, subscriptionID int64) ([]*SubscriptionPayment, error)

	ActivateSubscription(ctx context.Context, id int64) error
	DeactivateSubscription(ctx context.Context, id int64) error

	// RecordSubscriptionInvoice appends a billing-history row. A paid
	// invoice also extends the subscription window and keeps it active;
	// a failed one only records the failure (grace period).
	RecordSubscriptionInvoice(ctx context.Context, subscriptionID int64, amount float64, transactionID string, billedAt time.Time, paid bool) error
}

type service struct {
	repo      Repository
	orderRepo order.Repository
	orderSvc  order.Service
	userRepo  user.Repository
	gateway   Gateway
}

func NewService(repo Repository, orderRepo order.Repository, orderSvc order.Service, userRepo user.Repository, gateway Gateway) Service {
	return &service{
		repo:      repo,
		orderRepo: orderRepo,
		orderSvc:  orderSvc,
		userRepo:  userRepo,
		gateway:   gateway,
	}
}

func (s *service) InitiateCheckout(ctx context.Context, caller user.Principal, params CheckoutParams) (*CheckoutResult, error) {
	if params.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if params.Email == "" {
		return nil, ErrMissingEmail
	}

	o, err := s.orderRepo.GetByID(ctx, params.OrderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != caller.ID {
		return nil, ErrNotOrderOwner
	}

	p, err := s.repo.CreatePayment(ctx, &Payment{
		OrderID:   params.OrderID,
		Amount:    params.Amount,
		TipAmount: params.TipAmount,
		Method:    MethodCreditCard,
		Status:    StatusPending,
	})
	if err != nil {
		return nil, err
	}

	description := params.Description
	if description == "" {
		description = fmt.Sprintf("Payment for order #%d", params.OrderID)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, CheckoutSessionRequest{
		PaymentID:   p.ID,
		OrderID:     params.OrderID,
		CustomerID:  caller.ID,
		Amount:      params.Amount,
		TipAmount:   params.TipAmount,
		Email:       params.Email,
		Description: description,
	})
	if err != nil {
		// The pending payment row stays; the webhook or a retry settles it.
		return nil, err
	}

	logger.FromCtx(ctx).Info("checkout session opened",
		zap.Int64("payment_id", p.ID),
		zap.Int64("order_id", params.OrderID),
	)

	return &CheckoutResult{PaymentID: p.ID, CheckoutURL: session.URL}, nil
}

func (s *service) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

func (s *service) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]*Payment, error) {
	return s.repo.ListPaymentsByOrder(ctx, orderID)
}

func (s *service) ConfirmPayment(ctx context.Context, paymentID, orderID int64, transactionID string) error {
	p, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	// Replay: everything already settled.
	if p.Status == StatusCompleted {
		logger.FromCtx(ctx).Info("payment already completed, ignoring replay",
			zap.Int64("payment_id", paymentID))
		return nil
	}

	var txID *string
	if transactionID != "" {
		txID = &transactionID
	}
	if _, err := s.repo.SetPaymentStatus(ctx, paymentID, StatusCompleted, txID); err != nil {
		return err
	}

	if _, err := s.orderSvc.Confirm(ctx, orderID); err != nil {
		return err
	}

	metrics.PaymentsConfirmedTotal.Inc()
	logger.FromCtx(ctx).Info("payment confirmed",
		zap.Int64("payment_id", paymentID),
		zap.Int64("order_id", orderID),
	)

	return nil
}

func (s *service) FailPayment(ctx context.Context, paymentID int64) error {
	p, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.Status == StatusFailed {
		return nil
	}

	if _, err := s.repo.SetPaymentStatus(ctx, paymentID, StatusFailed, nil); err != nil {
		return err
	}

	metrics.PaymentsFailedTotal.Inc()
	logger.FromCtx(ctx).Info("payment failed", zap.Int64("payment_id", paymentID))

	return nil
}

func (s *service) InitiateSubscription(ctx context.Context, params SubscriptionParams) (*SubscriptionResult, error) {
	if !ValidTier(params.Tier) {
		return nil, ErrInvalidTier
	}
	if params.Price <= 0 {
		return nil, ErrInvalidAmount
	}
	if params.Email == "" {
		return nil, ErrMissingEmail
	}

	farmer, err := s.userRepo.GetByID(ctx, params.FarmerID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrNotFarmer
		}
		return nil, err
	}
	if farmer.Role != user.RoleFarmer {
		return nil, ErrNotFarmer
	}

	existing, err := s.repo.GetSubscriptionByFarmer(ctx, params.FarmerID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsActive {
		return nil, ErrSubscriptionExists
	}

	now := time.Now()
	sub, err := s.repo.CreateSubscription(ctx, &Subscription{
		FarmerID:  params.FarmerID,
		Tier:      params.Tier,
		Price:     params.Price,
		StartDate: now,
		EndDate:   now.Add(subscriptionPeriod),
		IsActive:  false, // activated by the subscription webhook
		AutoRenew: true,
	})
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateSubscriptionSession(ctx, SubscriptionSessionRequest{
		SubscriptionID: sub.ID,
		FarmerID:       params.FarmerID,
		Tier:           params.Tier,
		Price:          params.Price,
		Email:          params.Email,
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("subscription session opened",
		zap.Int64("subscription_id", sub.ID),
		zap.Int64("farmer_id", params.FarmerID),
		zap.String("tier", string(params.Tier)),
	)

	return &SubscriptionResult{SubscriptionID: sub.ID, CheckoutURL: session.URL}, nil
}

func (s *service) ListSubscriptionInvoices(ctx context.Context, subscriptionID int64) ([]*SubscriptionPayment, error) {
	if _, err := s.repo.GetSubscription(ctx, subscriptionID); err != nil {
		return nil, err
	}
	return s.repo.ListSubscriptionPayments(ctx, subscriptionID)
}

func (s *service) GetSubscriptionByFarmer(ctx context.Context, farmerID int64) (*Subscription, error) {
	sub, err := s.repo.GetSubscriptionByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

func (s *service) CancelSubscription(ctx context.Context, id int64) (*Subscription, error) {
	off := false
	sub, err := s.repo.UpdateSubscription(ctx, id, UpdateSubscriptionInput{
		IsActive:  &off,
		AutoRenew: &off,
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("subscription cancelled", zap.Int64("subscription_id", id))

	return sub, nil
}

func (s *service) ActivateSubscription(ctx context.Context, id int64) error {
	on := true
	_, err := s.repo.UpdateSubscription(ctx, id, UpdateSubscriptionInput{IsActive: &on})
	return err
}

func (s *service) DeactivateSubscription(ctx context.Context, id int64) error {
	off := false
	_, err := s.repo.UpdateSubscription(ctx, id, UpdateSubscriptionInput{IsActive: &off})
	return err
}

func (s *service) RecordSubscriptionInvoice(ctx context.Context, subscriptionID int64, amount float64, transactionID string, billedAt time.Time, paid bool) error {
	status := StatusCompleted
	if !paid {
		status = StatusFailed
	}

	_, err := s.repo.CreateSubscriptionPayment(ctx, &SubscriptionPayment{
		SubscriptionID: subscriptionID,
		Amount:         amount,
		Method:         MethodCreditCard,
		Status:         status,
		TransactionID:  transactionID,
		BillingDate:    billedAt,
	})
	if err != nil {
		return err
	}

	if !paid {
		// Grace period: the failure is recorded but the subscription
		// stays in whatever state it was.
		logger.FromCtx(ctx).Warn("subscription invoice failed",
			zap.Int64("subscription_id", subscriptionID))
		return nil
	}

	sub, err := s.repo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}

	on := true
	extended := sub.EndDate.Add(subscriptionPeriod)
	_, err = s.repo.UpdateSubscription(ctx, subscriptionID, UpdateSubscriptionInput{
		IsActive: &on,
		EndDate:  &extended,
	})
	if err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("subscription invoice paid",
		zap.Int64("subscription_id", subscriptionID),
		zap.Time("end_date", extended),
	)

	return nil
}
