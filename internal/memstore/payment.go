package memstore

import (
	"context"
	"time"

	"farmdirect-be/internal/payment"
)

type paymentRepo struct {
	s *Store
}

func (r *paymentRepo) CreatePayment(_ context.Context, p *payment.Payment) (*payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *p
	stored.ID = r.s.next("payment")
	stored.CreatedAt = time.Now()
	r.s.payments[stored.ID] = stored
	return clonePayment(stored), nil
}

func (r *paymentRepo) GetPayment(_ context.Context, id int64) (*payment.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	return clonePayment(p), nil
}

func (r *paymentRepo) ListPaymentsByOrder(_ context.Context, orderID int64) ([]*payment.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*payment.Payment, 0)
	for _, id := range sortedIDs(r.s.payments) {
		if r.s.payments[id].OrderID == orderID {
			out = append(out, clonePayment(r.s.payments[id]))
		}
	}
	return out, nil
}

func (r *paymentRepo) SetPaymentStatus(_ context.Context, id int64, status payment.Status, transactionID *string) (*payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}

	p.Status = status
	if transactionID != nil {
		tx := *transactionID
		p.TransactionID = &tx
	}
	r.s.payments[id] = p
	return clonePayment(p), nil
}

// CreateSubscription keeps one row per farmer: a farmer re-subscribing
// after cancellation renews the existing row, keeping its id and its
// billing history. Active-subscription conflicts are rejected at the
// service layer.
func (r *paymentRepo) CreateSubscription(_ context.Context, sub *payment.Subscription) (*payment.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *sub
	for _, id := range sortedIDs(r.s.subscriptions) {
		if r.s.subscriptions[id].FarmerID == sub.FarmerID {
			stored.ID = id
			break
		}
	}
	if stored.ID == 0 {
		stored.ID = r.s.next("subscription")
	}
	r.s.subscriptions[stored.ID] = stored
	out := stored
	return &out, nil
}

func (r *paymentRepo) GetSubscription(_ context.Context, id int64) (*payment.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sub, ok := r.s.subscriptions[id]
	if !ok {
		return nil, payment.ErrSubscriptionNotFound
	}
	out := sub
	return &out, nil
}

func (r *paymentRepo) GetSubscriptionByFarmer(_ context.Context, farmerID int64) (*payment.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, id := range reversed(sortedIDs(r.s.subscriptions)) {
		if r.s.subscriptions[id].FarmerID == farmerID {
			out := r.s.subscriptions[id]
			return &out, nil
		}
	}
	return nil, nil
}

func (r *paymentRepo) UpdateSubscription(_ context.Context, id int64, input payment.UpdateSubscriptionInput) (*payment.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sub, ok := r.s.subscriptions[id]
	if !ok {
		return nil, payment.ErrSubscriptionNotFound
	}

	if input.IsActive != nil {
		sub.IsActive = *input.IsActive
	}
	if input.AutoRenew != nil {
		sub.AutoRenew = *input.AutoRenew
	}
	if input.EndDate != nil {
		sub.EndDate = *input.EndDate
	}
	r.s.subscriptions[id] = sub
	out := sub
	return &out, nil
}

func (r *paymentRepo) CreateSubscriptionPayment(_ context.Context, sp *payment.SubscriptionPayment) (*payment.SubscriptionPayment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *sp
	stored.ID = r.s.next("subscription_payment")
	r.s.subscriptionPayments[stored.ID] = stored
	out := stored
	return &out, nil
}

func (r *paymentRepo) ListSubscriptionPayments(_ context.Context, subscriptionID int64) ([]*payment.SubscriptionPayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*payment.SubscriptionPayment, 0)
	for _, id := range sortedIDs(r.s.subscriptionPayments) {
		if r.s.subscriptionPayments[id].SubscriptionID == subscriptionID {
			sp := r.s.subscriptionPayments[id]
			out = append(out, &sp)
		}
	}
	return out, nil
}

func clonePayment(p payment.Payment) *payment.Payment {
	if p.TransactionID != nil {
		tx := *p.TransactionID
		p.TransactionID = &tx
	}
	return &p
}
