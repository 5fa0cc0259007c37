package payment

import (
	"context"
	"database/sql"
	"time"
)

// UpdateSubscriptionInput carries the only subscription fields that may
// change after creation. Nil fields are left untouched.
type UpdateSubscriptionInput struct {
	IsActive  *bool
	AutoRenew *bool
	EndDate   *time.Time
}

type Repository interface {
	CreatePayment(ctx context.Context, p *Payment) (*Payment, error)
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID int64) ([]*Payment, error)
	SetPaymentStatus(ctx context.Context, id int64, status Status, transactionID *string) (*Payment, error)

	CreateSubscription(ctx context.Context, s *Subscription) (*Subscription, error)
	GetSubscription(ctx context.Context, id int64) (*Subscription, error)

	// GetSubscriptionByFarmer returns (nil, nil) when the farmer has no
	// subscription.
	GetSubscriptionByFarmer(ctx context.Context, farmerID int64) (*Subscription, error)
	UpdateSubscription(ctx context.Context, id int64, input UpdateSubscriptionInput) (*Subscription, error)

	CreateSubscriptionPayment(ctx context.Context, sp *SubscriptionPayment) (*SubscriptionPayment, error)
	ListSubscriptionPayments(ctx context.Context, subscriptionID int64) ([]*SubscriptionPayment, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const paymentColumns = "id, order_id, amount, COALESCE(tip_amount, 0), method, status, transaction_id, created_at"

func scanPayment(row interface{ Scan(...interface{}) error }) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.Amount, &p.TipAmount,
		&p.Method, &p.Status, &p.TransactionID, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) CreatePayment(ctx context.Context, p *Payment) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO payments (order_id, amount, tip_amount, method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+paymentColumns,
		p.OrderID, p.Amount, p.TipAmount, p.Method, p.Status,
	)
	return scanPayment(row)
}

func (r *repository) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE id = $1", id)

	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

func (r *repository) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]*Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE order_id = $1 ORDER BY id ASC", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

func (r *repository) SetPaymentStatus(ctx context.Context, id int64, status Status, transactionID *string) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE payments SET
			status = $1,
			transaction_id = COALESCE($2, transaction_id)
		WHERE id = $3
		RETURNING `+paymentColumns, status, transactionID, id)

	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

const subscriptionColumns = "id, farmer_id, tier, price, start_date, end_date, is_active, auto_renew"

func scanSubscription(row interface{ Scan(...interface{}) error }) (*Subscription, error) {
	var s Subscription
	err := row.Scan(
		&s.ID, &s.FarmerID, &s.Tier, &s.Price,
		&s.StartDate, &s.EndDate, &s.IsActive, &s.AutoRenew,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSubscription inserts the farmer's subscription row, or renews it
// in place when one already exists: farmer_id is unique, so a farmer who
// cancelled keeps the same row (and billing history) on re-subscribe.
// Active-subscription conflicts are rejected at the service layer.
func (r *repository) CreateSubscription(ctx context.Context, s *Subscription) (*Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO subscriptions (farmer_id, tier, price, start_date, end_date, is_active, auto_renew)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (farmer_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			price = EXCLUDED.price,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			is_active = EXCLUDED.is_active,
			auto_renew = EXCLUDED.auto_renew
		RETURNING `+subscriptionColumns,
		s.FarmerID, s.Tier, s.Price, s.StartDate, s.EndDate, s.IsActive, s.AutoRenew,
	)
	return scanSubscription(row)
}

func (r *repository) GetSubscription(ctx context.Context, id int64) (*Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE id = $1", id)

	s, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, ErrSubscriptionNotFound
	}
	return s, err
}

func (r *repository) GetSubscriptionByFarmer(ctx context.Context, farmerID int64) (*Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE farmer_id = $1
		ORDER BY id DESC
		LIMIT 1`, farmerID)

	s, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *repository) UpdateSubscription(ctx context.Context, id int64, input UpdateSubscriptionInput) (*Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE subscriptions SET
			is_active = COALESCE($1, is_active),
			auto_renew = COALESCE($2, auto_renew),
			end_date = COALESCE($3, end_date)
		WHERE id = $4
		RETURNING `+subscriptionColumns,
		input.IsActive, input.AutoRenew, input.EndDate, id)

	s, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, ErrSubscriptionNotFound
	}
	return s, err
}

func (r *repository) CreateSubscriptionPayment(ctx context.Context, sp *SubscriptionPayment) (*SubscriptionPayment, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO subscription_payments (subscription_id, amount, method, status, transaction_id, billing_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, subscription_id, amount, method, status, transaction_id, billing_date`,
		sp.SubscriptionID, sp.Amount, sp.Method, sp.Status, sp.TransactionID, sp.BillingDate,
	)

	var out SubscriptionPayment
	err := row.Scan(
		&out.ID, &out.SubscriptionID, &out.Amount, &out.Method,
		&out.Status, &out.TransactionID, &out.BillingDate,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repository) ListSubscriptionPayments(ctx context.Context, subscriptionID int64) ([]*SubscriptionPayment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subscription_id, amount, method, status, transaction_id, billing_date
		FROM subscription_payments
		WHERE subscription_id = $1
		ORDER BY id ASC`, subscriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*SubscriptionPayment, 0)
	for rows.Next() {
		var sp SubscriptionPayment
		err := rows.Scan(
			&sp.ID, &sp.SubscriptionID, &sp.Amount, &sp.Method,
			&sp.Status, &sp.TransactionID, &sp.BillingDate,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, &sp)
	}

	return payments, rows.Err()
}
