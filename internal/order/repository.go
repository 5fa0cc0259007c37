package order

import (
	"context"
	"database/sql"
	"time"

	"farmdirect-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// PlaceOrder converts the customer's cart into an order plus order
	// items and clears the cart, all inside one transaction.
	PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Order, error)

	GetByID(ctx context.Context, id int64) (*Order, error)
	GetItems(ctx context.Context, orderID int64) ([]*OrderItem, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*Order, error)
	ListByDeliveryPerson(ctx context.Context, deliveryPersonID int64) ([]*Order, error)
	ListByFarmer(ctx context.Context, farmerID int64) ([]*Order, error)

	// UpdateStatus sets the order's status and mirrors it onto the
	// order's delivery record (if any) in the same transaction,
	// stamping start/completed times on the relevant transitions.
	UpdateStatus(ctx context.Context, orderID int64, status Status, now time.Time) (*Order, error)

	// AssignDeliveryPerson claims an unassigned order for the given
	// delivery person and creates its delivery record (status confirmed,
	// with the given scheduled time) in the same transaction. Returns
	// ErrAlreadyAssigned when another claim won.
	AssignDeliveryPerson(ctx context.Context, orderID, deliveryPersonID int64, scheduledTime time.Time) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = "id, customer_id, total_amount, status, created_at, delivery_address, COALESCE(delivery_notes, ''), delivery_person_id, estimated_delivery"

func scanOrder(row interface{ Scan(...interface{}) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.TotalAmount, &o.Status, &o.CreatedAt,
		&o.DeliveryAddress, &o.DeliveryNotes, &o.DeliveryPersonID,
		&o.EstimatedDelivery,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(zap.Int64("customer_id", params.CustomerID))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// 1. Read cart lines joined with product prices. The join re-validates
	// product existence inside the transaction so a concurrent deletion
	// cannot produce a partial order.
	rows, err := tx.QueryContext(ctx, `
		SELECT c.id, c.product_id, c.quantity, p.price
		FROM cart_items c
		LEFT JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id ASC`, params.CustomerID)
	if err != nil {
		return nil, err
	}

	type line struct {
		productID int64
		quantity  int
		price     float64
	}
	var lines []line
	var total float64

	for rows.Next() {
		var cartID int64
		var l line
		var price sql.NullFloat64
		if err := rows.Scan(&cartID, &l.productID, &l.quantity, &price); err != nil {
			rows.Close()
			return nil, err
		}
		if !price.Valid {
			rows.Close()
			log.Warn("cart references a missing product",
				zap.Int64("product_id", l.productID))
			return nil, ErrProductNotFound
		}
		l.price = price.Float64
		lines = append(lines, l)
		total += l.price * float64(l.quantity)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// 2. Create the order in pending status with the snapshotted total.
	var o Order
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, total_amount, status, delivery_address, delivery_notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderColumns,
		params.CustomerID, total, StatusPending,
		params.DeliveryAddress, nullableString(params.DeliveryNotes),
	).Scan(
		&o.ID, &o.CustomerID, &o.TotalAmount, &o.Status, &o.CreatedAt,
		&o.DeliveryAddress, &o.DeliveryNotes, &o.DeliveryPersonID,
		&o.EstimatedDelivery,
	)
	if err != nil {
		return nil, err
	}

	// 3. Snapshot each cart line into an order item.
	for _, l := range lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)`,
			o.ID, l.productID, l.quantity, l.price,
		)
		if err != nil {
			return nil, err
		}
	}

	// 4. Clear the cart.
	_, err = tx.ExecContext(ctx,
		"DELETE FROM cart_items WHERE user_id = $1", params.CustomerID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("order placed",
		zap.Int64("order_id", o.ID),
		zap.Float64("total_amount", o.TotalAmount),
		zap.Int("line_count", len(lines)),
	)

	return &o, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (r *repository) GetItems(ctx context.Context, orderID int64) ([]*OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*OrderItem, 0)
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *repository) listWhere(ctx context.Context, where string, arg interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE "+where+" ORDER BY id DESC", arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64) ([]*Order, error) {
	return r.listWhere(ctx, "customer_id = $1", customerID)
}

func (r *repository) ListByDeliveryPerson(ctx context.Context, deliveryPersonID int64) ([]*Order, error) {
	return r.listWhere(ctx, "delivery_person_id = $1", deliveryPersonID)
}

// ListByFarmer returns orders containing at least one of the farmer's
// products.
func (r *repository) ListByFarmer(ctx context.Context, farmerID int64) ([]*Order, error) {
	return r.listWhere(ctx, `id IN (
		SELECT DISTINCT oi.order_id
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE p.farmer_id = $1
	)`, farmerID)
}

func (r *repository) UpdateStatus(ctx context.Context, orderID int64, status Status, now time.Time) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE orders SET status = $1 WHERE id = $2
		RETURNING `+orderColumns, status, orderID)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	// Mirror the status onto the delivery record, stamping startTime when
	// the order goes out for delivery and completedTime when delivered.
	_, err = tx.ExecContext(ctx, `
		UPDATE deliveries SET
			status = $1,
			start_time = CASE
				WHEN $1 = 'out_for_delivery' AND start_time IS NULL THEN $2
				ELSE start_time
			END,
			completed_time = CASE
				WHEN $1 = 'delivered' THEN $2
				ELSE completed_time
			END
		WHERE order_id = $3`, status, now, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return o, nil
}

func (r *repository) AssignDeliveryPerson(ctx context.Context, orderID, deliveryPersonID int64, scheduledTime time.Time) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// The IS NULL guard makes concurrent claims race-safe: the loser
	// updates zero rows.
	row := tx.QueryRowContext(ctx, `
		UPDATE orders SET delivery_person_id = $1
		WHERE id = $2 AND delivery_person_id IS NULL
		RETURNING `+orderColumns, deliveryPersonID, orderID)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrAlreadyAssigned
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO deliveries (delivery_person_id, order_id, status, scheduled_time)
		VALUES ($1, $2, $3, $4)`,
		deliveryPersonID, orderID, StatusConfirmed, scheduledTime,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return o, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
