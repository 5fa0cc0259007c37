package delivery

import (
	"context"
	"database/sql"
)

// Repository reads delivery records. Rows are created by order
// self-assignment and mutated by order status transitions, both of which
// live in the order repository's transactions; this side only queries.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Delivery, error)
	ListByDeliveryPerson(ctx context.Context, deliveryPersonID int64) ([]*Delivery, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const deliveryColumns = "id, delivery_person_id, order_id, status, scheduled_time, start_time, completed_time, route_info"

func scanDelivery(row interface{ Scan(...interface{}) error }) (*Delivery, error) {
	var d Delivery
	err := row.Scan(
		&d.ID, &d.DeliveryPersonID, &d.OrderID, &d.Status,
		&d.ScheduledTime, &d.StartTime, &d.CompletedTime, &d.RouteInfo,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Delivery, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+deliveryColumns+" FROM deliveries WHERE id = $1", id)

	d, err := scanDelivery(row)
	if err == sql.ErrNoRows {
		return nil, ErrDeliveryNotFound
	}
	return d, err
}

func (r *repository) ListByDeliveryPerson(ctx context.Context, deliveryPersonID int64) ([]*Delivery, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+deliveryColumns+" FROM deliveries WHERE delivery_person_id = $1 ORDER BY id DESC",
		deliveryPersonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := make([]*Delivery, 0)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, rows.Err()
}
