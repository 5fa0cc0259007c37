package cart

import (
	"context"
	"database/sql"

	"farmdirect-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetByUserAndProduct(ctx context.Context, userID, productID int64) (*CartItem, error)
	GetByID(ctx context.Context, id int64) (*CartItem, error)
	ListByUser(ctx context.Context, userID int64) ([]*CartItem, error)
	Create(ctx context.Context, item CartItem) (*CartItem, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (*CartItem, error)
	Remove(ctx context.Context, id int64) error
	Clear(ctx context.Context, userID int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*CartItem, error) {
	var item CartItem
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, product_id, quantity
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	).Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*CartItem, error) {
	var item CartItem
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, product_id, quantity
		FROM cart_items
		WHERE id = $1`, id,
	).Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity)

	if err == sql.ErrNoRows {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]*CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, quantity
		FROM cart_items
		WHERE user_id = $1
		ORDER BY id ASC`, userID)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to query cart items",
			zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := make([]*CartItem, 0)
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *repository) Create(ctx context.Context, item CartItem) (*CartItem, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`,
		item.UserID, item.ProductID, item.Quantity,
	).Scan(&item.ID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, id int64, quantity int) (*CartItem, error) {
	var item CartItem
	err := r.db.QueryRowContext(ctx, `
		UPDATE cart_items
		SET quantity = $1
		WHERE id = $2
		RETURNING id, user_id, product_id, quantity`,
		quantity, id,
	).Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity)

	if err == sql.ErrNoRows {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Remove(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1", id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// Clear is idempotent: clearing an empty cart is not an error.
func (r *repository) Clear(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	return err
}
