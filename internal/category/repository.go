package category

import (
	"context"
	"database/sql"
	"errors"

	"farmdirect-be/internal/logger"

	"go.uber.org/zap"
)

var ErrCategoryNotFound = errors.New("category not found")

type Repository interface {
	GetCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	AddCategory(ctx context.Context, name, icon, color string) (*Category, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, icon, color FROM categories ORDER BY name ASC")
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to query categories", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	categories := make([]*Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}

	return categories, rows.Err()
}

func (r *repository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, icon, color FROM categories WHERE id = $1", id,
	).Scan(&c.ID, &c.Name, &c.Icon, &c.Color)

	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) AddCategory(ctx context.Context, name, icon, color string) (*Category, error) {
	log := logger.FromCtx(ctx).With(zap.String("category_name", name))

	var c Category
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, icon, color)
		VALUES ($1, $2, $3)
		RETURNING id, name, icon, color`,
		name, icon, color,
	).Scan(&c.ID, &c.Name, &c.Icon, &c.Color)
	if err != nil {
		log.Error("db: failed to insert category", zap.Error(err))
		return nil, err
	}

	return &c, nil
}
