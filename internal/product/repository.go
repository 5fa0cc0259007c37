package product

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"farmdirect-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, farmerID int64, input NewProductInput) (*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]*Product, error)
	GetByFarmer(ctx context.Context, farmerID int64) ([]*Product, error)
	Update(ctx context.Context, id int64, input UpdateProductInput) (*Product, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = "id, name, description, price, unit, image_urls, stock, category_id, farmer_id, organic, featured"

func scanProduct(row interface{ Scan(...interface{}) error }) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Unit,
		pq.Array(&p.ImageURLs), &p.Stock, &p.CategoryID, &p.FarmerID,
		&p.Organic, &p.Featured,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, farmerID int64, input NewProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.Int64("farmer_id", farmerID),
		zap.String("product_name", input.Name),
	)

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, unit, image_urls, stock, category_id, farmer_id, organic, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+productColumns,
		input.Name, input.Description, input.Price, input.Unit,
		pq.Array(input.ImageURLs), input.Stock, input.CategoryID, farmerID,
		input.Organic, input.Featured,
	)

	p, err := scanProduct(row)
	if err != nil {
		log.Error("db: failed to insert product", zap.Error(err))
		return nil, err
	}

	return p, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Product, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := "SELECT " + productColumns + " FROM products"
	where := []string{}
	args := []interface{}{}

	if opts.CategoryID != nil {
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)+1))
		args = append(args, *opts.CategoryID)
	}
	if opts.Featured != nil {
		where = append(where, fmt.Sprintf("featured = $%d", len(args)+1))
		args = append(args, *opts.Featured)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := make([]*Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *repository) GetByFarmer(ctx context.Context, farmerID int64) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE farmer_id = $1 ORDER BY id ASC", farmerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *repository) Update(ctx context.Context, id int64, input UpdateProductInput) (*Product, error) {
	set := []string{}
	args := []interface{}{}

	add := func(col string, v interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, v)
	}

	if input.Name != nil {
		add("name", *input.Name)
	}
	if input.Description != nil {
		add("description", *input.Description)
	}
	if input.Price != nil {
		add("price", *input.Price)
	}
	if input.Unit != nil {
		add("unit", *input.Unit)
	}
	if input.ImageURLs != nil {
		add("image_urls", pq.Array(input.ImageURLs))
	}
	if input.Stock != nil {
		add("stock", *input.Stock)
	}
	if input.CategoryID != nil {
		add("category_id", *input.CategoryID)
	}
	if input.Organic != nil {
		add("organic", *input.Organic)
	}
	if input.Featured != nil {
		add("featured", *input.Featured)
	}

	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf(
		"UPDATE products SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args)+1, productColumns,
	)
	args = append(args, id)

	row := r.db.QueryRowContext(ctx, query, args...)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
