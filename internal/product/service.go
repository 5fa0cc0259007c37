package product

import (
	"context"

	"farmdirect-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, farmerID int64, input NewProductInput) (*Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]*Product, error)
	ListFeatured(ctx context.Context, limit int) ([]*Product, error)
	ListByFarmer(ctx context.Context, farmerID int64) ([]*Product, error)
	Update(ctx context.Context, farmerID, id int64, input UpdateProductInput) (*Product, error)
	Delete(ctx context.Context, farmerID, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, farmerID int64, input NewProductInput) (*Product, error) {
	if input.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if input.Stock < 0 {
		return nil, ErrInvalidStock
	}

	p, err := s.repo.Create(ctx, farmerID, input)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product created",
		zap.Int64("product_id", p.ID),
		zap.Int64("farmer_id", farmerID),
	)
	return p, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Product, error) {
	return s.repo.List(ctx, opts)
}

func (s *service) ListFeatured(ctx context.Context, limit int) ([]*Product, error) {
	featured := true
	return s.repo.List(ctx, ListOptions{Featured: &featured, Limit: limit})
}

func (s *service) ListByFarmer(ctx context.Context, farmerID int64) ([]*Product, error) {
	return s.repo.GetByFarmer(ctx, farmerID)
}

func (s *service) Update(ctx context.Context, farmerID, id int64, input UpdateProductInput) (*Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.FarmerID != farmerID {
		return nil, ErrNotOwner
	}

	if input.Price != nil && *input.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, ErrInvalidStock
	}

	return s.repo.Update(ctx, id, input)
}

func (s *service) Delete(ctx context.Context, farmerID, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.FarmerID != farmerID {
		return ErrNotOwner
	}

	return s.repo.Delete(ctx, id)
}
