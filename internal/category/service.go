package category

import (
	"context"
	"errors"

	"farmdirect-be/internal/logger"

	"go.uber.org/zap"
)

var ErrEmptyName = errors.New("category name cannot be empty")

type Service interface {
	GetCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	AddCategory(ctx context.Context, name, icon, color string) (*Category, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.GetCategories(ctx)
}

func (s *service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *service) AddCategory(ctx context.Context, name, icon, color string) (*Category, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	c, err := s.repo.AddCategory(ctx, name, icon, color)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to add category", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	return c, nil
}
