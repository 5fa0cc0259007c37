package cart

import (
	"context"
	"errors"

	"farmdirect-be/internal/logger"
	"farmdirect-be/internal/product"

	"go.uber.org/zap"
)

type Service interface {
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*CartItem, error)
	UpdateQuantity(ctx context.Context, userID, cartItemID int64, quantity int) (*CartItem, error)
	RemoveItem(ctx context.Context, userID, cartItemID int64) error
	Clear(ctx context.Context, userID int64) error
	List(ctx context.Context, userID int64) ([]*EnrichedItem, error)
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

// AddItem adds a product to the user's cart. Adding a product that is
// already in the cart increments the existing line's quantity.
func (s *service) AddItem(ctx context.Context, userID, productID int64, quantity int) (*CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	existing, err := s.repo.GetByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return s.repo.UpdateQuantity(ctx, existing.ID, existing.Quantity+quantity)
	}

	item, err := s.repo.Create(ctx, CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to create cart item",
			zap.Int64("user_id", userID),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return nil, err
	}

	return item, nil
}

// UpdateQuantity sets an exact quantity on a cart line. Quantities below 1
// are rejected; removal is an explicit separate operation.
func (s *service) UpdateQuantity(ctx context.Context, userID, cartItemID int64, quantity int) (*CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.repo.GetByID(ctx, cartItemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		// Another user's cart line is indistinguishable from a missing one.
		return nil, ErrCartItemNotFound
	}

	return s.repo.UpdateQuantity(ctx, cartItemID, quantity)
}

func (s *service) RemoveItem(ctx context.Context, userID, cartItemID int64) error {
	item, err := s.repo.GetByID(ctx, cartItemID)
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return ErrCartItemNotFound
	}

	return s.repo.Remove(ctx, cartItemID)
}

func (s *service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}

// List returns the user's cart lines enriched with product details. A line
// whose product has been deleted is still returned with a nil product.
func (s *service) List(ctx context.Context, userID int64) ([]*EnrichedItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	enriched := make([]*EnrichedItem, 0, len(items))
	for _, item := range items {
		p, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil && !errors.Is(err, product.ErrProductNotFound) {
			return nil, err
		}
		enriched = append(enriched, &EnrichedItem{CartItem: *item, Product: p})
	}

	return enriched, nil
}
