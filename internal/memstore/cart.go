package memstore

import (
	"context"

	"farmdirect-be/internal/cart"
)

type cartRepo struct {
	s *Store
}

func (r *cartRepo) GetByUserAndProduct(_ context.Context, userID, productID int64) (*cart.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, id := range sortedIDs(r.s.cartItems) {
		item := r.s.cartItems[id]
		if item.UserID == userID && item.ProductID == productID {
			return &item, nil
		}
	}
	return nil, nil
}

func (r *cartRepo) GetByID(_ context.Context, id int64) (*cart.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.cartItems[id]
	if !ok {
		return nil, cart.ErrCartItemNotFound
	}
	return &item, nil
}

func (r *cartRepo) ListByUser(_ context.Context, userID int64) ([]*cart.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*cart.CartItem, 0)
	for _, id := range sortedIDs(r.s.cartItems) {
		if r.s.cartItems[id].UserID == userID {
			item := r.s.cartItems[id]
			out = append(out, &item)
		}
	}
	return out, nil
}

func (r *cartRepo) Create(_ context.Context, item cart.CartItem) (*cart.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item.ID = r.s.next("cart_item")
	r.s.cartItems[item.ID] = item
	return &item, nil
}

func (r *cartRepo) UpdateQuantity(_ context.Context, id int64, quantity int) (*cart.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.cartItems[id]
	if !ok {
		return nil, cart.ErrCartItemNotFound
	}
	item.Quantity = quantity
	r.s.cartItems[id] = item
	return &item, nil
}

func (r *cartRepo) Remove(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cartItems[id]; !ok {
		return cart.ErrCartItemNotFound
	}
	delete(r.s.cartItems, id)
	return nil
}

func (r *cartRepo) Clear(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, item := range r.s.cartItems {
		if item.UserID == userID {
			delete(r.s.cartItems, id)
		}
	}
	return nil
}
