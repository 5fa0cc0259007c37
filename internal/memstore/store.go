// Package memstore is an in-process implementation of every domain
// repository. It backs dev mode (DB_DRIVER=memory) and isolated tests.
//
// A single RWMutex guards the whole store, so compound operations such as
// placing an order or claiming a delivery are atomic with respect to every
// other store call. IDs are per-entity counters and are never reused.
package memstore

import (
	"sort"
	"sync"

	"farmdirect-be/internal/cart"
	"farmdirect-be/internal/category"
	"farmdirect-be/internal/delivery"
	"farmdirect-be/internal/order"
	"farmdirect-be/internal/payment"
	"farmdirect-be/internal/product"
	"farmdirect-be/internal/user"
)

type Store struct {
	mu sync.RWMutex

	users                map[int64]user.User
	categories           map[int64]category.Category
	products             map[int64]product.Product
	cartItems            map[int64]cart.CartItem
	orders               map[int64]order.Order
	orderItems           map[int64]order.OrderItem
	deliveries           map[int64]delivery.Delivery
	payments             map[int64]payment.Payment
	subscriptions        map[int64]payment.Subscription
	subscriptionPayments map[int64]payment.SubscriptionPayment

	seq map[string]int64
}

func New() *Store {
	return &Store{
		users:                make(map[int64]user.User),
		categories:           make(map[int64]category.Category),
		products:             make(map[int64]product.Product),
		cartItems:            make(map[int64]cart.CartItem),
		orders:               make(map[int64]order.Order),
		orderItems:           make(map[int64]order.OrderItem),
		deliveries:           make(map[int64]delivery.Delivery),
		payments:             make(map[int64]payment.Payment),
		subscriptions:        make(map[int64]payment.Subscription),
		subscriptionPayments: make(map[int64]payment.SubscriptionPayment),
		seq:                  make(map[string]int64),
	}
}

// next returns the next id for an entity. Callers must hold the write
// lock.
func (s *Store) next(entity string) int64 {
	s.seq[entity]++
	return s.seq[entity]
}

func (s *Store) Users() user.Repository          { return &userRepo{s} }
func (s *Store) Categories() category.Repository { return &categoryRepo{s} }
func (s *Store) Products() product.Repository    { return &productRepo{s} }
func (s *Store) Carts() cart.Repository          { return &cartRepo{s} }
func (s *Store) Orders() order.Repository        { return &orderRepo{s} }
func (s *Store) Deliveries() delivery.Repository { return &deliveryRepo{s} }
func (s *Store) Payments() payment.Repository    { return &paymentRepo{s} }

// sortedIDs returns the keys of an entity map in ascending order, which
// stands in for the ORDER BY id the SQL repositories use.
func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func reversed(ids []int64) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}
