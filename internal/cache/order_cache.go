// Package cache provides a Redis read-through layer over the order
// repository. Single-order reads are cached; every mutation invalidates
// the affected key so callers never see a stale status.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"farmdirect-be/internal/logger"
	"farmdirect-be/internal/order"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultTTL = 5 * time.Minute

type OrderRepository struct {
	primary order.Repository
	client  *redis.Client
	ttl     time.Duration
}

func NewOrderRepository(primary order.Repository, client *redis.Client) *OrderRepository {
	return &OrderRepository{
		primary: primary,
		client:  client,
		ttl:     defaultTTL,
	}
}

func orderKey(id int64) string {
	return fmt.Sprintf("order:%d", id)
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	key := orderKey(id)
	log := logger.FromCtx(ctx)

	cached, err := r.client.Get(ctx, key).Result()
	if err == nil {
		var o order.Order
		if err := json.Unmarshal([]byte(cached), &o); err == nil {
			return &o, nil
		}
		log.Warn("corrupt cache entry, falling through", zap.String("key", key))
	} else if err != redis.Nil {
		log.Warn("redis get failed, falling through", zap.String("key", key), zap.Error(err))
	}

	o, err := r.primary.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(o); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			log.Warn("redis set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return o, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status order.Status, now time.Time) (*order.Order, error) {
	defer r.invalidate(ctx, orderID)
	return r.primary.UpdateStatus(ctx, orderID, status, now)
}

func (r *OrderRepository) AssignDeliveryPerson(ctx context.Context, orderID, deliveryPersonID int64, scheduledTime time.Time) (*order.Order, error) {
	defer r.invalidate(ctx, orderID)
	return r.primary.AssignDeliveryPerson(ctx, orderID, deliveryPersonID, scheduledTime)
}

func (r *OrderRepository) invalidate(ctx context.Context, orderID int64) {
	if err := r.client.Del(ctx, orderKey(orderID)).Err(); err != nil {
		logger.FromCtx(ctx).Warn("cache invalidation failed",
			zap.Int64("order_id", orderID), zap.Error(err))
	}
}

// The remaining reads are list-shaped and change too often to cache.

func (r *OrderRepository) PlaceOrder(ctx context.Context, params order.PlaceOrderParams) (*order.Order, error) {
	return r.primary.PlaceOrder(ctx, params)
}

func (r *OrderRepository) GetItems(ctx context.Context, orderID int64) ([]*order.OrderItem, error) {
	return r.primary.GetItems(ctx, orderID)
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*order.Order, error) {
	return r.primary.ListByCustomer(ctx, customerID)
}

func (r *OrderRepository) ListByDeliveryPerson(ctx context.Context, deliveryPersonID int64) ([]*order.Order, error) {
	return r.primary.ListByDeliveryPerson(ctx, deliveryPersonID)
}

func (r *OrderRepository) ListByFarmer(ctx context.Context, farmerID int64) ([]*order.Order, error) {
	return r.primary.ListByFarmer(ctx, farmerID)
}
