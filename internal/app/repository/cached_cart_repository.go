package repository

import (
	"context"
	"errors"

	"github.com/ikkim/cart-backend/internal/app/model"
	"github.com/ikkim/cart-backend/pkg/logger"
)

// cachedCartRepository is a read-through cache in front of another
// CartRepository. Cache faults are logged and never fail the call.
type cachedCartRepository struct {
	next  CartRepository
	cache CartCache
}

func NewCachedCartRepository(next CartRepository, cache CartCache) CartRepository {
	return &cachedCartRepository{next: next, cache: cache}
}

func (r *cachedCartRepository) Create(ctx context.Context, cart *model.Cart) error {
	if err := r.next.Create(ctx, cart); err != nil {
		return err
	}
	r.store(ctx, cart)
	return nil
}

func (r *cachedCartRepository) FindByID(ctx context.Context, id string) (*model.Cart, error) {
	cart, err := r.cache.Get(ctx, id)
	if err == nil {
		logger.Debug("Cart served from cache", map[string]interface{}{
			"cart_id": id,
		})
		return cart, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.Warn("Cart cache read failed", map[string]interface{}{
			"cart_id": id,
			"error":   err.Error(),
		})
	}

	cart, err = r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, cart)
	return cart, nil
}

func (r *cachedCartRepository) Save(ctx context.Context, cart *model.Cart) error {
	if err := r.next.Save(ctx, cart); err != nil {
		r.evict(ctx, cart.ID)
		return err
	}
	r.store(ctx, cart)
	return nil
}

func (r *cachedCartRepository) Count(ctx context.Context) (model.CartStats, error) {
	return r.next.Count(ctx)
}

func (r *cachedCartRepository) store(ctx context.Context, cart *model.Cart) {
	if err := r.cache.Set(ctx, cart); err != nil {
		logger.Warn("Cart cache write failed", map[string]interface{}{
			"cart_id": cart.ID,
			"error":   err.Error(),
		})
	}
}

func (r *cachedCartRepository) evict(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, id); err != nil {
		logger.Warn("Cart cache eviction failed", map[string]interface{}{
			"cart_id": id,
			"error":   err.Error(),
		})
	}
}
