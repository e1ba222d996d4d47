package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/cart-backend/internal/app/model"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// CartCache stores serialized carts keyed by cart ID.
type CartCache interface {
	Get(ctx context.Context, cartID string) (*model.Cart, error)
	Set(ctx context.Context, cart *model.Cart) error
	Delete(ctx context.Context, cartID string) error
}

type redisCartCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartCache(client *redis.Client, ttl time.Duration) CartCache {
	return &redisCartCache{client: client, ttl: ttl}
}

func cartCacheKey(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}

func (c *redisCartCache) Get(ctx context.Context, cartID string) (*model.Cart, error) {
	raw, err := c.client.Get(ctx, cartCacheKey(cartID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var cached cachedCart
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("decode cached cart %s: %w", cartID, err)
	}
	return cached.toModel(), nil
}

func (c *redisCartCache) Set(ctx context.Context, cart *model.Cart) error {
	raw, err := json.Marshal(newCachedCart(cart))
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cart.ID, err)
	}
	return c.client.Set(ctx, cartCacheKey(cart.ID), raw, c.ttl).Err()
}

func (c *redisCartCache) Delete(ctx context.Context, cartID string) error {
	return c.client.Del(ctx, cartCacheKey(cartID)).Err()
}

// cachedCart mirrors the API representation; LineItem hides its storage
// columns from JSON so they are dropped here as well.
type cachedCart struct {
	ID        string           `json:"id"`
	Products  []model.LineItem `json:"products"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func newCachedCart(cart *model.Cart) cachedCart {
	return cachedCart{
		ID:        cart.ID,
		Products:  cart.Products,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}

func (c cachedCart) toModel() *model.Cart {
	products := c.Products
	if products == nil {
		products = []model.LineItem{}
	}
	for i := range products {
		products[i].CartID = c.ID
		products[i].Position = i
	}
	return &model.Cart{
		ID:        c.ID,
		Products:  products,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
