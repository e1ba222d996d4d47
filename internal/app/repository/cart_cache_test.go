package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ikkim/cart-backend/internal/app/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedCart_RoundTrip(t *testing.T) {
	cart := &model.Cart{
		ID:       "c1",
		Products: []model.LineItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}},
	}

	raw, err := json.Marshal(newCachedCart(cart))
	require.NoError(t, err)

	var cached cachedCart
	require.NoError(t, json.Unmarshal(raw, &cached))
	restored := cached.toModel()

	assert.Equal(t, "c1", restored.ID)
	require.Len(t, restored.Products, 2)
	assert.Equal(t, "c1", restored.Products[1].CartID)
	assert.Equal(t, 1, restored.Products[1].Position)
	assert.Equal(t, "p2", restored.Products[1].ProductID)
}

func TestCartCacheKey(t *testing.T) {
	assert.Equal(t, "cart:abc", cartCacheKey("abc"))
}

// 연결할 수 없는 redis 로도 조회가 실패하면 안 됨
func TestCachedCartRepository_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	store, _ := setupCartRepositoryTest(t)
	repo := NewCachedCartRepository(store, NewRedisCartCache(client, time.Minute))
	ctx := context.Background()

	cart := &model.Cart{}
	require.NoError(t, repo.Create(ctx, cart))

	found, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)

	found.Products = []model.LineItem{{ProductID: "p1", Quantity: 1}}
	require.NoError(t, repo.Save(ctx, found))
}
