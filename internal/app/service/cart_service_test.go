package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/ikkim/cart-backend/internal/app/model"
	"github.com/ikkim/cart-backend/internal/app/repository"
	"github.com/ikkim/cart-backend/internal/db"
	apperrors "github.com/ikkim/cart-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (CartService, *model.Cart) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartService := NewCartService(repository.NewCartRepository(testDB))

	cart, err := cartService.CreateCart(context.Background())
	require.NoError(t, err)

	return cartService, cart
}

func TestCartService_CreateCart(t *testing.T) {
	cartService, cart := setupCartServiceTest(t)

	assert.NotEmpty(t, cart.ID)
	assert.NotNil(t, cart.Products)
	assert.Len(t, cart.Products, 0)

	found, err := cartService.GetCart(context.Background(), cart.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)
	assert.Len(t, found.Products, 0)
}

func TestCartService_GetCart_NotFound(t *testing.T) {
	cartService, _ := setupCartServiceTest(t)

	_, err := cartService.GetCart(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrCartNotFound)

	_, err = cartService.GetCart(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, apperrors.ErrCartNotFound)
}

func TestCartService_AddProduct(t *testing.T) {
	cartService, cart := setupCartServiceTest(t)
	ctx := context.Background()

	updated, action, err := cartService.AddProduct(ctx, cart.ID, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, ActionAppended, action)
	require.Len(t, updated.Products, 1)

	updated, action, err = cartService.AddProduct(ctx, cart.ID, "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, ActionMerged, action)
	require.Len(t, updated.Products, 1)
	assert.Equal(t, 5, updated.Products[0].Quantity)

	_, _, err = cartService.AddProduct(ctx, cart.ID, "p2", 1)
	require.NoError(t, err)

	found, err := cartService.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, found.Products, 2)
	assert.Equal(t, "p1", found.Products[0].ProductID)
	assert.Equal(t, 5, found.Products[0].Quantity)
	assert.Equal(t, "p2", found.Products[1].ProductID)
}

func TestCartService_AddProduct_Errors(t *testing.T) {
	cartService, cart := setupCartServiceTest(t)
	ctx := context.Background()

	_, _, err := cartService.AddProduct(ctx, uuid.NewString(), "p1", 1)
	assert.ErrorIs(t, err, apperrors.ErrCartNotFound)

	_, _, err = cartService.AddProduct(ctx, cart.ID, "p1", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)

	found, err := cartService.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, found.Products, 0)
}

func TestCartService_SetProductQuantity(t *testing.T) {
	cartService, cart := setupCartServiceTest(t)
	ctx := context.Background()

	_, _, err := cartService.AddProduct(ctx, cart.ID, "p1", 2)
	require.NoError(t, err)

	updated, action, err := cartService.SetProductQuantity(ctx, cart.ID, "p1", 7)
	require.NoError(t, err)
	assert.Equal(t, ActionMerged, action)
	require.Len(t, updated.Products, 1)
	assert.Equal(t, 7, updated.Products[0].Quantity)

	found, err := cartService.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, found.Products[0].Quantity)
}

func TestCartService_SetProductQuantity_AbsentProduct(t *testing.T) {
	cartService, cart := setupCartServiceTest(t)
	ctx := context.Background()

	_, _, err := cartService.AddProduct(ctx, cart.ID, "p1", 2)
	require.NoError(t, err)

	updated, action, err := cartService.SetProductQuantity(ctx, cart.ID, "missing", 4)
	require.NoError(t, err)
	assert.Equal(t, ActionNotFoundNoop, action)
	require.Len(t, updated.Products, 1)
	assert.Equal(t, "p1", updated.Products[0].ProductID)
	assert.Equal(t, 2, updated.Products[0].Quantity)
}

func TestCartService_AppendProducts(t *testing.T) {
	cartService, cart := setupCartServiceTest(t)
	ctx := context.Background()

	_, _, err := cartService.AddProduct(ctx, cart.ID, "p1", 1)
	require.NoError(t, err)

	updated, err := cartService.AppendProducts(ctx, cart.ID, []model.LineItem{
		{ProductID: "p2", Quantity: 2},
		{ProductID: "p3", Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, updated.Products, 3)
	assert.Equal(t, "p3", updated.Products[2].ProductID)

	_, err = cartService.AppendProducts(ctx, cart.ID, []model.LineItem{{ProductID: "p2", Quantity: 1}})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateProduct)

	found, err := cartService.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, found.Products, 3)
}

func TestCartService_RemoveProduct(t *testing.T) {
	cartService, cart := setupCartServiceTest(t)
	ctx := context.Background()

	_, err := cartService.AppendProducts(ctx, cart.ID, []model.LineItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 2},
	})
	require.NoError(t, err)

	updated, err := cartService.RemoveProduct(ctx, cart.ID, "p1")
	require.NoError(t, err)
	require.Len(t, updated.Products, 1)
	assert.Equal(t, "p2", updated.Products[0].ProductID)

	_, err = cartService.RemoveProduct(ctx, cart.ID, "p1")
	assert.ErrorIs(t, err, apperrors.ErrProductNotInCart)
}

func TestCartService_ClearProducts(t *testing.T) {
	cartService, cart := setupCartServiceTest(t)
	ctx := context.Background()

	_, _, err := cartService.AddProduct(ctx, cart.ID, "p1", 3)
	require.NoError(t, err)

	cleared, err := cartService.ClearProducts(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, cleared.Products, 0)

	// 빈 장바구니를 다시 비워도 성공
	cleared, err = cartService.ClearProducts(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, cleared.Products, 0)

	found, err := cartService.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, found.Products, 0)

	_, err = cartService.ClearProducts(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrCartNotFound)
}

func TestCartService_Stats(t *testing.T) {
	cartService, cart := setupCartServiceTest(t)
	ctx := context.Background()

	_, err := cartService.AppendProducts(ctx, cart.ID, []model.LineItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 5},
	})
	require.NoError(t, err)
	_, err = cartService.CreateCart(ctx)
	require.NoError(t, err)

	stats, err := cartService.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Carts)
	assert.Equal(t, int64(2), stats.LineItems)
	assert.Equal(t, int64(7), stats.Units)
}

// memoryCartRepository is an in-process CartRepository for tests that need
// to inject store failures.
type memoryCartRepository struct {
	carts   map[string]model.Cart
	saveErr error
	saves   int
}

func newMemoryCartRepository() *memoryCartRepository {
	return &memoryCartRepository{carts: map[string]model.Cart{}}
}

func (m *memoryCartRepository) Create(_ context.Context, cart *model.Cart) error {
	cart.ID = uuid.NewString()
	m.carts[cart.ID] = *cart
	return nil
}

func (m *memoryCartRepository) FindByID(_ context.Context, id string) (*model.Cart, error) {
	cart, ok := m.carts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cart.Products = append([]model.LineItem{}, cart.Products...)
	return &cart, nil
}

func (m *memoryCartRepository) Save(_ context.Context, cart *model.Cart) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.carts[cart.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *cart
	stored.Products = append([]model.LineItem{}, cart.Products...)
	m.carts[cart.ID] = stored
	return nil
}

func (m *memoryCartRepository) Count(_ context.Context) (model.CartStats, error) {
	return model.CartStats{Carts: int64(len(m.carts))}, nil
}

func TestCartService_PersistenceFailure(t *testing.T) {
	repo := newMemoryCartRepository()
	cartService := NewCartService(repo)
	ctx := context.Background()

	cart, err := cartService.CreateCart(ctx)
	require.NoError(t, err)

	repo.saveErr = errors.New("connection reset")
	_, _, err = cartService.AddProduct(ctx, cart.ID, "p1", 1)
	assert.ErrorIs(t, err, apperrors.ErrPersistenceFailure)
	assert.NotErrorIs(t, err, apperrors.ErrCartNotFound)

	found, err := cartService.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, found.Products, 0)
}

func TestCartService_ReplaceNoopSkipsWrite(t *testing.T) {
	repo := newMemoryCartRepository()
	cartService := NewCartService(repo)
	ctx := context.Background()

	cart, err := cartService.CreateCart(ctx)
	require.NoError(t, err)
	_, _, err = cartService.AddProduct(ctx, cart.ID, "p1", 2)
	require.NoError(t, err)
	require.Equal(t, 1, repo.saves)

	_, action, err := cartService.SetProductQuantity(ctx, cart.ID, "p3", 9)
	require.NoError(t, err)
	assert.Equal(t, ActionNotFoundNoop, action)
	assert.Equal(t, 1, repo.saves)
}
