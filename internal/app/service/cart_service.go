package service

import (
	"context"

	"github.com/ikkim/cart-backend/internal/app/model"
	"github.com/ikkim/cart-backend/internal/app/repository"
	apperrors "github.com/ikkim/cart-backend/internal/errors"
	"github.com/ikkim/cart-backend/pkg/logger"
)

type CartService interface {
	CreateCart(ctx context.Context) (*model.Cart, error)
	GetCart(ctx context.Context, cartID string) (*model.Cart, error)
	AddProduct(ctx context.Context, cartID, productID string, quantity int) (*model.Cart, Action, error)
	SetProductQuantity(ctx context.Context, cartID, productID string, quantity int) (*model.Cart, Action, error)
	AppendProducts(ctx context.Context, cartID string, items []model.LineItem) (*model.Cart, error)
	RemoveProduct(ctx context.Context, cartID, productID string) (*model.Cart, error)
	ClearProducts(ctx context.Context, cartID string) (*model.Cart, error)
	Stats(ctx context.Context) (model.CartStats, error)
}

type cartService struct {
	cartRepo repository.CartRepository
}

func NewCartService(cartRepo repository.CartRepository) CartService {
	return &cartService{cartRepo: cartRepo}
}

func (s *cartService) CreateCart(ctx context.Context) (*model.Cart, error) {
	cart := &model.Cart{Products: []model.LineItem{}}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		logger.Error("Failed to create cart", err)
		return nil, apperrors.ClassifyPersistence(err, "create cart")
	}

	logger.Info("Cart created", map[string]interface{}{
		"cart_id": cart.ID,
	})
	return cart, nil
}

func (s *cartService) GetCart(ctx context.Context, cartID string) (*model.Cart, error) {
	return s.load(ctx, cartID)
}

func (s *cartService) AddProduct(ctx context.Context, cartID, productID string, quantity int) (*model.Cart, Action, error) {
	logger.Info("Adding product to cart", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
	})

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, 0, err
	}

	items, action, err := MergeLineItem(cart.Products, productID, quantity)
	if err != nil {
		logger.Warn("Rejected add to cart", map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
			"error":      err.Error(),
		})
		return nil, 0, err
	}

	cart.Products = items
	if err := s.save(ctx, cart); err != nil {
		return nil, 0, err
	}

	logger.Info("Product added to cart", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
		"action":     action.String(),
	})
	return cart, action, nil
}

func (s *cartService) SetProductQuantity(ctx context.Context, cartID, productID string, quantity int) (*model.Cart, Action, error) {
	logger.Info("Setting cart product quantity", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
	})

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, 0, err
	}

	items, action, err := ReplaceLineItemQuantity(cart.Products, productID, quantity)
	if err != nil {
		logger.Warn("Rejected cart quantity update", map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
			"error":      err.Error(),
		})
		return nil, 0, err
	}

	if action == ActionNotFoundNoop {
		logger.Debug("Product not in cart, nothing to update", map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return cart, action, nil
	}

	cart.Products = items
	if err := s.save(ctx, cart); err != nil {
		return nil, 0, err
	}
	return cart, action, nil
}

func (s *cartService) AppendProducts(ctx context.Context, cartID string, items []model.LineItem) (*model.Cart, error) {
	logger.Info("Appending products to cart", map[string]interface{}{
		"cart_id": cartID,
		"count":   len(items),
	})

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	merged, err := AppendLineItems(cart.Products, items)
	if err != nil {
		logger.Warn("Rejected bulk cart update", map[string]interface{}{
			"cart_id": cartID,
			"error":   err.Error(),
		})
		return nil, err
	}

	cart.Products = merged
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) RemoveProduct(ctx context.Context, cartID, productID string) (*model.Cart, error) {
	logger.Info("Removing product from cart", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
	})

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	items, removed := RemoveLineItem(cart.Products, productID)
	if removed == 0 {
		logger.Warn("Product not found in cart for removal", map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return nil, apperrors.Newf(apperrors.KindProductNotInCart, "product %s not found in cart", productID)
	}

	cart.Products = items
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) ClearProducts(ctx context.Context, cartID string) (*model.Cart, error) {
	logger.Info("Clearing cart products", map[string]interface{}{
		"cart_id": cartID,
	})

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	cart.Products = []model.LineItem{}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) Stats(ctx context.Context) (model.CartStats, error) {
	stats, err := s.cartRepo.Count(ctx)
	if err != nil {
		return stats, apperrors.ClassifyPersistence(err, "count carts")
	}
	return stats, nil
}

func (s *cartService) load(ctx context.Context, cartID string) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		classified := apperrors.ClassifyPersistence(err, "find cart")
		if apperrors.KindOf(classified) == apperrors.KindCartNotFound {
			logger.Warn("Cart not found", map[string]interface{}{
				"cart_id": cartID,
			})
		}
		return nil, classified
	}
	return cart, nil
}

func (s *cartService) save(ctx context.Context, cart *model.Cart) error {
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		logger.Error("Failed to save cart", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return apperrors.ClassifyPersistence(err, "save cart")
	}
	return nil
}
