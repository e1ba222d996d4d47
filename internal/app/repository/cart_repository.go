package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/cart-backend/internal/app/model"
	"github.com/ikkim/cart-backend/pkg/logger"
	"gorm.io/gorm"
)

// CartRepository is the persistence port used by the cart service.
// Implementations report a missing cart with their driver's own not-found
// error (gorm.ErrRecordNotFound, mongo.ErrNoDocuments).
type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	FindByID(ctx context.Context, id string) (*model.Cart, error)
	// Save replaces the cart's products with cart.Products, in order.
	Save(ctx context.Context, cart *model.Cart) error
	Count(ctx context.Context) (model.CartStats, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(ctx context.Context, cart *model.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	if cart.Products == nil {
		cart.Products = []model.LineItem{}
	}

	logger.Debug("Creating cart in database", map[string]interface{}{
		"cart_id": cart.ID,
	})

	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return err
	}

	logger.Debug("Cart created in database", map[string]interface{}{
		"cart_id": cart.ID,
	})
	return nil
}

func (r *cartRepository) FindByID(ctx context.Context, id string) (*model.Cart, error) {
	logger.Debug("Finding cart by ID in database", map[string]interface{}{
		"cart_id": id,
	})

	if _, err := uuid.Parse(id); err != nil {
		logger.Debug("Malformed cart ID", map[string]interface{}{
			"cart_id": id,
		})
		return nil, gorm.ErrRecordNotFound
	}

	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&cart, "id = ?", id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find cart by ID in database", err, map[string]interface{}{
				"cart_id": id,
			})
		}
		return nil, err
	}
	if cart.Products == nil {
		cart.Products = []model.LineItem{}
	}

	logger.Debug("Cart found by ID in database", map[string]interface{}{
		"cart_id": cart.ID,
		"count":   len(cart.Products),
	})
	return &cart, nil
}

func (r *cartRepository) Save(ctx context.Context, cart *model.Cart) error {
	logger.Debug("Saving cart in database", map[string]interface{}{
		"cart_id": cart.ID,
		"count":   len(cart.Products),
	})

	if _, err := uuid.Parse(cart.ID); err != nil {
		return gorm.ErrRecordNotFound
	}

	items := make([]model.LineItem, len(cart.Products))
	for i, item := range cart.Products {
		items[i] = model.LineItem{
			CartID:    cart.ID,
			Position:  i,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Cart{}).Where("id = ?", cart.ID).Update("updated_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.LineItem{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to save cart in database", err, map[string]interface{}{
				"cart_id": cart.ID,
			})
		}
		return err
	}

	cart.Products = items
	cart.UpdatedAt = now

	logger.Debug("Cart saved in database", map[string]interface{}{
		"cart_id": cart.ID,
		"count":   len(items),
	})
	return nil
}

func (r *cartRepository) Count(ctx context.Context) (model.CartStats, error) {
	var stats model.CartStats
	tx := r.db.WithContext(ctx)

	if err := tx.Model(&model.Cart{}).Count(&stats.Carts).Error; err != nil {
		logger.Error("Failed to count carts in database", err)
		return stats, err
	}
	if err := tx.Model(&model.LineItem{}).Count(&stats.LineItems).Error; err != nil {
		logger.Error("Failed to count cart line items in database", err)
		return stats, err
	}
	row := tx.Model(&model.LineItem{}).Select("COALESCE(SUM(quantity), 0)").Row()
	if err := row.Scan(&stats.Units); err != nil {
		logger.Error("Failed to sum cart quantities in database", err)
		return stats, err
	}

	return stats, nil
}
