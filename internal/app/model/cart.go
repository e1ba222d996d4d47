package model

import (
	"time"
)

// Cart is a container of line items keyed by an opaque identifier.
// Products keeps insertion order.
type Cart struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Products  []LineItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"products"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (Cart) TableName() string {
	return "carts"
}

// LineItem pairs a product reference with a quantity.
type LineItem struct {
	ID        uint   `gorm:"primarykey" json:"-"`
	CartID    string `gorm:"not null;index;type:varchar(36)" json:"-"`
	Position  int    `gorm:"not null;default:0" json:"-"`
	ProductID string `gorm:"column:product_id;not null;index" json:"product"`
	Quantity  int    `gorm:"not null;default:1" json:"quantity"`
}

func (LineItem) TableName() string {
	return "cart_line_items"
}

// CartStats 저장소 전체 장바구니 통계
type CartStats struct {
	Carts     int64 `json:"carts"`
	LineItems int64 `json:"lineItems"`
	Units     int64 `json:"units"`
}
