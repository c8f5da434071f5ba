package models

import (
	"time"
)

// OrderItem is a snapshot of one purchased product line taken at order
// time. It is never edited after creation and is removed together with
// its order.
type OrderItem struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	OrderID         uint      `json:"order_id" gorm:"not null;index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ProductID       uint      `json:"product_id" gorm:"not null"`
	ProductName     string    `json:"product_name" gorm:"not null"`
	ProductPrice    float64   `json:"product_price" gorm:"not null;default:0"`
	ProductQuantity int       `json:"product_quantity" gorm:"not null;default:1"`
	ProductURLImage string    `json:"product_url_image" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
