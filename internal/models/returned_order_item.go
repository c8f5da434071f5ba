package models

import (
	"time"
)

// ReturnedOrderItem is one product line of a return claim. It is linked
// only to its return request until the request is accepted, at which
// point it gains a returned_order_id.
type ReturnedOrderItem struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	OrderReturnRequestID uint      `json:"order_return_request_id" gorm:"not null;index"`
	ReturnedOrderID      *uint     `json:"returned_order_id" gorm:"index"`
	ProductID            uint      `json:"product_id" gorm:"not null"`
	ProductName          string    `json:"product_name" gorm:"not null"`
	ProductPrice         float64   `json:"product_price" gorm:"not null;default:0"`
	ProductQuantity      int       `json:"product_quantity" gorm:"not null;default:1"`
	ProductURLImage      string    `json:"product_url_image" gorm:"not null"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
