package models

import (
	"time"
)

type Order struct {
	ID                                      uint      `json:"id" gorm:"primaryKey"`
	UserID                                  uint      `json:"user_id" gorm:"not null;index"`
	SellerID                                uint      `json:"seller_id" gorm:"not null;index"`
	SellerName                              string    `json:"seller_name" gorm:"not null"`
	TotalQuantity                           int       `json:"total_quantity" gorm:"not null;default:0"`
	OriginalItemsTotal                      float64   `json:"original_items_total" gorm:"not null;default:0"`
	OriginalShippingFee                     float64   `json:"original_shipping_fee" gorm:"not null;default:0"`
	DiscountAmountItems                     float64   `json:"discount_amount_items" gorm:"not null;default:0"`
	DiscountAmountShipping                  float64   `json:"discount_amount_shipping" gorm:"not null;default:0"`
	DiscountAmountItemsPlatformAllocated    float64   `json:"discount_amount_items_platform_allocated" gorm:"not null;default:0"`
	DiscountAmountShippingPlatformAllocated float64   `json:"discount_amount_shipping_platform_allocated" gorm:"not null;default:0"`
	FinalTotal                              float64   `json:"final_total" gorm:"not null;default:0"`
	PaymentMethod                           string    `json:"payment_method" gorm:"not null;default:'COD'"`
	PaymentStatus                           string    `json:"payment_status" gorm:"not null;default:'pending'"` // pending, completed, failed, cancelled, refunded
	OrderStatus                             string    `json:"order_status" gorm:"not null;default:'pending'"`   // pending, confirmed, ready_to_ship, shipping, delivered, cancelled, refunded
	IsCompleted                             bool      `json:"is_completed" gorm:"not null;default:false"`
	CreatedAt                               time.Time `json:"created_at"`
	UpdatedAt                               time.Time `json:"updated_at"`
}

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentCancelled = "cancelled"
	PaymentRefunded  = "refunded"
)

const (
	OrderPending     = "pending"
	OrderConfirmed   = "confirmed"
	OrderReadyToShip = "ready_to_ship"
	OrderShipping    = "shipping"
	OrderDelivered   = "delivered"
	OrderCancelled   = "cancelled"
	OrderRefunded    = "refunded"
)

// TotalDiscount sums all four discount components (seller and platform
// funded, items and shipping).
func (o *Order) TotalDiscount() float64 {
	return o.DiscountAmountItems +
		o.DiscountAmountShipping +
		o.DiscountAmountItemsPlatformAllocated +
		o.DiscountAmountShippingPlatformAllocated
}

// ComputeFinalTotal derives final_total from the original totals minus
// every discount component.
func (o *Order) ComputeFinalTotal() {
	o.FinalTotal = (o.OriginalItemsTotal + o.OriginalShippingFee) - o.TotalDiscount()
}

// RefreshCompleted recomputes is_completed. Must be called before every
// save; once an order is completed it becomes immutable to status edits.
func (o *Order) RefreshCompleted() {
	o.IsCompleted = o.PaymentStatus == PaymentCompleted && o.OrderStatus == OrderDelivered
}

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentCancelled, PaymentRefunded:
		return true
	}
	return false
}

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderReadyToShip, OrderShipping, OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}
