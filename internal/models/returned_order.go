package models

import (
	"time"
)

// ReturnedOrder is created when a return request is accepted and tracks
// the physical return and the refund payment until both complete.
type ReturnedOrder struct {
	ID                      uint       `json:"id" gorm:"primaryKey"`
	OrderReturnRequestID    uint       `json:"order_return_request_id" gorm:"not null;index"`
	OrderID                 uint       `json:"order_id" gorm:"not null;index"`
	SellerID                uint       `json:"seller_id" gorm:"not null;index"`
	SellerName              string     `json:"seller_name" gorm:"not null"`
	UserID                  uint       `json:"user_id" gorm:"not null;index"`
	TotalQuantity           int        `json:"total_quantity" gorm:"not null;default:0"`
	ReturnShippingFee       float64    `json:"return_shipping_fee" gorm:"not null;default:0"`
	ReturnShippingFeePaidBy string     `json:"return_shipping_fee_paid_by" gorm:"not null;default:'seller'"` // customer, seller, platform
	RefundAmount            float64    `json:"refund_amount" gorm:"not null;default:0"`
	OrderStatus             string     `json:"order_status" gorm:"not null;default:'processing'"`        // processing, ready_to_ship, shipping, returned, failed
	PaymentRefundStatus     string     `json:"payment_refund_status" gorm:"not null;default:'pending'"` // pending, completed, failed
	IsCompleted             bool       `json:"is_completed" gorm:"not null;default:false"`
	ReturnedAt              *time.Time `json:"returned_at"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

const (
	ReturnedOrderProcessing  = "processing"
	ReturnedOrderReadyToShip = "ready_to_ship"
	ReturnedOrderShipping    = "shipping"
	ReturnedOrderReturned    = "returned"
	ReturnedOrderFailed      = "failed"
)

const (
	RefundPending   = "pending"
	RefundCompleted = "completed"
	RefundFailed    = "failed"
)

// RefreshCompleted recomputes is_completed and stamps returned_at the
// first time the goods reach the returned state. Must be called before
// every save.
func (r *ReturnedOrder) RefreshCompleted() {
	if r.OrderStatus == ReturnedOrderReturned && r.ReturnedAt == nil {
		now := time.Now()
		r.ReturnedAt = &now
	}
	r.IsCompleted = r.PaymentRefundStatus == RefundCompleted && r.OrderStatus == ReturnedOrderReturned
}

func ValidReturnedOrderStatus(s string) bool {
	switch s {
	case ReturnedOrderProcessing, ReturnedOrderReadyToShip, ReturnedOrderShipping, ReturnedOrderReturned, ReturnedOrderFailed:
		return true
	}
	return false
}

func ValidRefundStatus(s string) bool {
	switch s {
	case RefundPending, RefundCompleted, RefundFailed:
		return true
	}
	return false
}
