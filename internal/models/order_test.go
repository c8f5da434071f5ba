package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFinalTotal(t *testing.T) {
	order := Order{
		OriginalItemsTotal:                      200000,
		OriginalShippingFee:                     30000,
		DiscountAmountItems:                     10000,
		DiscountAmountShipping:                  5000,
		DiscountAmountItemsPlatformAllocated:    8000,
		DiscountAmountShippingPlatformAllocated: 2000,
	}

	order.ComputeFinalTotal()

	assert.Equal(t, 25000.0, order.TotalDiscount())
	assert.Equal(t, 205000.0, order.FinalTotal)
}

func TestRefreshCompleted(t *testing.T) {
	tests := []struct {
		name          string
		paymentStatus string
		orderStatus   string
		completed     bool
	}{
		{"paid and delivered", PaymentCompleted, OrderDelivered, true},
		{"paid but still shipping", PaymentCompleted, OrderShipping, false},
		{"delivered but unpaid", PaymentPending, OrderDelivered, false},
		{"cancelled", PaymentCancelled, OrderCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := Order{PaymentStatus: tt.paymentStatus, OrderStatus: tt.orderStatus}
			order.RefreshCompleted()
			assert.Equal(t, tt.completed, order.IsCompleted)
		})
	}
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderReadyToShip))
	assert.False(t, ValidOrderStatus("returned"))
	assert.True(t, ValidPaymentStatus(PaymentRefunded))
	assert.False(t, ValidPaymentStatus(""))
}
