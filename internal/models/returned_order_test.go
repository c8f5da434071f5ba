package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnedOrderRefreshCompleted(t *testing.T) {
	returned := ReturnedOrder{
		OrderStatus:         ReturnedOrderShipping,
		PaymentRefundStatus: RefundCompleted,
	}

	returned.RefreshCompleted()
	assert.False(t, returned.IsCompleted)
	assert.Nil(t, returned.ReturnedAt)

	returned.OrderStatus = ReturnedOrderReturned
	returned.RefreshCompleted()
	assert.True(t, returned.IsCompleted)
	require.NotNil(t, returned.ReturnedAt)

	// returned_at is stamped once and keeps its first value.
	first := *returned.ReturnedAt
	returned.RefreshCompleted()
	assert.Equal(t, first, *returned.ReturnedAt)
}

func TestReturnedOrderStatusValidation(t *testing.T) {
	assert.True(t, ValidReturnedOrderStatus(ReturnedOrderReadyToShip))
	assert.False(t, ValidReturnedOrderStatus("delivered"))
	assert.True(t, ValidRefundStatus(RefundFailed))
	assert.False(t, ValidRefundStatus("partial"))
}
