package services

import (
	"math"

	"order_service/internal/models"
)

// Refund allocation. Discounts were granted against the whole order, so
// a partial return gets its share of the discount in proportion to the
// item's price against the order's original items total. Amounts are
// rounded to 2 decimal places per item; the order refund is the sum of
// the rounded item refunds.

// AllocateItemRefund computes the refund for one returned item line.
// A zero totalItemsPrice yields a zero discount share, not a division
// by zero.
func AllocateItemRefund(totalItemsPrice, totalDiscountItems float64, item *models.ReturnedOrderItem) float64 {
	var discountShare float64
	if totalItemsPrice != 0 {
		discountShare = (item.ProductPrice / totalItemsPrice) * totalDiscountItems
	}
	refund := (item.ProductPrice - discountShare) * float64(item.ProductQuantity)
	return roundMoney(refund)
}

// AllocateOrderRefund sums the item refunds of one return request.
func AllocateOrderRefund(totalItemsPrice, totalDiscountItems float64, items []*models.ReturnedOrderItem) float64 {
	var total float64
	for _, item := range items {
		total += AllocateItemRefund(totalItemsPrice, totalDiscountItems, item)
	}
	return roundMoney(total)
}

func roundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}
