package platform

import (
	"context"
	"fmt"
	"time"
)

// ProductClient talks to the product service: stock checks and the
// purchased-product ledger.
type ProductClient struct {
	*Client
}

func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{Client: newClient("product", baseURL, timeout)}
}

type StockCheckItem struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type PurchasedProduct struct {
	ProductID  uint    `json:"product_id"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

type PurchaseRecord struct {
	UserID      uint               `json:"user_id"`
	OrderID     uint               `json:"order_id"`
	SellerID    uint               `json:"seller_id"`
	ListProduct []PurchasedProduct `json:"list_product"`
}

// CheckStock verifies availability for all requested lines in one
// batched call.
func (c *ProductClient) CheckStock(ctx context.Context, products []StockCheckItem) error {
	body := map[string]interface{}{"products": products}
	return c.do(ctx, "POST", "/products/check-stock", body, nil)
}

// RecordPurchase stores the purchased-product snapshot and decrements
// stock.
func (c *ProductClient) RecordPurchase(ctx context.Context, record PurchaseRecord) error {
	return c.do(ctx, "POST", "/purchased-products/add", record, nil)
}

// MarkPurchaseCompleted flags the order's purchased products completed.
func (c *ProductClient) MarkPurchaseCompleted(ctx context.Context, orderID uint) error {
	body := map[string]interface{}{
		"order_id": orderID,
		"status":   "completed",
	}
	return c.do(ctx, "PUT", "/purchased-products/update-status", body, nil)
}

// ReleasePurchase removes the purchase record and restores stock after
// a cancellation.
func (c *ProductClient) ReleasePurchase(ctx context.Context, orderID uint) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/purchased-products/cancel/%d", orderID), nil, nil)
}

// UpdateReturnedQuantities reports the returned quantities of a
// completed return.
func (c *ProductClient) UpdateReturnedQuantities(ctx context.Context, orderID uint, products []PurchasedProduct) error {
	body := map[string]interface{}{"list_product": products}
	return c.do(ctx, "PUT", fmt.Sprintf("/purchased-products/returned/%d", orderID), body, nil)
}
