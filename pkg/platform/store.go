package platform

import (
	"context"
	"fmt"
	"time"
)

// StoreClient talks to the store service.
type StoreClient struct {
	*Client
}

func NewStoreClient(baseURL string, timeout time.Duration) *StoreClient {
	return &StoreClient{Client: newClient("store", baseURL, timeout)}
}

// CreditBalance adds the seller's share of a completed order to the
// store balance.
func (c *StoreClient) CreditBalance(ctx context.Context, sellerID uint, amount float64) error {
	body := map[string]interface{}{
		"balance": amount,
		"type":    "add",
	}
	return c.do(ctx, "PUT", fmt.Sprintf("/stores/%d/balance", sellerID), body, nil)
}
