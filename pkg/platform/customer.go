package platform

import (
	"context"
	"time"
)

// CustomerClient talks to the customer service.
type CustomerClient struct {
	*Client
}

func NewCustomerClient(baseURL string, timeout time.Duration) *CustomerClient {
	return &CustomerClient{Client: newClient("customer", baseURL, timeout)}
}

// RemoveCartItems clears the purchased products from the buyer's cart.
func (c *CustomerClient) RemoveCartItems(ctx context.Context, userID uint, productIDs []uint) error {
	body := map[string]interface{}{
		"user_id":     userID,
		"product_ids": productIDs,
	}
	return c.do(ctx, "POST", "/carts/remove", body, nil)
}
