package platform

import (
	"context"
	"fmt"
	"time"
)

// PaymentClient talks to the payment service.
type PaymentClient struct {
	*Client
}

func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{Client: newClient("payment", baseURL, timeout)}
}

// UpdateStatusByOrder patches the payment attached to an order.
func (c *PaymentClient) UpdateStatusByOrder(ctx context.Context, orderID uint, status string) error {
	body := map[string]interface{}{"status": status}
	return c.do(ctx, "PATCH", fmt.Sprintf("/payments/order/%d/status", orderID), body, nil)
}
