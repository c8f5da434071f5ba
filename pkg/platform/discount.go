package platform

import (
	"context"
	"fmt"
	"time"
)

// DiscountClient talks to the discount service.
type DiscountClient struct {
	*Client
}

func NewDiscountClient(baseURL string, timeout time.Duration) *DiscountClient {
	return &DiscountClient{Client: newClient("discount", baseURL, timeout)}
}

// RestoreVoucher gives back the voucher applied to a cancelled order.
func (c *DiscountClient) RestoreVoucher(ctx context.Context, orderID uint) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/voucher-usages/restore/%d", orderID), nil, nil)
}
