package platform

import (
	"context"
	"time"
)

// NotificationClient talks to the notification service.
type NotificationClient struct {
	*Client
}

func NewNotificationClient(baseURL string, timeout time.Duration) *NotificationClient {
	return &NotificationClient{Client: newClient("notification", baseURL, timeout)}
}

// Target types for a push notification.
const (
	TargetCustomer = "customer"
	TargetSeller   = "seller"
	TargetShipper  = "shipper"
	TargetPlatform = "platform"
)

// Notification is one push. TargetID addresses a customer, StoreID a
// seller; shipper and platform pushes are broadcast.
type Notification struct {
	TargetType string `json:"target_type"`
	TargetID   uint   `json:"target_id,omitempty"`
	StoreID    uint   `json:"store_id,omitempty"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

// Push delivers one notification.
func (c *NotificationClient) Push(ctx context.Context, notification Notification) error {
	return c.do(ctx, "POST", "/notifications", notification, nil)
}
