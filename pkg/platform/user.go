package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// UserClient talks to the user service.
type UserClient struct {
	*Client
}

func NewUserClient(baseURL string, timeout time.Duration) *UserClient {
	return &UserClient{Client: newClient("user", baseURL, timeout)}
}

// UserContact is the subset of a user profile needed for outbound mail.
type UserContact struct {
	Email    string `json:"email"`
	FullName string `json:"fullname"`
}

// GetContact fetches the buyer's email and display name.
func (c *UserClient) GetContact(ctx context.Context, userID uint) (*UserContact, error) {
	var contact UserContact
	if err := c.do(ctx, "GET", fmt.Sprintf("/users/%d", userID), nil, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// GetInfo fetches the public profile used to enrich order listings.
func (c *UserClient) GetInfo(ctx context.Context, userID uint) (json.RawMessage, error) {
	var info json.RawMessage
	if err := c.do(ctx, "GET", fmt.Sprintf("/users/info/%d", userID), nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}
