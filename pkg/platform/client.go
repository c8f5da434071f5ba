// Package platform holds the HTTP clients for the sibling services of
// the marketplace (product, customer, discount, payment, shipment,
// user, store, notification). Every service answers with the same
// envelope: code 0 on success, 1 on a business-rule failure, 2 on an
// unexpected failure.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Envelope is the uniform response wrapper shared by all services.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ServiceError is a non-zero envelope code returned by a sibling
// service: the call went through, the service said no.
type ServiceError struct {
	Service string
	Code    int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service: code %d: %s", e.Service, e.Code, e.Message)
}

// Client is the shared HTTP core every service client embeds.
type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

func newClient(name, baseURL string, timeout time.Duration) *Client {
	return &Client{
		name:    name,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// do sends one JSON request and decodes the envelope. A non-zero
// envelope code becomes a *ServiceError; when out is non-nil the data
// field is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s service: %w", c.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s service response: %w", c.name, err)
	}

	var envelope Envelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to parse %s service response: %w", c.name, err)
	}

	if envelope.Code != 0 {
		return &ServiceError{Service: c.name, Code: envelope.Code, Message: envelope.Message}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode %s service data: %w", c.name, err)
		}
	}
	return nil
}
