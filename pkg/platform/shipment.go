package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ShipmentClient talks to the shipment service.
type ShipmentClient struct {
	*Client
}

func NewShipmentClient(baseURL string, timeout time.Duration) *ShipmentClient {
	return &ShipmentClient{Client: newClient("shipment", baseURL, timeout)}
}

// ShippingOrder describes a shipment to create. ReturnedOrderID is set
// only for return shipments.
type ShippingOrder struct {
	OrderID         uint  `json:"order_id"`
	ReturnedOrderID *uint `json:"returned_order_id,omitempty"`
	UserID          uint  `json:"user_id"`
	SellerID        uint  `json:"seller_id"`
}

// CreateShippingOrder books a new shipment.
func (c *ShipmentClient) CreateShippingOrder(ctx context.Context, order ShippingOrder) error {
	return c.do(ctx, "POST", "/shipments/shipping-orders", order, nil)
}

// QuoteReturnShippingFee asks for the fee of shipping a return from the
// customer's address back to the seller.
func (c *ShipmentClient) QuoteReturnShippingFee(ctx context.Context, customerShippingAddressID, sellerID uint) (float64, error) {
	body := map[string]interface{}{
		"customer_shipping_address_id": customerShippingAddressID,
		"seller_id":                    sellerID,
	}
	var fee float64
	if err := c.do(ctx, "POST", "/shipments/return-shipping-fee", body, &fee); err != nil {
		return 0, err
	}
	return fee, nil
}

// GetByOrder looks up the shipment of an order.
func (c *ShipmentClient) GetByOrder(ctx context.Context, orderID uint) (json.RawMessage, error) {
	var shipment json.RawMessage
	err := c.do(ctx, "GET", fmt.Sprintf("/shipments/shipping-orders/order/%d", orderID), nil, &shipment)
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// GetByReturnedOrder looks up the return shipment of a returned order.
func (c *ShipmentClient) GetByReturnedOrder(ctx context.Context, returnedOrderID uint) (json.RawMessage, error) {
	var shipment json.RawMessage
	err := c.do(ctx, "GET", fmt.Sprintf("/shipments/shipping-orders/returned-order/%d", returnedOrderID), nil, &shipment)
	if err != nil {
		return nil, err
	}
	return shipment, nil
}
