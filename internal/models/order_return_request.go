package models

import (
	"time"

	"github.com/lib/pq"
)

// OrderReturnRequest is a customer's claim to return some items of a
// completed order. At most one request per order may be requested or
// accepted at the same time.
type OrderReturnRequest struct {
	ID                        uint           `json:"id" gorm:"primaryKey"`
	OrderID                   uint           `json:"order_id" gorm:"not null;index"`
	SellerID                  uint           `json:"seller_id" gorm:"not null;index"`
	UserID                    uint           `json:"user_id" gorm:"not null;index"`
	Reason                    string         `json:"reason" gorm:"not null"`
	ReturnShippingFeePaidBy   string         `json:"return_shipping_fee_paid_by" gorm:"not null;default:'seller'"` // customer, seller, platform
	CustomerMessage           string         `json:"customer_message" gorm:"type:text"`
	URLImagesRelated          pq.StringArray `json:"url_images_related" gorm:"type:text[]"`
	RequestAt                 time.Time      `json:"request_at" gorm:"not null"`
	ResponseMessage           string         `json:"response_message" gorm:"type:text"`
	ResponseAt                *time.Time     `json:"response_at"`
	Status                    string         `json:"status" gorm:"not null;default:'requested'"` // requested, accepted, rejected
	CustomerShippingAddressID uint           `json:"customer_shipping_address_id" gorm:"not null"`
	CreatedAt                 time.Time      `json:"created_at"`
	UpdatedAt                 time.Time      `json:"updated_at"`
}

const (
	ReturnRequested = "requested"
	ReturnAccepted  = "accepted"
	ReturnRejected  = "rejected"
)

const (
	PaidByCustomer = "customer"
	PaidBySeller   = "seller"
	PaidByPlatform = "platform"
)

// Reasons the seller is at fault for; the seller carries the return
// shipping fee.
var sellerFaultReasons = []string{
	"Product is defective or damaged",
	"Wrong product delivered",
	"Product expired",
	"Product not as described",
	"Product packaging dented, torn or unsealed",
}

// Reasons driven by buyer preference; the customer carries the fee.
var customerFaultReasons = []string{
	"Customer ordered the wrong product",
	"Customer changed their mind",
}

// DeriveShippingFeePayer resolves who pays the return shipping fee from
// the stated reason. Unknown reasons default to the seller. Must be
// called before every save.
func (r *OrderReturnRequest) DeriveShippingFeePayer() {
	r.ReturnShippingFeePaidBy = payerForReason(r.Reason)
}

func payerForReason(reason string) string {
	for _, s := range sellerFaultReasons {
		if s == reason {
			return PaidBySeller
		}
	}
	for _, s := range customerFaultReasons {
		if s == reason {
			return PaidByCustomer
		}
	}
	return PaidBySeller
}

func ValidReturnRequestStatus(s string) bool {
	switch s {
	case ReturnRequested, ReturnAccepted, ReturnRejected:
		return true
	}
	return false
}
