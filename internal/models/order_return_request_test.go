package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveShippingFeePayer(t *testing.T) {
	tests := []struct {
		reason string
		payer  string
	}{
		{"Product is defective or damaged", PaidBySeller},
		{"Wrong product delivered", PaidBySeller},
		{"Product expired", PaidBySeller},
		{"Product not as described", PaidBySeller},
		{"Product packaging dented, torn or unsealed", PaidBySeller},
		{"Customer ordered the wrong product", PaidByCustomer},
		{"Customer changed their mind", PaidByCustomer},
		// Unknown reasons default to the seller.
		{"Moon phase was wrong", PaidBySeller},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			request := OrderReturnRequest{Reason: tt.reason}
			request.DeriveShippingFeePayer()
			assert.Equal(t, tt.payer, request.ReturnShippingFeePaidBy)
		})
	}
}
