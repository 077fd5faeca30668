package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderCalculateTotal(t *testing.T) {
	order := &Order{
		Items: []OrderItem{
			{Quantity: 2, UnitPrice: 25.00, LineTotal: 50.00},
			{Quantity: 1, UnitPrice: 149.50, LineTotal: 149.50},
		},
	}

	order.CalculateTotal()
	assert.Equal(t, 199.50, order.TotalAmount)

	order.Items = nil
	order.CalculateTotal()
	assert.Equal(t, 0.0, order.TotalAmount)
}

func TestOrderCanBeRefunded(t *testing.T) {
	tests := []struct {
		name          string
		status        string
		paymentIntent string
		want          bool
	}{
		{"paid with payment intent", OrderStatusPaid, "pi_123", true},
		{"paid without payment intent", OrderStatusPaid, "", false},
		{"pending", OrderStatusPending, "pi_123", false},
		{"cancelled", OrderStatusCancelled, "pi_123", false},
		{"already refunded", OrderStatusRefunded, "pi_123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{Status: tt.status, StripePaymentIntentID: tt.paymentIntent}
			assert.Equal(t, tt.want, order.CanBeRefunded())
		})
	}
}
