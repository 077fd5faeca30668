package services

import (
	"github.com/prooflab/backend/internal/models"
)

// PaymentProvider abstracts the hosted-checkout payment backend.
type PaymentProvider interface {
	// CreateCheckout creates a hosted checkout session for an order and
	// returns the URL the client is redirected to.
	CreateCheckout(order *models.Order, client *models.Client) (checkoutURL string, err error)

	// ProcessRefund refunds part or all of a paid order.
	ProcessRefund(order *models.Order, amount float64) error

	// CheckAndCaptureOrder polls the payment status of a pending order and
	// marks it paid when the provider reports completion.
	CheckAndCaptureOrder(order *models.Order) bool

	// GetProviderName returns the provider identifier.
	GetProviderName() string
}
