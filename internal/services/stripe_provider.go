package services

import (
	"fmt"

	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/models"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/refund"
	"gorm.io/gorm"
)

// StripeProvider implements PaymentProvider for Stripe hosted checkout.
type StripeProvider struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewStripeProvider(cfg *config.Config, db *gorm.DB) *StripeProvider {
	stripe.Key = cfg.StripeSecretKey
	return &StripeProvider{
		cfg: cfg,
		db:  db,
	}
}

func (p *StripeProvider) GetProviderName() string {
	return "stripe"
}

// CreateCheckout creates a Stripe checkout session with one line item per
// order item. The order's items must be loaded with their products and
// images.
func (p *StripeProvider) CreateCheckout(order *models.Order, client *models.Client) (string, error) {
	if len(order.Items) == 0 {
		return "", fmt.Errorf("order has no items")
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.Product.Name
		if name == "" {
			name = "Photo product"
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(p.cfg.StripeCurrency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(name),
					Description: stripe.String(fmt.Sprintf("Image: %s", item.Image.Name)),
				},
				UnitAmount: stripe.Int64(int64(item.UnitPrice * 100)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	successURL := fmt.Sprintf("%s?order_id=%s&session_id={CHECKOUT_SESSION_ID}", p.cfg.StripeSuccessURL, order.ID.String())
	cancelURL := fmt.Sprintf("%s?order_id=%s", p.cfg.StripeCancelURL, order.ID.String())

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice(p.cfg.StripePaymentMethods),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
		ClientReferenceID:  stripe.String(order.ID.String()),
		Metadata: map[string]string{
			"order_id":   order.ID.String(),
			"gallery_id": order.GalleryID.String(),
			"client_id":  order.ClientID.String(),
		},
	}
	if client != nil && client.Email != "" {
		params.CustomerEmail = stripe.String(client.Email)
	}

	if p.cfg.StripeAutomaticPaymentMethods {
		params.PaymentMethodTypes = nil
		params.PaymentMethodOptions = &stripe.CheckoutSessionPaymentMethodOptionsParams{
			Card: &stripe.CheckoutSessionPaymentMethodOptionsCardParams{},
		}
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create Stripe session: %w", err)
	}

	order.StripeSessionID = sess.ID
	if err := p.db.Model(order).Update("stripe_session_id", sess.ID).Error; err != nil {
		return "", fmt.Errorf("failed to save order: %w", err)
	}

	return sess.URL, nil
}

// ProcessRefund refunds against the order's payment intent.
func (p *StripeProvider) ProcessRefund(order *models.Order, amount float64) error {
	if order.StripePaymentIntentID == "" {
		return fmt.Errorf("no Stripe payment intent ID found")
	}

	_, err := refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(order.StripePaymentIntentID),
		Amount:        stripe.Int64(int64(amount * 100)),
	})
	if err != nil {
		return fmt.Errorf("failed to process Stripe refund: %w", err)
	}
	return nil
}

// CheckAndCaptureOrder polls the checkout session. Stripe auto-captures, so
// a "paid" session status is enough to mark the order paid. Used by the
// polling worker as a fallback when webhooks are delayed or lost.
func (p *StripeProvider) CheckAndCaptureOrder(order *models.Order) bool {
	if order.StripeSessionID == "" {
		return false
	}

	sess, err := session.Get(order.StripeSessionID, nil)
	if err != nil {
		return false
	}

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return false
	}

	paymentIntentID := ""
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}

	updates := map[string]interface{}{
		"status":                   models.OrderStatusPaid,
		"paid_at":                  gorm.Expr("NOW()"),
		"cancelled_at":             nil,
		"stripe_payment_intent_id": paymentIntentID,
	}
	if err := p.db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		return false
	}
	return true
}
