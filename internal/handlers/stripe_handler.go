package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/services"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type StripeHandler struct {
	orderService        *services.OrderService
	subscriptionService *services.SubscriptionService
	emailService        *services.EmailService
	cfg                 *config.Config
}

func NewStripeHandler(
	orderService *services.OrderService,
	subscriptionService *services.SubscriptionService,
	emailService *services.EmailService,
	cfg *config.Config,
) *StripeHandler {
	return &StripeHandler{
		orderService:        orderService,
		subscriptionService: subscriptionService,
		emailService:        emailService,
		cfg:                 cfg,
	}
}

// HandleWebhook handles Stripe webhook events
func (h *StripeHandler) HandleWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("ERROR: Failed to read Stripe webhook request body: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	signatureHeader := c.GetHeader("Stripe-Signature")

	event, err := webhook.ConstructEvent(payload, signatureHeader, h.cfg.StripeWebhookSecret)
	if err != nil {
		log.Printf("ERROR: Webhook signature verification failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	log.Printf("INFO: Received Stripe event type: %s, ID: %s", event.Type, event.ID)

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(c, event)

	case "payment_intent.payment_failed":
		var paymentIntent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
			log.Printf("ERROR: Failed to parse webhook JSON for payment_intent.payment_failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing webhook JSON"})
			return
		}
		var reason string
		if paymentIntent.LastPaymentError != nil {
			reason = paymentIntent.LastPaymentError.Msg
		}
		log.Printf("WARN: Payment failed for PaymentIntent %s. Reason: %s", paymentIntent.ID, reason)
		c.JSON(http.StatusOK, gin.H{"status": "success"})

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			log.Printf("ERROR: Failed to parse webhook JSON for %s: %v", event.Type, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing webhook JSON"})
			return
		}
		deleted := event.Type == "customer.subscription.deleted"
		if err := h.subscriptionService.ApplySubscriptionEvent(&sub, deleted); err != nil {
			log.Printf("ERROR: Failed to apply subscription event: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply subscription event"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			log.Printf("ERROR: Failed to parse webhook JSON for invoice.payment_failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing webhook JSON"})
			return
		}
		if invoice.Customer != nil {
			if err := h.subscriptionService.ApplyInvoicePaymentFailed(invoice.Customer.ID); err != nil {
				log.Printf("ERROR: Failed to mark subscription past due: %v", err)
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})

	default:
		log.Printf("INFO: Unhandled Stripe event type: %s", event.Type)
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Unhandled event type"})
	}
}

func (h *StripeHandler) handleCheckoutCompleted(c *gin.Context, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Printf("ERROR: Failed to parse webhook JSON for checkout.session.completed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing webhook JSON"})
		return
	}

	orderIDStr, ok := session.Metadata["order_id"]
	if !ok {
		log.Printf("ERROR: order_id not found in metadata for session %s", session.ID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order ID not found in metadata"})
		return
	}

	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		log.Printf("ERROR: Invalid order_id format in metadata: %s", orderIDStr)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	paymentIntentID := ""
	if session.PaymentIntent != nil {
		paymentIntentID = session.PaymentIntent.ID
	}

	log.Printf("INFO: Processing payment confirmation for OrderID: %s, PaymentIntentID: %s", orderID, paymentIntentID)

	if err := h.orderService.ConfirmPayment(orderID, paymentIntentID); err != nil {
		log.Printf("ERROR: Failed to confirm payment for order %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm payment"})
		return
	}

	// Confirmation email is best effort
	go func() {
		order, err := h.orderService.GetOrderByID(orderID)
		if err != nil {
			log.Printf("WARN: could not load order %s for confirmation email: %v", orderID, err)
			return
		}
		if err := h.emailService.SendOrderConfirmation(&order.Client, order); err != nil {
			log.Printf("ERROR: failed to send order confirmation for %s: %v", orderID, err)
		}
	}()

	log.Printf("SUCCESS: Payment confirmed for OrderID: %s", orderID)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Payment confirmed"})
}
