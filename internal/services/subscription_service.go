package services

import (
	"errors"
	"log"

	"github.com/prooflab/backend/internal/models"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// SubscriptionService keeps studio accounts in sync with their Stripe
// subscription. Events arrive via the webhook handler.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

func (s *SubscriptionService) userByCustomerID(customerID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("stripe_customer_id = ?", customerID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ApplySubscriptionEvent handles customer.subscription.created, .updated
// and .deleted. Active and trialing subscriptions unlock the account.
func (s *SubscriptionService) ApplySubscriptionEvent(sub *stripe.Subscription, deleted bool) error {
	if sub.Customer == nil {
		return errors.New("subscription event without customer")
	}

	user, err := s.userByCustomerID(sub.Customer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("WARN: subscription event for unknown Stripe customer %s", sub.Customer.ID)
			return nil
		}
		return err
	}

	status := string(sub.Status)
	active := !deleted && (sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing)
	if deleted {
		status = "canceled"
	}

	updates := map[string]interface{}{
		"stripe_subscription_id": sub.ID,
		"subscription_status":    status,
		"subscription_active":    active,
	}
	if deleted {
		updates["stripe_subscription_id"] = ""
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return err
	}
	log.Printf("INFO: user %s subscription now %s (active=%t)", user.Username, status, active)
	return nil
}

// ApplyInvoicePaymentFailed marks the account past due. Stripe keeps
// retrying; a later subscription.updated event restores the state.
func (s *SubscriptionService) ApplyInvoicePaymentFailed(customerID string) error {
	user, err := s.userByCustomerID(customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("WARN: invoice.payment_failed for unknown Stripe customer %s", customerID)
			return nil
		}
		return err
	}

	return s.db.Model(user).Updates(map[string]interface{}{
		"subscription_status": "past_due",
		"subscription_active": false,
	}).Error
}
