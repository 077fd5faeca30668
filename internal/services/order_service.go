package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/models"
	"gorm.io/gorm"
)

type OrderService struct {
	db       *gorm.DB
	cfg      *config.Config
	provider PaymentProvider
}

func NewOrderService(db *gorm.DB, cfg *config.Config, provider PaymentProvider) *OrderService {
	return &OrderService{db: db, cfg: cfg, provider: provider}
}

// OrderItemInput is one requested line item.
type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	ImageID   uuid.UUID `json:"image_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// CreateOrder validates the requested items against the gallery and the
// product catalog, persists the order, and opens a hosted checkout session.
// Unit prices are snapshotted from the catalog at order time.
func (s *OrderService) CreateOrder(galleryID, clientID uuid.UUID, items []OrderItemInput) (*models.Order, string, error) {
	if len(items) == 0 {
		return nil, "", errors.New("order must contain at least one item")
	}

	var gallery models.Gallery
	if err := s.db.Preload("Client").First(&gallery, "id = ?", galleryID).Error; err != nil {
		return nil, "", errors.New("gallery not found")
	}
	if gallery.ClientID != clientID {
		return nil, "", errors.New("gallery does not belong to this client")
	}

	order := &models.Order{
		GalleryID: galleryID,
		ClientID:  clientID,
		Status:    models.OrderStatusPending,
	}

	for _, input := range items {
		quantity := input.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		var product models.Product
		if err := s.db.Where("id = ? AND is_active = ?", input.ProductID, true).First(&product).Error; err != nil {
			return nil, "", fmt.Errorf("product %s not available", input.ProductID)
		}

		var image models.Image
		if err := s.db.Where("id = ? AND gallery_id = ?", input.ImageID, galleryID).First(&image).Error; err != nil {
			return nil, "", fmt.Errorf("image %s not found in gallery", input.ImageID)
		}

		order.Items = append(order.Items, models.OrderItem{
			ProductID: product.ID,
			ImageID:   image.ID,
			Quantity:  quantity,
			UnitPrice: product.Price,
			LineTotal: product.Price * float64(quantity),
			Product:   product,
			Image:     image,
		})
	}
	order.CalculateTotal()

	if err := s.db.Create(order).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create order: %w", err)
	}

	checkoutURL, err := s.provider.CreateCheckout(order, &gallery.Client)
	if err != nil {
		// Roll the order back rather than leaving a pending order with no
		// way to pay it
		s.db.Delete(order)
		return nil, "", err
	}

	return order, checkoutURL, nil
}

// ConfirmPayment marks a pending order paid. Called from the webhook
// handler after checkout.session.completed.
func (s *OrderService) ConfirmPayment(orderID uuid.UUID, paymentIntentID string) error {
	now := time.Now()
	result := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":                   models.OrderStatusPaid,
			"paid_at":                  &now,
			"stripe_payment_intent_id": paymentIntentID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("order not found or already paid")
	}
	return nil
}

// CancelOrder cancels a pending order (client abandoned checkout).
func (s *OrderService) CancelOrder(orderID, clientID uuid.UUID) error {
	var order models.Order
	if err := s.db.Where("id = ? AND client_id = ?", orderID, clientID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("order not found")
		}
		return err
	}

	if order.Status != models.OrderStatusPending {
		return fmt.Errorf("order cannot be cancelled with current status: %s", order.Status)
	}

	now := time.Now()
	return s.db.Model(&order).Updates(map[string]interface{}{
		"status":       models.OrderStatusCancelled,
		"cancelled_at": &now,
	}).Error
}

// RefundOrder processes a full or partial refund for a paid order (studio
// action).
func (s *OrderService) RefundOrder(orderID uuid.UUID, amount float64) error {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		return errors.New("order not found")
	}

	if !order.CanBeRefunded() {
		return errors.New("only paid orders can be refunded")
	}
	if amount <= 0 || amount > order.TotalAmount {
		amount = order.TotalAmount
	}

	if err := s.provider.ProcessRefund(&order, amount); err != nil {
		return err
	}

	now := time.Now()
	return s.db.Model(&order).Updates(map[string]interface{}{
		"status":          models.OrderStatusRefunded,
		"refunded_amount": amount,
		"refunded_at":     &now,
	}).Error
}

func (s *OrderService) GetOrderByID(orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.
		Preload("Items").Preload("Items.Product").Preload("Items.Image").
		Preload("Gallery").Preload("Client").
		First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, err
	}
	return &order, nil
}

// GetClientOrders returns a client's orders for one gallery.
func (s *OrderService) GetClientOrders(galleryID, clientID uuid.UUID) ([]*models.Order, error) {
	var orders []*models.Order
	err := s.db.
		Preload("Items").Preload("Items.Product").Preload("Items.Image").
		Where("gallery_id = ? AND client_id = ?", galleryID, clientID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// GetAllOrders returns every order, newest first (studio view).
func (s *OrderService) GetAllOrders(offset, limit int) ([]*models.Order, int64, error) {
	var orders []*models.Order
	var total int64

	if err := s.db.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := s.db.
		Preload("Items").Preload("Gallery").Preload("Client").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

// CheckPendingPayments polls the provider for pending orders whose webhook
// may have been missed. Returns the number of orders captured.
func (s *OrderService) CheckPendingPayments() (int, error) {
	var orders []*models.Order
	if err := s.db.
		Where("status = ? AND stripe_session_id <> ''", models.OrderStatusPending).
		Find(&orders).Error; err != nil {
		return 0, err
	}

	captured := 0
	for _, order := range orders {
		if s.provider.CheckAndCaptureOrder(order) {
			log.Printf("INFO: order %s captured via %s polling", order.ID, s.provider.GetProviderName())
			captured++
		}
	}
	return captured, nil
}

// CleanupStalePendingOrders cancels pending orders older than the
// configured max age whose checkout was never completed.
func (s *OrderService) CleanupStalePendingOrders() (int64, error) {
	cutoff := time.Now().Add(-s.cfg.PendingOrderMaxAge)
	now := time.Now()
	res := s.db.Model(&models.Order{}).
		Where("status = ? AND created_at < ?", models.OrderStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":       models.OrderStatusCancelled,
			"cancelled_at": &now,
		})
	return res.RowsAffected, res.Error
}
