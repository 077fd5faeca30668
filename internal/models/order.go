package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

type Order struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	GalleryID uuid.UUID `gorm:"type:uuid;not null;index" json:"gallery_id"`
	ClientID  uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Status    string    `gorm:"not null;default:'pending'" json:"status"` // pending, paid, cancelled, refunded

	TotalAmount float64 `gorm:"not null" json:"total_amount"`

	// Stripe payment details
	StripeSessionID       string `json:"-"`
	StripePaymentIntentID string `json:"-"`

	RefundedAmount float64    `json:"refunded_amount,omitempty"`
	RefundedAt     *time.Time `json:"refunded_at,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Gallery Gallery     `gorm:"foreignKey:GalleryID" json:"gallery,omitempty"`
	Client  Client      `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items   []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// CalculateTotal recomputes the order total from its line items.
func (o *Order) CalculateTotal() {
	total := 0.0
	for _, item := range o.Items {
		total += item.LineTotal
	}
	o.TotalAmount = total
}

// CanBeRefunded reports whether a refund makes sense for this order.
func (o *Order) CanBeRefunded() bool {
	return o.Status == OrderStatusPaid && o.StripePaymentIntentID != ""
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	ImageID   uuid.UUID `gorm:"type:uuid;not null" json:"image_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	LineTotal float64   `gorm:"not null" json:"line_total"`

	CreatedAt time.Time `json:"created_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Image   Image   `gorm:"foreignKey:ImageID" json:"image,omitempty"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
