package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a studio account (photographer). Clients never get a User row;
// they enter through gallery access codes.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Username string    `gorm:"uniqueIndex;not null" json:"username"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Name     string    `gorm:"not null" json:"name"`
	IsAdmin  bool      `gorm:"default:false" json:"is_admin"`
	IsActive bool      `gorm:"default:true" json:"is_active"`

	// Subscription state, driven by Stripe webhook events
	StripeCustomerID     string `gorm:"type:varchar(255)" json:"-"`
	StripeSubscriptionID string `gorm:"type:varchar(255)" json:"-"`
	SubscriptionStatus   string `gorm:"type:varchar(32);default:'none'" json:"subscription_status"` // none, active, past_due, cancelled
	SubscriptionActive   bool   `gorm:"default:false" json:"subscription_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	Token     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}

func (r *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
