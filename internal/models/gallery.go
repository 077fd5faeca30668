package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gallery is a named collection of images belonging to one client session.
// Deleting a gallery cascades to its images (DB rows, S3 objects and local
// cache files; the service layer handles the latter two).
type Gallery struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	SessionDate time.Time `json:"session_date"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client Client  `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Images []Image `gorm:"foreignKey:GalleryID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

func (g *Gallery) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// AccessCode grants a client entry to one gallery. Codes are handed out by
// the studio (emailed or printed as a QR sheet) and exchanged for a
// gallery-scoped token.
type AccessCode struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code      string     `gorm:"uniqueIndex;not null" json:"code"`
	GalleryID uuid.UUID  `gorm:"type:uuid;not null;index" json:"gallery_id"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	ViewedAt  *time.Time `json:"viewed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Gallery Gallery `gorm:"foreignKey:GalleryID" json:"gallery,omitempty"`
}

func (a *AccessCode) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
