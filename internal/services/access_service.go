package services

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/models"
	"gorm.io/gorm"
)

// AccessService manages the gallery access codes clients redeem for a
// gallery-scoped session.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

func generateSecureCode(numBytes int) (string, error) {
	b := make([]byte, numBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	code := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b)
	return strings.ToUpper(code), nil
}

// CreateAccessCode issues a new code for a gallery. expiresAt may be nil
// for codes that never expire.
func (s *AccessService) CreateAccessCode(galleryID uuid.UUID, expiresAt *time.Time) (*models.AccessCode, error) {
	var gallery models.Gallery
	if err := s.db.First(&gallery, "id = ?", galleryID).Error; err != nil {
		return nil, fmt.Errorf("gallery not found: %w", err)
	}

	// Retry on the (unlikely) unique-code collision
	for attempt := 0; attempt < 3; attempt++ {
		code, err := generateSecureCode(10)
		if err != nil {
			return nil, err
		}
		accessCode := &models.AccessCode{
			Code:      code,
			GalleryID: galleryID,
			IsActive:  true,
			ExpiresAt: expiresAt,
		}
		if err := s.db.Create(accessCode).Error; err == nil {
			return accessCode, nil
		}
	}
	return nil, errors.New("failed to generate unique access code")
}

// GetByCode looks up a code with its gallery loaded.
func (s *AccessService) GetByCode(code string) (*models.AccessCode, error) {
	var accessCode models.AccessCode
	if err := s.db.Preload("Gallery").Preload("Gallery.Client").
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&accessCode).Error; err != nil {
		return nil, err
	}
	return &accessCode, nil
}

// ValidateForRedemption checks a code is usable right now.
func (s *AccessService) ValidateForRedemption(code string) (*models.AccessCode, error) {
	accessCode, err := s.GetByCode(code)
	if err != nil {
		return nil, errors.New("invalid access code")
	}
	if !accessCode.IsActive {
		return nil, errors.New("access code is no longer active")
	}
	if accessCode.ExpiresAt != nil && time.Now().After(*accessCode.ExpiresAt) {
		return nil, errors.New("access code has expired")
	}
	if !accessCode.Gallery.IsActive {
		return nil, errors.New("gallery is not available")
	}
	return accessCode, nil
}

// MarkViewed records the first time a client opened the gallery.
func (s *AccessService) MarkViewed(accessCodeID uuid.UUID) error {
	now := time.Now()
	return s.db.Model(&models.AccessCode{}).
		Where("id = ? AND viewed_at IS NULL", accessCodeID).
		Update("viewed_at", &now).Error
}

// GetGalleryCodes returns all codes issued for a gallery.
func (s *AccessService) GetGalleryCodes(galleryID uuid.UUID) ([]*models.AccessCode, error) {
	var codes []*models.AccessCode
	if err := s.db.Where("gallery_id = ?", galleryID).Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// DeactivateCode revokes a code.
func (s *AccessService) DeactivateCode(accessCodeID uuid.UUID) error {
	res := s.db.Model(&models.AccessCode{}).Where("id = ?", accessCodeID).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
