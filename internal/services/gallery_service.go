package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/models"
	"gorm.io/gorm"
)

type GalleryService struct {
	db        *gorm.DB
	cfg       *config.Config
	s3Service *S3Service
	storage   *StorageService
}

func NewGalleryService(db *gorm.DB, cfg *config.Config, s3Service *S3Service, storage *StorageService) *GalleryService {
	return &GalleryService{db: db, cfg: cfg, s3Service: s3Service, storage: storage}
}

// CreateGallery creates a gallery for a client session.
func (s *GalleryService) CreateGallery(name string, clientID uuid.UUID, sessionDate time.Time) (*models.Gallery, error) {
	var client models.Client
	if err := s.db.First(&client, "id = ?", clientID).Error; err != nil {
		return nil, fmt.Errorf("client not found: %w", err)
	}

	gallery := &models.Gallery{
		Name:        name,
		ClientID:    clientID,
		SessionDate: sessionDate,
		IsActive:    true,
	}
	if err := s.db.Create(gallery).Error; err != nil {
		return nil, fmt.Errorf("failed to create gallery: %w", err)
	}
	return gallery, nil
}

// GetGalleryByID returns a gallery with its client loaded.
func (s *GalleryService) GetGalleryByID(galleryID uuid.UUID) (*models.Gallery, error) {
	var gallery models.Gallery
	if err := s.db.Preload("Client").First(&gallery, "id = ?", galleryID).Error; err != nil {
		return nil, err
	}
	return &gallery, nil
}

// GetAllGalleries returns galleries for the dashboard, newest first.
func (s *GalleryService) GetAllGalleries(offset, limit int) ([]*models.Gallery, int64, error) {
	var galleries []*models.Gallery
	var total int64

	if err := s.db.Model(&models.Gallery{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := s.db.Preload("Client").Order("created_at DESC").Offset(offset).Limit(limit).Find(&galleries).Error; err != nil {
		return nil, 0, err
	}
	return galleries, total, nil
}

// GetClientGalleries returns a client's galleries.
func (s *GalleryService) GetClientGalleries(clientID uuid.UUID) ([]*models.Gallery, error) {
	var galleries []*models.Gallery
	if err := s.db.Where("client_id = ?", clientID).Order("session_date DESC").Find(&galleries).Error; err != nil {
		return nil, err
	}
	return galleries, nil
}

// UpdateGallery updates name/session date/active flag.
func (s *GalleryService) UpdateGallery(galleryID uuid.UUID, updates map[string]interface{}) error {
	allowed := map[string]bool{"name": true, "session_date": true, "is_active": true}
	filtered := map[string]interface{}{}
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	res := s.db.Model(&models.Gallery{}).Where("id = ?", galleryID).Updates(filtered)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteGallery destroys the gallery and everything in it: S3 objects
// first (to avoid orphans), then DB rows, then local cache files.
func (s *GalleryService) DeleteGallery(ctx context.Context, galleryID uuid.UUID) error {
	var gallery models.Gallery
	if err := s.db.Preload("Images").First(&gallery, "id = ?", galleryID).Error; err != nil {
		return fmt.Errorf("gallery not found: %w", err)
	}

	for _, img := range gallery.Images {
		for _, key := range []string{img.OriginalKey, img.DisplayKey, img.ThumbKey} {
			if key == "" {
				continue
			}
			if err := s.s3Service.DeleteMedia(ctx, s.cfg.MediaImagesBucket, key); err != nil {
				log.Printf("WARN: failed to delete S3 object %s: %v", key, err)
			}
			if s.storage != nil {
				_ = s.storage.Remove(key)
			}
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gallery_id = ?", galleryID).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Where("gallery_id = ?", galleryID).Delete(&models.AccessCode{}).Error; err != nil {
			return err
		}
		return tx.Delete(&gallery).Error
	})
}
