package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/models"
	"github.com/prooflab/backend/internal/proofing"
	"gorm.io/gorm"
)

// Position values step by 10 so images can later be reordered between
// neighbours without renumbering the whole gallery.
const positionStep = 10

type ImageService struct {
	db         *gorm.DB
	cfg        *config.Config
	s3Service  *S3Service
	storage    *StorageService
	thumbnails *ThumbnailService
}

func NewImageService(db *gorm.DB, cfg *config.Config, s3Service *S3Service, storage *StorageService, thumbnails *ThumbnailService) *ImageService {
	return &ImageService{
		db:         db,
		cfg:        cfg,
		s3Service:  s3Service,
		storage:    storage,
		thumbnails: thumbnails,
	}
}

// UploadImage validates and stores one original plus its derived variants,
// then creates the DB record with the next position in the gallery.
func (s *ImageService) UploadImage(ctx context.Context, galleryID uuid.UUID, filename string, data []byte) (*models.Image, error) {
	var gallery models.Gallery
	if err := s.db.First(&gallery, "id = ?", galleryID).Error; err != nil {
		return nil, fmt.Errorf("gallery not found: %w", err)
	}

	// Validate MIME type using content detection
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("invalid content type: expected image, got %s", mimeType)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	allowedExts := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	if !allowedExts[ext] {
		return nil, fmt.Errorf("unsupported image extension: %s", ext)
	}

	if int64(len(data)) > s.cfg.UploadMaxImageSize {
		return nil, fmt.Errorf("image too large: %d bytes (max: %d)", len(data), s.cfg.UploadMaxImageSize)
	}

	thumb, display, err := s.thumbnails.Variants(data)
	if err != nil {
		return nil, err
	}

	base := uuid.New().String()
	originalKey := fmt.Sprintf("galleries/%s/originals/%s%s", galleryID, base, ext)
	displayKey := fmt.Sprintf("galleries/%s/display/%s.jpg", galleryID, base)
	thumbKey := fmt.Sprintf("galleries/%s/thumbs/%s.jpg", galleryID, base)

	uploads := []struct {
		key   string
		data  []byte
		ctype string
	}{
		{originalKey, data, mimeType},
		{displayKey, display, "image/jpeg"},
		{thumbKey, thumb, "image/jpeg"},
	}
	for i, u := range uploads {
		if err := s.s3Service.UploadMedia(ctx, s.cfg.MediaImagesBucket, u.key, bytes.NewReader(u.data), u.ctype); err != nil {
			// Roll back any variants already uploaded
			for _, done := range uploads[:i] {
				_ = s.s3Service.DeleteMedia(ctx, s.cfg.MediaImagesBucket, done.key)
			}
			return nil, fmt.Errorf("failed to upload to S3: %w", err)
		}
	}

	// Also mirror into the local cache for fast serving
	var checksum string
	if s.storage != nil {
		if _, _, sum, err := s.storage.SaveStream(ctx, originalKey, bytes.NewReader(data)); err != nil {
			log.Printf("WARN: failed to cache original locally: %v", err)
		} else {
			checksum = sum
		}
		if _, _, _, err := s.storage.SaveStream(ctx, displayKey, bytes.NewReader(display)); err != nil {
			log.Printf("WARN: failed to cache display variant locally: %v", err)
		}
		if _, _, _, err := s.storage.SaveStream(ctx, thumbKey, bytes.NewReader(thumb)); err != nil {
			log.Printf("WARN: failed to cache thumbnail locally: %v", err)
		}
	}

	image := &models.Image{
		GalleryID:   galleryID,
		Name:        strings.TrimSuffix(filepath.Base(filename), ext),
		Rating:      string(proofing.RatingUnrated),
		OriginalKey: originalKey,
		DisplayKey:  displayKey,
		ThumbKey:    thumbKey,
		MimeType:    mimeType,
		SizeBytes:   int64(len(data)),
		Checksum:    checksum,
	}
	if err := s.createAtNextPosition(galleryID, image); err != nil {
		// Clean up S3 objects on DB failure
		for _, u := range uploads {
			_ = s.s3Service.DeleteMedia(ctx, s.cfg.MediaImagesBucket, u.key)
		}
		return nil, fmt.Errorf("failed to create image record: %w", err)
	}

	return image, nil
}

// createAtNextPosition assigns the next free gallery position and inserts
// the row. Concurrent uploads into one gallery can read the same max
// position; the unique index on (gallery_id, position) rejects the loser,
// which re-reads and retries.
func (s *ImageService) createAtNextPosition(galleryID uuid.UUID, image *models.Image) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		image.Position = s.nextPosition(galleryID)
		err = s.db.Create(image).Error
		if err == nil || !isDuplicateKey(err) {
			return err
		}
	}
	return err
}

func (s *ImageService) nextPosition(galleryID uuid.UUID) int {
	var max int
	s.db.Model(&models.Image{}).Where("gallery_id = ?", galleryID).
		Select("COALESCE(MAX(position), 0)").Scan(&max)
	return max + positionStep
}

// isDuplicateKey reports whether err is a unique-constraint violation.
// The postgres driver surfaces these as SQLSTATE 23505.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") || strings.Contains(msg, "duplicate key")
}

// DeleteImage deletes an image. S3 first to avoid orphaned objects, then
// the DB row, then the local cache copies.
func (s *ImageService) DeleteImage(ctx context.Context, imageID uuid.UUID) error {
	var image models.Image
	if err := s.db.First(&image, "id = ?", imageID).Error; err != nil {
		return fmt.Errorf("image not found: %w", err)
	}

	for _, key := range []string{image.OriginalKey, image.DisplayKey, image.ThumbKey} {
		if key == "" {
			continue
		}
		if err := s.s3Service.DeleteMedia(ctx, s.cfg.MediaImagesBucket, key); err != nil {
			log.Printf("WARN: failed to delete S3 object %s: %v", key, err)
		}
	}

	if err := s.db.Delete(&image).Error; err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}

	if s.storage != nil {
		for _, key := range []string{image.OriginalKey, image.DisplayKey, image.ThumbKey} {
			if key != "" {
				_ = s.storage.Remove(key)
			}
		}
	}
	return nil
}

// GetGalleryImages returns a gallery's images in gallery order.
func (s *ImageService) GetGalleryImages(galleryID uuid.UUID) ([]models.Image, error) {
	var images []models.Image
	if err := s.db.Where("gallery_id = ?", galleryID).Order("position ASC").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// GetImageByID returns a single image by ID
func (s *ImageService) GetImageByID(imageID uuid.UUID) (*models.Image, error) {
	var image models.Image
	if err := s.db.First(&image, "id = ?", imageID).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// SetRating sets an image's rating. Re-applying the current rating is a
// no-op; the persisted value is returned so callers render confirmed state
// only (no optimistic local copy).
func (s *ImageService) SetRating(imageID uuid.UUID, rating proofing.Rating) (*models.Image, error) {
	image, err := s.GetImageByID(imageID)
	if err != nil {
		return nil, fmt.Errorf("image not found: %w", err)
	}
	next := proofing.NextRating(image.RatingTag(), rating, false)
	if image.RatingTag() == next {
		return image, nil
	}
	if err := s.db.Model(image).Update("rating", string(next)).Error; err != nil {
		return nil, fmt.Errorf("failed to update rating: %w", err)
	}
	image.Rating = string(next)
	return image, nil
}

// ToggleRating is the compact-control path: clicking the already-active
// rating flips the image back to unrated.
func (s *ImageService) ToggleRating(imageID uuid.UUID, rating proofing.Rating) (*models.Image, error) {
	image, err := s.GetImageByID(imageID)
	if err != nil {
		return nil, fmt.Errorf("image not found: %w", err)
	}
	next := proofing.NextRating(image.RatingTag(), rating, true)
	if err := s.db.Model(image).Update("rating", string(next)).Error; err != nil {
		return nil, fmt.Errorf("failed to update rating: %w", err)
	}
	image.Rating = string(next)
	return image, nil
}

// FailedRating identifies one image a bulk mutation could not update.
type FailedRating struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
}

// BulkRatingResult reports a bulk mutation outcome per image. Partial
// failures surface the failed identifiers, never a single opaque error.
type BulkRatingResult struct {
	Succeeded int            `json:"succeeded"`
	Failed    []FailedRating `json:"failed"`
}

// BulkSetRating applies one rating to every image in ids. Images must
// belong to the given gallery. Clearing the caller's selection afterwards
// is the caller's job, not this method's.
func (s *ImageService) BulkSetRating(galleryID uuid.UUID, ids []uuid.UUID, rating proofing.Rating) (*BulkRatingResult, error) {
	if len(ids) == 0 {
		return nil, errors.New("no images selected")
	}

	return collectBulkRatings(ids, func(id uuid.UUID) (bool, error) {
		res := s.db.Model(&models.Image{}).
			Where("id = ? AND gallery_id = ?", id, galleryID).
			Update("rating", string(rating))
		if res.Error != nil {
			return false, res.Error
		}
		return res.RowsAffected > 0, nil
	}), nil
}

// collectBulkRatings drives the per-image apply func and aggregates the
// outcome. Missing images become failed entries, never a whole-batch error.
func collectBulkRatings(ids []uuid.UUID, apply func(uuid.UUID) (bool, error)) *BulkRatingResult {
	result := &BulkRatingResult{}
	for _, id := range ids {
		found, err := apply(id)
		switch {
		case err != nil:
			result.Failed = append(result.Failed, FailedRating{ID: id, Error: err.Error()})
		case !found:
			result.Failed = append(result.Failed, FailedRating{ID: id, Error: "image not found in gallery"})
		default:
			result.Succeeded++
		}
	}
	return result
}

// SetEffect sets or clears an image's effect tag.
func (s *ImageService) SetEffect(imageID uuid.UUID, effect string) (*models.Image, error) {
	if effect != "" && effect != models.EffectBlackAndWhite {
		return nil, fmt.Errorf("invalid effect %q", effect)
	}
	image, err := s.GetImageByID(imageID)
	if err != nil {
		return nil, fmt.Errorf("image not found: %w", err)
	}
	if err := s.db.Model(image).Update("effect", effect).Error; err != nil {
		return nil, fmt.Errorf("failed to update effect: %w", err)
	}
	image.Effect = effect
	return image, nil
}

// UpdatePosition moves an image within its gallery ordering. Contiguity is
// not required; the unique index on (gallery_id, position) rejects clashes.
func (s *ImageService) UpdatePosition(imageID uuid.UUID, position int) error {
	image, err := s.GetImageByID(imageID)
	if err != nil {
		return fmt.Errorf("image not found: %w", err)
	}
	if err := s.db.Model(image).Update("position", position).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("position %d already taken in gallery", position)
		}
		return err
	}
	return nil
}

// GalleryCounts computes per-rating bucket counts for the display badges.
func (s *ImageService) GalleryCounts(galleryID uuid.UUID) (map[proofing.FilterTag]int, error) {
	images, err := s.GetGalleryImages(galleryID)
	if err != nil {
		return nil, err
	}
	return proofing.Counts(models.ProofingRefs(images)), nil
}

// GetLocalImagePath returns the local file path for a storage key,
// downloading from S3 into the cache when not present.
func (s *ImageService) GetLocalImagePath(ctx context.Context, key string) (string, error) {
	localPath := s.storage.AbsPath(key)
	if _, err := os.Stat(localPath); err == nil {
		return localPath, nil
	}

	data, err := s.s3Service.DownloadMedia(ctx, s.cfg.MediaImagesBucket, key)
	if err != nil {
		return "", fmt.Errorf("failed to download from S3: %w", err)
	}

	absPath, _, _, err := s.storage.SaveStream(ctx, key, bytes.NewReader(data.Bytes()))
	if err != nil {
		return "", fmt.Errorf("failed to cache image locally: %w", err)
	}
	return absPath, nil
}

// PresignOriginalURL returns a short-lived direct download link for the
// full-resolution original, for delivering purchased digital files.
func (s *ImageService) PresignOriginalURL(ctx context.Context, imageID uuid.UUID) (string, error) {
	image, err := s.GetImageByID(imageID)
	if err != nil {
		return "", fmt.Errorf("image not found: %w", err)
	}
	ttl := time.Duration(s.cfg.PresignedURLTTLMinutes) * time.Minute
	return s.s3Service.PresignMediaGet(ctx, s.cfg.MediaImagesBucket, image.OriginalKey, ttl)
}

// GetPendingVariantBackfills returns images missing a derived variant
// (rows created before variant generation existed, or after failures).
func (s *ImageService) GetPendingVariantBackfills(limit int) ([]models.Image, error) {
	var images []models.Image
	err := s.db.Where("thumb_key = '' OR display_key = ''").Limit(limit).Find(&images).Error
	return images, err
}

// BackfillVariants regenerates missing variants from the stored original.
func (s *ImageService) BackfillVariants(ctx context.Context, image *models.Image) error {
	buf, err := s.s3Service.DownloadMedia(ctx, s.cfg.MediaImagesBucket, image.OriginalKey)
	if err != nil {
		return fmt.Errorf("failed to download original: %w", err)
	}
	thumb, display, err := s.thumbnails.Variants(buf.Bytes())
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(image.OriginalKey), filepath.Ext(image.OriginalKey))
	updates := map[string]interface{}{}

	if image.DisplayKey == "" {
		key := fmt.Sprintf("galleries/%s/display/%s.jpg", image.GalleryID, base)
		if err := s.s3Service.UploadMedia(ctx, s.cfg.MediaImagesBucket, key, bytes.NewReader(display), "image/jpeg"); err != nil {
			return fmt.Errorf("failed to upload display variant: %w", err)
		}
		updates["display_key"] = key
	}
	if image.ThumbKey == "" {
		key := fmt.Sprintf("galleries/%s/thumbs/%s.jpg", image.GalleryID, base)
		if err := s.s3Service.UploadMedia(ctx, s.cfg.MediaImagesBucket, key, bytes.NewReader(thumb), "image/jpeg"); err != nil {
			return fmt.Errorf("failed to upload thumbnail: %w", err)
		}
		updates["thumb_key"] = key
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.Model(image).Updates(updates).Error
}

// GetImageContentType returns the content type based on file extension
func GetImageContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".webp":
		return "image/webp"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
