package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"github.com/prooflab/backend/internal/config"
	_ "golang.org/x/image/webp"
)

// ThumbnailService derives the thumbnail and display variants of an
// uploaded original. Variants are always encoded as JPEG; the original is
// kept untouched in its native format.
type ThumbnailService struct {
	cfg *config.Config
}

func NewThumbnailService(cfg *config.Config) *ThumbnailService {
	return &ThumbnailService{cfg: cfg}
}

// Variants returns the thumb and display JPEG bytes for an original.
func (s *ThumbnailService) Variants(original []byte) (thumb, display []byte, err error) {
	img, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb, err = s.encodeResized(img, s.cfg.ThumbMaxEdge, 80)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build thumbnail: %w", err)
	}
	display, err = s.encodeResized(img, s.cfg.DisplayMaxEdge, 90)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build display variant: %w", err)
	}
	return thumb, display, nil
}

func (s *ThumbnailService) encodeResized(img image.Image, maxEdge uint, quality int) ([]byte, error) {
	bounds := img.Bounds()
	w, h := uint(bounds.Dx()), uint(bounds.Dy())

	resized := img
	if w > maxEdge || h > maxEdge {
		if w >= h {
			resized = resize.Resize(maxEdge, 0, img, resize.Lanczos3)
		} else {
			resized = resize.Resize(0, maxEdge, img, resize.Lanczos3)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
