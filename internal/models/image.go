package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/proofing"
	"gorm.io/gorm"
)

// EffectBlackAndWhite is the only effect the proofing UI offers today.
const EffectBlackAndWhite = "Black and White"

// Image is one photo inside a gallery. Position gives the gallery ordering
// (unique per gallery, enforced by uidx_images_gallery_position, not
// necessarily contiguous). Three storage keys cover the thumbnail,
// proofing/display and original variants.
type Image struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	GalleryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uidx_images_gallery_position,priority:1" json:"gallery_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Position  int       `gorm:"not null;uniqueIndex:uidx_images_gallery_position,priority:2" json:"position"`
	Rating    string    `gorm:"size:16;default:'unrated'" json:"rating"`
	Effect    string    `gorm:"size:64" json:"effect,omitempty"`

	OriginalKey string `gorm:"size:512;uniqueIndex" json:"-"`
	DisplayKey  string `gorm:"size:512" json:"-"`
	ThumbKey    string `gorm:"size:512" json:"-"`

	MimeType  string `gorm:"size:120" json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `gorm:"size:128" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Gallery *Gallery `gorm:"foreignKey:GalleryID" json:"-"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// RatingTag returns the image's rating normalized to a valid proofing tag.
// Rows written before the rating column existed come back empty.
func (i *Image) RatingTag() proofing.Rating {
	return proofing.NormalizeRating(proofing.Rating(i.Rating))
}

// ProofingRef adapts the storage row to the proofing core's view of it.
func (i *Image) ProofingRef() proofing.ImageRef {
	return proofing.ImageRef{ID: i.ID.String(), Rating: i.RatingTag()}
}

// ProofingRefs maps a gallery's ordered images onto proofing refs.
func ProofingRefs(images []Image) []proofing.ImageRef {
	refs := make([]proofing.ImageRef, len(images))
	for idx := range images {
		refs[idx] = images[idx].ProofingRef()
	}
	return refs
}
