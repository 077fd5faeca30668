package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/models"
	"github.com/prooflab/backend/internal/proofing"
	"github.com/prooflab/backend/internal/services"
)

// ProofingHandler serves the client-side proofing workflow: rating images,
// selecting for compare, filtering and navigating the workspace. All routes
// sit behind the gallery token middleware.
type ProofingHandler struct {
	proofingService *services.ProofingService
	imageService    *services.ImageService
	galleryService  *services.GalleryService
}

func NewProofingHandler(
	proofingService *services.ProofingService,
	imageService *services.ImageService,
	galleryService *services.GalleryService,
) *ProofingHandler {
	return &ProofingHandler{
		proofingService: proofingService,
		imageService:    imageService,
		galleryService:  galleryService,
	}
}

func galleryScope(c *gin.Context) (uuid.UUID, uuid.UUID) {
	return c.MustGet("galleryID").(uuid.UUID), c.MustGet("clientID").(uuid.UUID)
}

func (h *ProofingHandler) galleryRefs(galleryID uuid.UUID) ([]proofing.ImageRef, error) {
	images, err := h.imageService.GetGalleryImages(galleryID)
	if err != nil {
		return nil, err
	}
	return models.ProofingRefs(images), nil
}

// GetGallery returns the client's gallery with images, rating counts and
// the current workspace session.
func (h *ProofingHandler) GetGallery(c *gin.Context) {
	galleryID, clientID := galleryScope(c)

	gallery, err := h.galleryService.GetGalleryByID(galleryID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Gallery not found"})
		return
	}

	images, err := h.imageService.GetGalleryImages(galleryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load images"})
		return
	}

	counts, err := h.imageService.GalleryCounts(galleryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load counts"})
		return
	}

	session, err := h.proofingService.GetSession(c.Request.Context(), galleryID.String(), clientID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"gallery": gin.H{
			"id":           gallery.ID,
			"name":         gallery.Name,
			"session_date": gallery.SessionDate,
		},
		"images":  images,
		"counts":  counts,
		"session": session,
	})
}

// SetRating sets an image's rating to an explicit value
func (h *ProofingHandler) SetRating(c *gin.Context) {
	galleryID, _ := galleryScope(c)

	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	var req struct {
		Rating string `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rating, err := proofing.ParseRating(req.Rating)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, err := h.imageService.GetImageByID(imageID)
	if err != nil || image.GalleryID != galleryID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	updated, err := h.imageService.SetRating(imageID, rating)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// ToggleRating toggles an image's rating: pressing the same value again
// returns the image to unrated.
func (h *ProofingHandler) ToggleRating(c *gin.Context) {
	galleryID, _ := galleryScope(c)

	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	var req struct {
		Rating string `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rating, err := proofing.ParseRating(req.Rating)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, err := h.imageService.GetImageByID(imageID)
	if err != nil || image.GalleryID != galleryID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	updated, err := h.imageService.ToggleRating(imageID, rating)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// BulkRating applies one rating to many images. Each image succeeds or
// fails on its own; the response reports both sides.
func (h *ProofingHandler) BulkRating(c *gin.Context) {
	galleryID, clientID := galleryScope(c)

	var req struct {
		IDs    []uuid.UUID `json:"ids" binding:"required,min=1"`
		Rating string      `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rating, err := proofing.ParseRating(req.Rating)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.imageService.BulkSetRating(galleryID, req.IDs, rating)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Bulk actions consume the selection
	if _, err := h.proofingService.ClearSelection(c.Request.Context(), galleryID.String(), clientID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear selection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})
}

// GetSession returns the current workspace session
func (h *ProofingHandler) GetSession(c *gin.Context) {
	galleryID, clientID := galleryScope(c)

	session, err := h.proofingService.GetSession(c.Request.Context(), galleryID.String(), clientID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// Select applies a selection gesture (plain, ctrl or shift click)
func (h *ProofingHandler) Select(c *gin.Context) {
	galleryID, clientID := galleryScope(c)

	var req struct {
		ImageID  uuid.UUID `json:"image_id" binding:"required"`
		Modifier string    `json:"modifier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	modifier := services.SelectModifier(req.Modifier)
	if modifier == "" {
		modifier = services.SelectSingle
	}

	refs, err := h.galleryRefs(galleryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load images"})
		return
	}

	session, err := h.proofingService.Select(c.Request.Context(), galleryID.String(), clientID.String(), refs, req.ImageID.String(), modifier)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// ClearSelection empties the selection
func (h *ProofingHandler) ClearSelection(c *gin.Context) {
	galleryID, clientID := galleryScope(c)

	session, err := h.proofingService.ClearSelection(c.Request.Context(), galleryID.String(), clientID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear selection"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// SetFilter switches the active rating filter
func (h *ProofingHandler) SetFilter(c *gin.Context) {
	galleryID, clientID := galleryScope(c)

	var req struct {
		Filter string `json:"filter" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tag, err := proofing.ParseFilterTag(req.Filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refs, err := h.galleryRefs(galleryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load images"})
		return
	}

	session, err := h.proofingService.SetFilter(c.Request.Context(), galleryID.String(), clientID.String(), refs, tag)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// SetMode switches between gallery, compare and slideshow
func (h *ProofingHandler) SetMode(c *gin.Context) {
	galleryID, clientID := galleryScope(c)

	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode, ok := proofing.ParseMode(req.Mode)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mode"})
		return
	}

	refs, err := h.galleryRefs(galleryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load images"})
		return
	}

	session, err := h.proofingService.SetMode(c.Request.Context(), galleryID.String(), clientID.String(), refs, mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// Navigate moves through the visible sequence or controls slideshow playback
func (h *ProofingHandler) Navigate(c *gin.Context) {
	galleryID, clientID := galleryScope(c)

	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refs, err := h.galleryRefs(galleryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load images"})
		return
	}

	session, err := h.proofingService.Navigate(c.Request.Context(), galleryID.String(), clientID.String(), refs, services.NavAction(req.Action))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}
