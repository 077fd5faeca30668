package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/services"
	"github.com/prooflab/backend/pkg/validation"
)

type GalleryHandler struct {
	galleryService *services.GalleryService
	imageService   *services.ImageService
	accessService  *services.AccessService
	clientService  *services.ClientService
	qrService      *services.QRService
	emailService   *services.EmailService
}

func NewGalleryHandler(
	galleryService *services.GalleryService,
	imageService *services.ImageService,
	accessService *services.AccessService,
	clientService *services.ClientService,
	qrService *services.QRService,
	emailService *services.EmailService,
) *GalleryHandler {
	return &GalleryHandler{
		galleryService: galleryService,
		imageService:   imageService,
		accessService:  accessService,
		clientService:  clientService,
		qrService:      qrService,
		emailService:   emailService,
	}
}

// CreateGallery creates a gallery for a client
func (h *GalleryHandler) CreateGallery(c *gin.Context) {
	var req struct {
		Name        string    `json:"name" binding:"required"`
		ClientID    uuid.UUID `json:"client_id" binding:"required"`
		SessionDate time.Time `json:"session_date" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gallery, err := h.galleryService.CreateGallery(validation.SanitizeString(req.Name), req.ClientID, req.SessionDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gallery)
}

// GetGalleries lists galleries with pagination
func (h *GalleryHandler) GetGalleries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	galleries, total, err := h.galleryService.GetAllGalleries((page-1)*limit, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load galleries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"galleries": galleries,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

// GetGallery returns a gallery with its images, rating counts and codes
func (h *GalleryHandler) GetGallery(c *gin.Context) {
	galleryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}

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

	codes, err := h.accessService.GetGalleryCodes(galleryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load access codes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"gallery":      gallery,
		"images":       images,
		"counts":       counts,
		"access_codes": codes,
	})
}

// UpdateGallery updates mutable gallery fields
func (h *GalleryHandler) UpdateGallery(c *gin.Context) {
	galleryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.galleryService.UpdateGallery(galleryID, updates); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gallery updated"})
}

// DeleteGallery removes a gallery with all its images and codes
func (h *GalleryHandler) DeleteGallery(c *gin.Context) {
	galleryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}

	if err := h.galleryService.DeleteGallery(c.Request.Context(), galleryID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gallery deleted"})
}

// CreateAccessCode issues a new access code for a gallery
func (h *GalleryHandler) CreateAccessCode(c *gin.Context) {
	galleryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}

	var req struct {
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.accessService.CreateAccessCode(galleryID, req.ExpiresAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, code)
}

// DeactivateAccessCode revokes an access code
func (h *GalleryHandler) DeactivateAccessCode(c *gin.Context) {
	codeID, err := uuid.Parse(c.Param("codeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code ID"})
		return
	}

	if err := h.accessService.DeactivateCode(codeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Access code not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Access code deactivated"})
}

// GetAccessCodeQR renders the printable QR hand-out for an access code
func (h *GalleryHandler) GetAccessCodeQR(c *gin.Context) {
	galleryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}
	codeID, err := uuid.Parse(c.Param("codeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code ID"})
		return
	}

	gallery, err := h.galleryService.GetGalleryByID(galleryID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Gallery not found"})
		return
	}

	codes, err := h.accessService.GetGalleryCodes(galleryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load access codes"})
		return
	}
	for _, code := range codes {
		if code.ID == codeID {
			pdf, err := h.qrService.GenerateAccessQRPDF(gallery, code)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
				return
			}
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=gallery-access-%s.pdf", code.Code))
			c.Data(http.StatusOK, "application/pdf", pdf)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Access code not found"})
}

// NotifyClient emails the client their gallery access code
func (h *GalleryHandler) NotifyClient(c *gin.Context) {
	galleryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}
	codeID, err := uuid.Parse(c.Param("codeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code ID"})
		return
	}

	gallery, err := h.galleryService.GetGalleryByID(galleryID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Gallery not found"})
		return
	}

	codes, err := h.accessService.GetGalleryCodes(galleryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load access codes"})
		return
	}
	for _, code := range codes {
		if code.ID == codeID {
			go func(codeStr string) {
				if err := h.emailService.SendGalleryReady(&gallery.Client, gallery, codeStr); err != nil {
					log.Printf("ERROR: failed to send gallery-ready email for gallery %s: %v", gallery.ID, err)
				}
			}(code.Code)
			c.JSON(http.StatusOK, gin.H{"message": "Notification sent"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Access code not found"})
}
