package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/models"
	"github.com/prooflab/backend/internal/services"
)

type ImageHandler struct {
	imageService *services.ImageService
	cfg          *config.Config
}

func NewImageHandler(imageService *services.ImageService, cfg *config.Config) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		cfg:          cfg,
	}
}

// Upload handles a single image upload into a gallery
func (h *ImageHandler) Upload(c *gin.Context) {
	galleryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if fileHeader.Size > h.cfg.UploadMaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	image, err := h.imageService.UploadImage(c.Request.Context(), galleryID, fileHeader.Filename, data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, image)
}

type batchUploadResult struct {
	Filename string        `json:"filename"`
	Image    *models.Image `json:"image,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// UploadBatch handles a multi-file upload. Files are processed with bounded
// concurrency; each file succeeds or fails on its own and the response
// reports both.
func (h *ImageHandler) UploadBatch(c *gin.Context) {
	galleryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}
	if len(files) > h.cfg.UploadMaxBatch {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Too many files, maximum is %d", h.cfg.UploadMaxBatch)})
		return
	}

	results := make([]batchUploadResult, len(files))
	sem := make(chan struct{}, h.cfg.UploadConcurrency)
	var wg sync.WaitGroup

	for i, fileHeader := range files {
		wg.Add(1)
		go func(idx int, fh *multipart.FileHeader) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := batchUploadResult{Filename: fh.Filename}
			defer func() { results[idx] = result }()

			if fh.Size > h.cfg.UploadMaxImageSize {
				result.Error = "file too large"
				return
			}

			file, err := fh.Open()
			if err != nil {
				result.Error = "failed to open file"
				return
			}
			defer file.Close()

			data, err := io.ReadAll(file)
			if err != nil {
				result.Error = "failed to read file"
				return
			}

			image, err := h.imageService.UploadImage(c.Request.Context(), galleryID, fh.Filename, data)
			if err != nil {
				result.Error = err.Error()
				return
			}
			result.Image = image
		}(i, fileHeader)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Error == "" {
			succeeded++
		}
	}
	log.Printf("INFO: batch upload for gallery %s: %d/%d succeeded", galleryID, succeeded, len(files))

	c.JSON(http.StatusOK, gin.H{
		"succeeded": succeeded,
		"failed":    len(files) - succeeded,
		"results":   results,
	})
}

// DeleteImage removes an image and its stored variants
func (h *ImageHandler) DeleteImage(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	if err := h.imageService.DeleteImage(c.Request.Context(), imageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}

// UpdatePosition moves an image within its gallery's manual sort order
func (h *ImageHandler) UpdatePosition(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	var req struct {
		Position int `json:"position" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.imageService.UpdatePosition(imageID, req.Position); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Position updated"})
}

// SetEffect applies or clears the black-and-white presentation effect
func (h *ImageHandler) SetEffect(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	var req struct {
		Effect string `json:"effect"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, err := h.imageService.SetEffect(imageID, req.Effect)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, image)
}

// ServeImage streams an image variant from the local cache, pulling from S3
// on a cache miss. Clients may only fetch images of their own gallery.
func (h *ImageHandler) ServeImage(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	image, err := h.imageService.GetImageByID(imageID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	if galleryIDValue, exists := c.Get("galleryID"); exists {
		if galleryID, ok := galleryIDValue.(uuid.UUID); ok && image.GalleryID != galleryID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
	}

	key := image.DisplayKey
	switch c.DefaultQuery("variant", "display") {
	case "thumb":
		key = image.ThumbKey
	case "original":
		key = image.OriginalKey
	}
	if key == "" {
		key = image.OriginalKey
	}

	path, err := h.imageService.GetLocalImagePath(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch image"})
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.Header("Content-Type", services.GetImageContentType(path))
	c.File(path)
}

// GetDownloadURL returns a short-lived presigned link to the original file
func (h *ImageHandler) GetDownloadURL(c *gin.Context) {
	imageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	url, err := h.imageService.PresignOriginalURL(c.Request.Context(), imageID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create download link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":        url,
		"expires_in": h.cfg.PresignedURLTTLMinutes * 60,
	})
}
