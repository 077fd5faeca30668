package services

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/prooflab/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testThumbnailService() *ThumbnailService {
	return NewThumbnailService(&config.Config{ThumbMaxEdge: 400, DisplayMaxEdge: 2048})
}

func TestVariantsFromPNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 600))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	thumb, display, err := testThumbnailService().Variants(buf.Bytes())
	require.NoError(t, err)

	thumbImg, err := jpeg.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 400, thumbImg.Bounds().Dx())
	assert.Equal(t, 300, thumbImg.Bounds().Dy())

	// Smaller than the display edge, so no resize.
	displayImg, err := jpeg.Decode(bytes.NewReader(display))
	require.NoError(t, err)
	assert.Equal(t, 800, displayImg.Bounds().Dx())
}

// Smallest valid lossless WebP file, a single pixel.
var webpOnePixel = []byte{
	0x52, 0x49, 0x46, 0x46, 0x1a, 0x00, 0x00, 0x00,
	0x57, 0x45, 0x42, 0x50, 0x56, 0x50, 0x38, 0x4c,
	0x0d, 0x00, 0x00, 0x00, 0x2f, 0x00, 0x00, 0x00,
	0x10, 0x07, 0x10, 0x11, 0x11, 0x88, 0x88, 0xfe,
	0x07, 0x00,
}

func TestVariantsFromWebP(t *testing.T) {
	thumb, display, err := testThumbnailService().Variants(webpOnePixel)
	require.NoError(t, err)
	assert.NotEmpty(t, thumb)
	assert.NotEmpty(t, display)
}

func TestVariantsRejectsNonImage(t *testing.T) {
	_, _, err := testThumbnailService().Variants([]byte("not an image"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode image")
}
