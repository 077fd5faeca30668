package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/models"
	qrcode "github.com/skip2/go-qrcode"
)

type QRService struct {
	cfg *config.Config
}

func NewQRService(cfg *config.Config) *QRService { return &QRService{cfg: cfg} }

// GenerateAccessQRPDF renders an A4 hand-out sheet with a QR code that
// opens the gallery with the access code pre-filled. Studios print these
// and include them with delivered albums.
func (s *QRService) GenerateAccessQRPDF(gallery *models.Gallery, code *models.AccessCode) ([]byte, error) {
	galleryURL := fmt.Sprintf("%s/gallery?code=%s", s.cfg.FrontendURL, code.Code)

	var qrBuf bytes.Buffer
	png, err := qrcode.Encode(galleryURL, qrcode.Medium, 512)
	if err != nil {
		return nil, err
	}
	qrBuf.Write(png)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, gallery.Name)
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 6, fmt.Sprintf("Access code: %s\nURL: %s", code.Code, galleryURL), "", "L", false)

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr", opt, bytes.NewReader(qrBuf.Bytes()))

	// Center QR on the page (A4 width 210mm, QR size 100mm)
	x := (210.0 - 100.0) / 2.0
	y := pdf.GetY() + 10
	pdf.ImageOptions("qr", x, y, 100, 100, false, opt, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
