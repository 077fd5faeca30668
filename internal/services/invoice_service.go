package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/models"
)

type InvoiceService struct {
	cfg *config.Config
}

func NewInvoiceService(cfg *config.Config) *InvoiceService {
	return &InvoiceService{cfg: cfg}
}

// GenerateOrderInvoicePDF renders an A4 invoice for a paid order. The
// order must be loaded with its items, products, images and client.
func (s *InvoiceService) GenerateOrderInvoicePDF(order *models.Order) ([]byte, error) {
	if order.Status != models.OrderStatusPaid && order.Status != models.OrderStatusRefunded {
		return nil, errors.New("invoice is only available for paid orders")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, s.cfg.SMTPFromName)
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice %s", order.ID.String()[:8]))
	pdf.Ln(6)
	if order.PaidAt != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Date: %s", order.PaidAt.Format("02.01.2006")))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Billed to: %s", order.Client.Name))
	pdf.Ln(12)

	// Line item table
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(70, 8, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(55, 8, "Image", "B", 0, "L", false, 0, "")
	pdf.CellFormat(15, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, item := range order.Items {
		pdf.CellFormat(70, 7, item.Product.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(55, 7, item.Image.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", item.LineTotal), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(165, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", order.TotalAmount), "T", 1, "R", false, 0, "")

	if order.Status == models.OrderStatusRefunded {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Refunded: %.2f", order.RefundedAmount))
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
