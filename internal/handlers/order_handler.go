package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/services"
)

type OrderHandler struct {
	orderService   *services.OrderService
	invoiceService *services.InvoiceService
}

func NewOrderHandler(orderService *services.OrderService, invoiceService *services.InvoiceService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		invoiceService: invoiceService,
	}
}

// CreateOrder creates an order from the client's cart and returns the
// hosted checkout URL.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	galleryID := c.MustGet("galleryID").(uuid.UUID)
	clientID := c.MustGet("clientID").(uuid.UUID)

	var req struct {
		Items []services.OrderItemInput `json:"items" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, checkoutURL, err := h.orderService.CreateOrder(galleryID, clientID, req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":        order,
		"checkout_url": checkoutURL,
	})
}

// GetMyOrders returns the client's orders for their gallery
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	galleryID := c.MustGet("galleryID").(uuid.UUID)
	clientID := c.MustGet("clientID").(uuid.UUID)

	orders, err := h.orderService.GetClientOrders(galleryID, clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// CancelOrder lets a client abandon a pending checkout
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	clientID := c.MustGet("clientID").(uuid.UUID)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	if err := h.orderService.CancelOrder(orderID, clientID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled"})
}

// GetOrders lists all orders (studio view)
func (h *OrderHandler) GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	orders, total, err := h.orderService.GetAllOrders((page-1)*limit, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// GetOrder returns one order with its items (studio view)
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

// RefundOrder refunds a paid order, fully or partially (studio action)
func (h *OrderHandler) RefundOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.orderService.RefundOrder(orderID, req.Amount); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order refunded"})
}

// GetInvoice renders the order invoice PDF
func (h *OrderHandler) GetInvoice(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	// Clients may only fetch invoices of their own orders
	if clientIDValue, exists := c.Get("clientID"); exists {
		if clientID, ok := clientIDValue.(uuid.UUID); ok && order.ClientID != clientID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
	}

	pdf, err := h.invoiceService.GenerateOrderInvoicePDF(order)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", order.ID.String()[:8]))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
