package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/models"
	"gorm.io/gorm"
)

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) CreateProduct(name, description string, price float64, kind string) (*models.Product, error) {
	switch kind {
	case models.ProductKindPrint, models.ProductKindCanvas, models.ProductKindDigital:
	default:
		return nil, fmt.Errorf("invalid product kind: %s", kind)
	}
	if price < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}

	product := &models.Product{
		Name:        name,
		Description: description,
		Price:       price,
		Kind:        kind,
		IsActive:    true,
	}
	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (s *ProductService) GetProductByID(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetActiveProducts returns the catalog clients can order from.
func (s *ProductService) GetActiveProducts() ([]*models.Product, error) {
	var products []*models.Product
	if err := s.db.Where("is_active = ?", true).Order("price ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductService) GetAllProducts() ([]*models.Product, error) {
	var products []*models.Product
	if err := s.db.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductService) UpdateProduct(productID uuid.UUID, updates map[string]interface{}) error {
	allowed := map[string]bool{"name": true, "description": true, "price": true, "is_active": true}
	filtered := map[string]interface{}{}
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	res := s.db.Model(&models.Product{}).Where("id = ?", productID).Updates(filtered)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeactivateProduct hides a product from the catalog. Products are never
// hard-deleted so historical order items keep their reference.
func (s *ProductService) DeactivateProduct(productID uuid.UUID) error {
	res := s.db.Model(&models.Product{}).Where("id = ?", productID).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
