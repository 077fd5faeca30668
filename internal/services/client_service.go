package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/models"
	"gorm.io/gorm"
)

type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

func (s *ClientService) CreateClient(name, email, phone, notes string) (*models.Client, error) {
	client := &models.Client{
		Name:  name,
		Email: email,
		Phone: phone,
		Notes: notes,
	}
	if err := s.db.Create(client).Error; err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (s *ClientService) GetClientByID(clientID uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := s.db.First(&client, "id = ?", clientID).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *ClientService) GetAllClients(offset, limit int) ([]*models.Client, int64, error) {
	var clients []*models.Client
	var total int64

	if err := s.db.Model(&models.Client{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := s.db.Order("name ASC").Offset(offset).Limit(limit).Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (s *ClientService) UpdateClient(clientID uuid.UUID, updates map[string]interface{}) error {
	allowed := map[string]bool{"name": true, "email": true, "phone": true, "notes": true}
	filtered := map[string]interface{}{}
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	res := s.db.Model(&models.Client{}).Where("id = ?", clientID).Updates(filtered)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteClient refuses while galleries still reference the client.
func (s *ClientService) DeleteClient(clientID uuid.UUID) error {
	var galleryCount int64
	if err := s.db.Model(&models.Gallery{}).Where("client_id = ?", clientID).Count(&galleryCount).Error; err != nil {
		return err
	}
	if galleryCount > 0 {
		return errors.New("client still has galleries; delete them first")
	}
	res := s.db.Delete(&models.Client{}, "id = ?", clientID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
