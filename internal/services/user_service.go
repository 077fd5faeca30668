package services

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/models"
	"github.com/prooflab/backend/pkg/crypto"
	"gorm.io/gorm"
)

type UserService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewUserService(db *gorm.DB, cfg *config.Config) *UserService {
	return &UserService{db: db, cfg: cfg}
}

func (s *UserService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates mutable profile fields only.
func (s *UserService) UpdateProfile(userID uuid.UUID, updates map[string]interface{}) error {
	allowed := map[string]bool{"name": true, "email": true}
	filtered := map[string]interface{}{}
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(filtered)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ChangePassword verifies the old password before setting a new hash.
func (s *UserService) ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !crypto.CheckPassword(oldPassword, user.Password) {
		return errors.New("current password is incorrect")
	}
	hash, err := crypto.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	return s.db.Model(user).Update("password", hash).Error
}

// CreateDefaultStudioAccount bootstraps the configured studio login on
// first start.
func (s *UserService) CreateDefaultStudioAccount() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", s.cfg.StudioUsername).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword(s.cfg.StudioPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	user := &models.User{
		Username: s.cfg.StudioUsername,
		Email:    s.cfg.StudioEmail,
		Password: hash,
		Name:     "Studio",
		IsAdmin:  true,
		IsActive: true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return err
	}
	log.Printf("Created default studio account %q", s.cfg.StudioUsername)
	return nil
}
