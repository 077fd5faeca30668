package services

import (
	"errors"
	"log"
	"time"

	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/models"
	"github.com/prooflab/backend/pkg/crypto"
	jwtpkg "github.com/prooflab/backend/pkg/jwt"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type AuthService struct {
	db     *gorm.DB
	redis  *redis.Client
	cfg    *config.Config
	access *AccessService
}

func NewAuthService(db *gorm.DB, redis *redis.Client, cfg *config.Config, access *AccessService) *AuthService {
	return &AuthService{
		db:     db,
		redis:  redis,
		cfg:    cfg,
		access: access,
	}
}

// Login authenticates a studio account and returns access/refresh tokens
func (s *AuthService) Login(username, password string) (string, string, *models.User, error) {
	var user models.User

	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", nil, errors.New("invalid credentials")
		}
		return "", "", nil, err
	}

	if !user.IsActive {
		return "", "", nil, errors.New("account is deactivated")
	}

	if !crypto.CheckPassword(password, user.Password) {
		return "", "", nil, errors.New("invalid credentials")
	}

	accessToken, err := jwtpkg.GenerateToken(user.ID.String(), jwtpkg.AccessToken, s.cfg.JWTSecret, s.cfg.JWTAccessTokenDuration)
	if err != nil {
		return "", "", nil, err
	}

	refreshToken, err := jwtpkg.GenerateToken(user.ID.String(), jwtpkg.RefreshToken, s.cfg.JWTSecret, s.cfg.JWTRefreshTokenDuration)
	if err != nil {
		return "", "", nil, err
	}

	refreshTokenModel := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshTokenDuration),
	}
	if err := s.db.Create(refreshTokenModel).Error; err != nil {
		return "", "", nil, err
	}

	return accessToken, refreshToken, &user, nil
}

// RefreshAccessToken exchanges a valid refresh token for a new access token
func (s *AuthService) RefreshAccessToken(refreshToken string) (string, error) {
	claims, err := jwtpkg.ValidateToken(refreshToken, s.cfg.JWTSecret)
	if err != nil || claims.TokenType != jwtpkg.RefreshToken {
		return "", errors.New("invalid refresh token")
	}

	var stored models.RefreshToken
	if err := s.db.Where("token = ?", refreshToken).First(&stored).Error; err != nil {
		return "", errors.New("refresh token not recognized")
	}
	if time.Now().After(stored.ExpiresAt) {
		s.db.Delete(&stored)
		return "", errors.New("refresh token expired")
	}

	return jwtpkg.GenerateToken(claims.UserID, jwtpkg.AccessToken, s.cfg.JWTSecret, s.cfg.JWTAccessTokenDuration)
}

// Logout invalidates a refresh token
func (s *AuthService) Logout(refreshToken string) error {
	return s.db.Where("token = ?", refreshToken).Delete(&models.RefreshToken{}).Error
}

// ValidateAccessToken validates a studio access token and loads the user
func (s *AuthService) ValidateAccessToken(tokenString string) (*models.User, error) {
	claims, err := jwtpkg.ValidateToken(tokenString, s.cfg.JWTSecret)
	if err != nil || claims.TokenType != jwtpkg.AccessToken {
		return nil, errors.New("invalid token")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return nil, errors.New("user not found")
	}
	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}
	return &user, nil
}

// RedeemAccessCode exchanges a gallery access code for a gallery-scoped
// token. This is the only way clients enter the system.
func (s *AuthService) RedeemAccessCode(code string) (string, *models.AccessCode, error) {
	accessCode, err := s.access.ValidateForRedemption(code)
	if err != nil {
		return "", nil, err
	}

	token, err := jwtpkg.GenerateGalleryToken(
		accessCode.GalleryID.String(),
		accessCode.Gallery.ClientID.String(),
		s.cfg.JWTSecret,
		s.cfg.JWTGalleryTokenDuration,
	)
	if err != nil {
		return "", nil, err
	}

	if err := s.access.MarkViewed(accessCode.ID); err != nil {
		log.Printf("WARN: failed to mark access code viewed: %v", err)
	}

	return token, accessCode, nil
}

// ValidateGalleryToken validates a client's gallery-scoped token
func (s *AuthService) ValidateGalleryToken(tokenString string) (*jwtpkg.Claims, error) {
	claims, err := jwtpkg.ValidateToken(tokenString, s.cfg.JWTSecret)
	if err != nil || claims.TokenType != jwtpkg.GalleryToken {
		return nil, errors.New("invalid gallery token")
	}
	return claims, nil
}

// CleanupExpiredRefreshTokens removes stale refresh tokens
func (s *AuthService) CleanupExpiredRefreshTokens() (int64, error) {
	res := s.db.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
