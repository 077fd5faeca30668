package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("user-123", AccessToken, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Empty(t, claims.GalleryID)
}

func TestGenerateGalleryToken(t *testing.T) {
	token, err := GenerateGalleryToken("gallery-1", "client-1", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, GalleryToken, claims.TokenType)
	assert.Equal(t, "gallery-1", claims.GalleryID)
	assert.Equal(t, "client-1", claims.ClientID)
	assert.Empty(t, claims.UserID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-123", AccessToken, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	token, err := GenerateToken("user-123", AccessToken, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.Error(t, err)
}

func TestIsTokenValid(t *testing.T) {
	access, err := GenerateToken("user-123", AccessToken, testSecret, time.Hour)
	require.NoError(t, err)
	refresh, err := GenerateToken("user-123", RefreshToken, testSecret, time.Hour)
	require.NoError(t, err)

	assert.True(t, IsTokenValid(access, testSecret, AccessToken))
	assert.False(t, IsTokenValid(access, testSecret, RefreshToken))
	assert.True(t, IsTokenValid(refresh, testSecret, RefreshToken))
	assert.False(t, IsTokenValid("garbage", testSecret, AccessToken))
}
