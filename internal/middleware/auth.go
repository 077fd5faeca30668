package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prooflab/backend/internal/services"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Auth validates a studio access token and stores the user in the context.
func Auth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		user, err := authService.ValidateAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("userID", user.ID)
		c.Set("user", user)
		c.Set("isAdmin", user.IsAdmin)
		c.Next()
	}
}

// AdminOnly requires the Auth middleware to have run first.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("isAdmin") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GalleryAuth validates a client's gallery-scoped token and stores the
// gallery and client IDs in the context. Clients never hold studio tokens;
// this is the only credential the proofing routes accept.
func GalleryAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateGalleryToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired gallery token"})
			c.Abort()
			return
		}

		galleryID, err := uuid.Parse(claims.GalleryID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid gallery token"})
			c.Abort()
			return
		}
		clientID, err := uuid.Parse(claims.ClientID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid gallery token"})
			c.Abort()
			return
		}

		c.Set("galleryID", galleryID)
		c.Set("clientID", clientID)
		c.Next()
	}
}
