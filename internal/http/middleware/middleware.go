// Package middleware holds the gin middleware shared by the vendor and app
// route groups.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/config"
	"github.com/visora-labs/visora-relay/internal/models"
	"github.com/visora-labs/visora-relay/internal/ratelimit"
	"github.com/visora-labs/visora-relay/internal/security"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID   = "userID"
	ContextAPIKeyID = "apiKeyID"
)

// vendorError writes the OpenAI-style error envelope used on /v1 routes.
func vendorError(c *gin.Context, status int, message, errType string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"message": message, "type": errType}})
}

// extractAPIKey pulls the API key from the request. The x-vs-api-key header
// wins, then the last token of the Authorization header, then the api_key
// query parameter when allowed.
func extractAPIKey(c *gin.Context, allowQuery bool) string {
	if key := strings.TrimSpace(c.GetHeader("x-vs-api-key")); key != "" {
		return key
	}
	if authHeader := strings.TrimSpace(c.GetHeader("Authorization")); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		return strings.TrimSpace(parts[len(parts)-1])
	}
	if allowQuery {
		return strings.TrimSpace(c.Query("api_key"))
	}
	return ""
}

// APIKeyAuth validates the vendor API key and loads key context. GET requests
// may also carry the key in the api_key query parameter.
func APIKeyAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := extractAPIKey(c, c.Request.Method == http.MethodGet)
		if key == "" {
			vendorError(c, http.StatusUnauthorized, "Missing API Key", "invalid_request_error")
			return
		}
		if !strings.HasPrefix(key, "vsk_") {
			vendorError(c, http.StatusUnauthorized, "Invalid API Key", "invalid_request_error")
			return
		}

		var row models.APIKey
		if errFind := db.WithContext(c.Request.Context()).First(&row, "key = ?", key).Error; errFind != nil {
			vendorError(c, http.StatusUnauthorized, "Invalid API Key", "invalid_request_error")
			return
		}

		now := time.Now().UTC()
		if errTouch := db.WithContext(c.Request.Context()).Model(&models.APIKey{}).
			Where("id = ?", row.ID).
			Update("last_used_at", &now).Error; errTouch != nil {
			log.WithError(errTouch).Warn("failed to update api key last_used_at")
		}

		c.Set(ContextAPIKeyID, row.ID)
		c.Set(ContextUserID, row.UserID)
		c.Next()
	}
}

// SessionAuth validates the JWT session token and loads the user context.
func SessionAuth(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseSessionToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, "id = ?", claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Next()
	}
}

// RateLimit enforces the per-user request limit after one of the auth
// middlewares has set the user context.
func RateLimit(manager *ratelimit.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := manager.Limit()
		if limit <= 0 {
			c.Next()
			return
		}
		key := ratelimit.KeyForUser(c.GetString(ContextUserID))
		result, errAllow := manager.Allow(c.Request.Context(), key, limit)
		if errAllow != nil {
			log.WithError(errAllow).Warn("rate limit check failed")
			c.Next()
			return
		}
		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
