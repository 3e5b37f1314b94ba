package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/models"
	"github.com/visora-labs/visora-relay/internal/security"
)

// KeygenHandler mints anonymous SDK keys without authentication.
type KeygenHandler struct {
	db *gorm.DB
}

// NewKeygenHandler constructs a KeygenHandler.
func NewKeygenHandler(db *gorm.DB) *KeygenHandler {
	return &KeygenHandler{db: db}
}

// Generate creates an anonymous user and a fresh API key for it.
func (h *KeygenHandler) Generate(c *gin.Context) {
	email, errEmail := security.AnonymousEmail()
	if errEmail != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create SDK session"})
		return
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Anonymous: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create SDK session"})
		return
	}

	token, errGenerate := security.GenerateAPIKey()
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate SDK key"})
		return
	}
	key := models.APIKey{
		UserID:    user.ID,
		Key:       token,
		Name:      "SDK Random Key",
		CreatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&key).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate SDK key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"apiKey":  key.Key,
		"userId":  user.ID,
		"message": "This key is temporary and for SDK use only.",
	})
}
