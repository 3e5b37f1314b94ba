package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/http/middleware"
	"github.com/visora-labs/visora-relay/internal/models"
	"github.com/visora-labs/visora-relay/internal/security"
)

// AppKeyHandler manages the caller's own API keys.
type AppKeyHandler struct {
	db *gorm.DB
}

// NewAppKeyHandler constructs an AppKeyHandler.
func NewAppKeyHandler(db *gorm.DB) *AppKeyHandler {
	return &AppKeyHandler{db: db}
}

// List returns the caller's API keys, newest first.
func (h *AppKeyHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var rows []models.APIKey
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list api keys failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":           row.ID,
			"name":         row.Name,
			"key":          row.Key,
			"last_used_at": row.LastUsedAt,
			"created_at":   row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Create issues a new API key for the caller.
func (h *AppKeyHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var body struct {
		Name string `json:"name"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		name = "Default Key"
	}

	token, errGenerate := security.GenerateAPIKey()
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate api key failed"})
		return
	}
	row := models.APIKey{
		UserID:    userID,
		Key:       token,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create api key failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         row.ID,
		"name":       row.Name,
		"key":        row.Key,
		"created_at": row.CreatedAt,
	})
}

// Delete removes one of the caller's API keys. In-flight requests that
// already validated the key complete normally.
func (h *AppKeyHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var body struct {
		ID uint64 `json:"id"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID is required"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", body.ID, userID).
		Delete(&models.APIKey{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete api key failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
