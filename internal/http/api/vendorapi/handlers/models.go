package handlers

import (
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/backend"
	"github.com/visora-labs/visora-relay/internal/catalog"
	"github.com/visora-labs/visora-relay/internal/models"
	"github.com/visora-labs/visora-relay/internal/shaper"
)

// ModelsHandler serves the model catalog and the Gemini-style generation
// endpoint.
type ModelsHandler struct {
	db      *gorm.DB
	backend Inference
	shaper  *shaper.Shaper
}

// NewModelsHandler constructs a ModelsHandler.
func NewModelsHandler(db *gorm.DB, inference Inference, sh *shaper.Shaper) *ModelsHandler {
	return &ModelsHandler{db: db, backend: inference, shaper: sh}
}

// List returns the static model catalog.
func (h *ModelsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": catalog.Models()})
}

func geminiError(c *gin.Context, code int, message, status string) {
	c.JSON(code, gin.H{"error": gin.H{"code": code, "message": message, "status": status}})
}

// generateContentRequest is the Gemini-style request payload.
type generateContentRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float32 `json:"temperature"`
	} `json:"generationConfig"`
}

// GenerateContent handles POST /v1/models/:model, accepting the Gemini
// generateContent request and response shapes. Errors use the Gemini error
// envelope, not the OpenAI one.
func (h *ModelsHandler) GenerateContent(c *gin.Context) {
	apiKey := strings.TrimSpace(c.GetHeader("Authorization"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(c.GetHeader("x-api-key"))
	}
	apiKey = strings.TrimSpace(strings.TrimPrefix(apiKey, "Bearer "))
	if apiKey == "" || !strings.HasPrefix(apiKey, "vsk_") {
		geminiError(c, http.StatusUnauthorized, "Invalid API key", "UNAUTHENTICATED")
		return
	}
	var key models.APIKey
	if errFind := h.db.WithContext(c.Request.Context()).First(&key, "key = ?", apiKey).Error; errFind != nil {
		geminiError(c, http.StatusUnauthorized, "Invalid API key", "UNAUTHENTICATED")
		return
	}

	var req generateContentRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil || len(req.Contents) == 0 {
		geminiError(c, http.StatusBadRequest, "Invalid request: contents is required", "INVALID_ARGUMENT")
		return
	}

	messages := make([]backend.Message, 0, len(req.Contents))
	promptChars := 0
	for _, content := range req.Contents {
		role := "user"
		if content.Role == "model" {
			role = "assistant"
		}
		var text strings.Builder
		for _, part := range content.Parts {
			text.WriteString(part.Text)
		}
		promptChars += text.Len()
		messages = append(messages, backend.Message{Role: role, Content: text.String()})
	}

	params := backend.Params{
		Temperature: req.GenerationConfig.Temperature,
		MaxTokens:   req.GenerationConfig.MaxOutputTokens,
	}
	if params.MaxTokens == 0 {
		params.MaxTokens = 2048
	}
	if params.Temperature == 0 {
		params.Temperature = 0.7
	}

	modelVersion := strings.TrimSuffix(c.Param("model"), ":generateContent")
	modelVersion = strings.TrimPrefix(modelVersion, "models/")

	result, errInvoke := h.backend.Invoke(c.Request.Context(), modelVersion, messages, params)
	if errInvoke != nil {
		log.WithError(errInvoke).Error("generate content failed")
		geminiError(c, http.StatusInternalServerError, "Internal server error", "INTERNAL")
		return
	}

	usage := result.Usage
	if usage == nil {
		usage = &shaper.Usage{PromptTokens: int(math.Ceil(float64(promptChars) / 4))}
	}
	c.JSON(http.StatusOK, h.shaper.Gemini(modelVersion, result.Text, usage))
}
