package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/visora-labs/visora-relay/internal/tts"
)

// Synthesizer is the speech synthesis surface the TTS handler needs.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// TTSHandler serves text-to-speech synthesis.
type TTSHandler struct {
	client Synthesizer
}

// NewTTSHandler constructs a TTSHandler.
func NewTTSHandler(client Synthesizer) *TTSHandler {
	return &TTSHandler{client: client}
}

// Synthesize handles POST /api/tts, returning MPEG audio bytes.
func (h *TTSHandler) Synthesize(c *gin.Context) {
	var body struct {
		Text    string `json:"text"`
		VoiceID string `json:"voiceId"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil || strings.TrimSpace(body.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required"})
		return
	}

	audio, errSynthesize := h.client.Synthesize(c.Request.Context(), body.Text, body.VoiceID)
	if errSynthesize != nil {
		var upstream *tts.UpstreamError
		switch {
		case errors.Is(errSynthesize, tts.ErrKeysExhausted):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "All TTS API keys exhausted"})
		case errors.Is(errSynthesize, tts.ErrNoKeys):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "TTS is not configured"})
		case errors.As(errSynthesize, &upstream):
			c.Data(upstream.Status, "application/json", []byte(upstream.Body))
		default:
			log.WithError(errSynthesize).Error("tts synthesis failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "TTS synthesis failed"})
		}
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", audio)
}
