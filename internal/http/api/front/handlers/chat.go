package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/backend"
	"github.com/visora-labs/visora-relay/internal/guard"
	"github.com/visora-labs/visora-relay/internal/http/middleware"
	"github.com/visora-labs/visora-relay/internal/imagegen"
	"github.com/visora-labs/visora-relay/internal/intent"
	"github.com/visora-labs/visora-relay/internal/models"
	"github.com/visora-labs/visora-relay/internal/persona"
	"github.com/visora-labs/visora-relay/internal/search"
)

// Inference is the invoker surface the chat handler needs.
type Inference interface {
	InvokeStream(ctx context.Context, alias string, messages []backend.Message, params backend.Params) (backend.TextStream, error)
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// optimizeModel rewrites user queries into search queries.
const optimizeModel = "llama-3-8b-8192"

// imageConfirmInstruction forces a short Indonesian confirmation after the
// image pipeline has already been triggered.
const imageConfirmInstruction = "\n\nCRITICAL: The user has requested to generate an image. I have already triggered the image generation tool. DO NOT say you cannot generate images. Respond ONLY with a very short and friendly confirmation in Indonesian (max 15 words) like 'Tentu, ini gambar [deskripsi] yang kamu minta:'."

// dayNamesID holds Indonesian weekday names indexed by time.Weekday.
var dayNamesID = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// monthNamesID holds Indonesian month names indexed by time.Month.
var monthNamesID = [...]string{
	"", "Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// ChatHandler serves the streaming product chat endpoint.
type ChatHandler struct {
	db        *gorm.DB
	backend   Inference
	search    *search.Client
	generator *imagegen.Generator
	nowFn     func() time.Time
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(db *gorm.DB, inference Inference, searchClient *search.Client, generator *imagegen.Generator) *ChatHandler {
	return &ChatHandler{db: db, backend: inference, search: searchClient, generator: generator, nowFn: time.Now}
}

// chatTurn is one turn of the product chat request.
type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the product chat request payload.
type chatRequest struct {
	Messages       []chatTurn      `json:"messages"`
	ChatID         string          `json:"chatId"`
	Model          string          `json:"model"`
	SystemPrompt   string          `json:"systemPrompt"`
	EnableSearch   bool            `json:"enableSearch"`
	MessageGroupID string          `json:"message_group_id"`
	Attachments    json.RawMessage `json:"attachments"`
}

// indonesianDate formats a timestamp like "Senin, 5 Januari 2026".
func indonesianDate(t time.Time) string {
	return fmt.Sprintf("%s, %d %s %d", dayNamesID[t.Weekday()], t.Day(), monthNamesID[t.Month()], t.Year())
}

var locationPattern = regexp.MustCompile(`(?i)(?:\bin|\bat|\bdi|\bke|\buntuk)\s+([a-zA-Z][a-zA-Z ]*)`)

// locationStopwords are temporal phrases that look like locations but are not.
var locationStopwords = map[string]struct{}{
	"hari ini": {}, "sekarang": {}, "besok": {}, "sini": {}, "sana": {},
}

// extractLocation pulls a coarse location hint out of the query for the
// Meta AI mirror prompt. Falls back to Indonesia.
func extractLocation(query string) string {
	match := locationPattern.FindStringSubmatch(query)
	if len(match) < 2 {
		return "Indonesia"
	}
	candidate := strings.TrimSpace(match[1])
	if idx := strings.IndexAny(candidate, ".?!,"); idx >= 0 {
		candidate = strings.TrimSpace(candidate[:idx])
	}
	lower := strings.ToLower(candidate)
	if _, skip := locationStopwords[lower]; skip || len(candidate) <= 2 {
		return "Indonesia"
	}
	words := strings.Fields(candidate)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// writeEvent writes one SSE data event and flushes.
func writeEvent(c *gin.Context, flusher http.Flusher, payload any) {
	data, errMarshal := json.Marshal(payload)
	if errMarshal != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	flusher.Flush()
}

// Chat handles POST /api/chat: a server-sent event stream of text deltas with
// optional search and image generation side channels.
func (h *ChatHandler) Chat(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req chatRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil || len(req.Messages) == 0 || strings.TrimSpace(req.ChatID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Messages and chatId are required"})
		return
	}

	originalQuery := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			originalQuery = req.Messages[i].Content
			break
		}
	}
	if strings.TrimSpace(originalQuery) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Messages and chatId are required"})
		return
	}

	ctx := c.Request.Context()
	now := h.nowFn()

	h.persistMessage(ctx, req, userID, "user", originalQuery)
	if errCount := h.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("message_count", gorm.Expr("message_count + 1")).Error; errCount != nil {
		log.WithError(errCount).Warn("message count update failed")
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	// Leak probes never reach the backend.
	joined := make([]string, 0, len(req.Messages))
	for _, turn := range req.Messages {
		joined = append(joined, turn.Content)
	}
	if guard.Detect(strings.Join(joined, "\n")) {
		refusal := guard.StreamRefusal(req.Model)
		writeEvent(c, flusher, gin.H{"type": "text", "text": refusal})
		fmt.Fprint(c.Writer, "data: [DONE]\n\n")
		flusher.Flush()
		h.persistMessage(ctx, req, userID, "assistant", refusal)
		return
	}

	systemPrompt := h.buildSystemPrompt(req, originalQuery, now)
	enrichedQuery := originalQuery

	if req.EnableSearch && h.search != nil {
		enrichedQuery = h.enrichWithSearch(ctx, c, flusher, originalQuery)
	}

	if intent.Classify(originalQuery) == intent.IntentImageGeneration && h.generator != nil {
		if instruction, handled := h.generateImage(ctx, c, flusher, originalQuery); handled {
			systemPrompt += instruction
		}
	}

	msgs := make([]backend.Message, 0, len(req.Messages)+1)
	msgs = append(msgs, backend.Message{Role: "system", Content: systemPrompt})
	lastUserIdx := -1
	for i, turn := range req.Messages {
		if turn.Role == "user" {
			lastUserIdx = i
		}
	}
	for i, turn := range req.Messages {
		content := turn.Content
		if i == lastUserIdx {
			content = enrichedQuery
		}
		msgs = append(msgs, backend.Message{Role: turn.Role, Content: content})
	}

	stream, errInvoke := h.backend.InvokeStream(ctx, req.Model, msgs, backend.Params{})
	if errInvoke != nil {
		log.WithError(errInvoke).Error("chat stream start failed")
		writeEvent(c, flusher, gin.H{"type": "error", "error": "Internal server error"})
		fmt.Fprint(c.Writer, "data: [DONE]\n\n")
		flusher.Flush()
		return
	}
	defer stream.Close()

	var full strings.Builder
	for {
		chunk, errRecv := stream.Recv()
		if errRecv == io.EOF {
			break
		}
		if errRecv != nil {
			log.WithError(errRecv).Warn("chat stream interrupted")
			break
		}
		if chunk == "" {
			continue
		}
		filtered := backend.FilterBrand(chunk)
		full.WriteString(filtered)
		writeEvent(c, flusher, gin.H{"type": "text", "text": filtered})
	}

	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	flusher.Flush()

	if full.Len() > 0 {
		h.persistMessage(ctx, req, userID, "assistant", full.String())
	}
}

// buildSystemPrompt resolves the persona and appends the time context and
// any caller-supplied instructions.
func (h *ChatHandler) buildSystemPrompt(req chatRequest, originalQuery string, now time.Time) string {
	if persona.IsMetaAlias(req.Model) {
		return persona.MetaMirrorPrompt(now.Format("Monday, January 2, 2006"), extractLocation(originalQuery))
	}

	prompt := persona.Resolve(req.Model, "", "") +
		"\n\nInformasi waktu saat ini: Hari ini adalah " + indonesianDate(now) +
		". Gunakan informasi ini jika pengguna bertanya tentang tanggal atau hari."
	if custom := strings.TrimSpace(req.SystemPrompt); custom != "" {
		prompt += "\n\n" + custom
	}
	return prompt
}

// enrichWithSearch runs the web search pipeline and returns the user query
// with search context appended. Failures fall back to the original query.
func (h *ChatHandler) enrichWithSearch(ctx context.Context, c *gin.Context, flusher http.Flusher, originalQuery string) string {
	searchQuery := originalQuery
	optimizePrompt := "Ubah pertanyaan berikut menjadi query pencarian Google yang singkat dan efektif. Jawab HANYA dengan query-nya, tanpa penjelasan.\n\nPertanyaan: " + originalQuery
	if optimized, errOptimize := h.backend.Generate(ctx, optimizeModel, optimizePrompt); errOptimize == nil {
		if trimmed := strings.TrimSpace(strings.Trim(optimized, `"`)); trimmed != "" {
			searchQuery = trimmed
		}
	} else {
		log.WithError(errOptimize).Warn("search query optimization failed")
	}

	writeEvent(c, flusher, gin.H{"type": "search", "query": searchQuery})
	resp := h.search.Google(ctx, searchQuery)
	writeEvent(c, flusher, gin.H{"type": "search_results", "results": resp.Results})
	writeEvent(c, flusher, gin.H{"type": "search_complete"})

	if len(resp.Results) == 0 {
		return originalQuery
	}

	var contextBlock strings.Builder
	for i, result := range resp.Results {
		fmt.Fprintf(&contextBlock, "[%d] %s\nSource: %s\nSnippet: %s\n\n", i+1, result.Title, result.Link, result.Snippet)
	}
	return originalQuery +
		"\n\nHasil pencarian web:\n" + contextBlock.String() +
		"Gunakan hasil pencarian di atas untuk menjawab dan sertakan sitasi bernomor seperti [1] yang merujuk ke sumbernya."
}

// generateImage runs the image pipeline and returns the system prompt
// instruction to append. handled is false when the pipeline failed before
// the image was stored.
func (h *ChatHandler) generateImage(ctx context.Context, c *gin.Context, flusher http.Flusher, prompt string) (string, bool) {
	imageID, errID := imagegen.NewImageID()
	if errID != nil {
		log.WithError(errID).Warn("image id generation failed")
		return "", false
	}
	writeEvent(c, flusher, gin.H{"type": "image_generation", "imageId": imageID, "prompt": prompt})
	if errGenerate := h.generator.Generate(ctx, prompt, imageID); errGenerate != nil {
		log.WithError(errGenerate).Warn("image generation failed")
		writeEvent(c, flusher, gin.H{"type": "image_generation_failed", "imageId": imageID})
		return "", false
	}
	writeEvent(c, flusher, gin.H{"type": "image_generation_complete", "imageId": imageID, "url": "/api/images/" + imageID})
	return imageConfirmInstruction, true
}

// persistMessage stores one chat turn. Persistence failures are logged and
// never interrupt the stream.
func (h *ChatHandler) persistMessage(ctx context.Context, req chatRequest, userID, role, content string) {
	row := models.ChatMessage{
		ChatID:         req.ChatID,
		UserID:         userID,
		Role:           role,
		Content:        content,
		MessageGroupID: req.MessageGroupID,
		Model:          req.Model,
	}
	if role == "user" && len(req.Attachments) > 0 {
		row.Attachments = datatypes.JSON(req.Attachments)
	}
	if errCreate := h.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		log.WithError(errCreate).Warn("chat message persistence failed")
	}
}
