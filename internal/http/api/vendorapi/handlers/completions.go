package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/backend"
	"github.com/visora-labs/visora-relay/internal/catalog"
	"github.com/visora-labs/visora-relay/internal/guard"
	"github.com/visora-labs/visora-relay/internal/http/middleware"
	"github.com/visora-labs/visora-relay/internal/persona"
	"github.com/visora-labs/visora-relay/internal/shaper"
	"github.com/visora-labs/visora-relay/internal/usagelog"
)

// Inference is the invoker surface the completion handlers need.
type Inference interface {
	Invoke(ctx context.Context, alias string, messages []backend.Message, params backend.Params) (backend.Result, error)
	InvokeStream(ctx context.Context, alias string, messages []backend.Message, params backend.Params) (backend.TextStream, error)
}

// ChatMessage is one turn of the completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionRequest is the completion request payload.
type completionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Thinking bool          `json:"thinking"`
}

// CompletionsHandler serves the vendor chat completion endpoint.
type CompletionsHandler struct {
	db       *gorm.DB
	backend  Inference
	shaper   *shaper.Shaper
	recorder *usagelog.Recorder
}

// NewCompletionsHandler constructs a CompletionsHandler.
func NewCompletionsHandler(db *gorm.DB, inference Inference, sh *shaper.Shaper, recorder *usagelog.Recorder) *CompletionsHandler {
	return &CompletionsHandler{db: db, backend: inference, shaper: sh, recorder: recorder}
}

func vendorError(c *gin.Context, status int, message, errType string) {
	c.JSON(status, gin.H{"error": gin.H{"message": message, "type": errType}})
}

// parseRequest builds the completion request from either the JSON body or,
// for GET, the query string. A lone content parameter becomes a single user
// message.
func parseRequest(c *gin.Context) completionRequest {
	var req completionRequest
	if c.Request.Method == http.MethodPost {
		_ = c.ShouldBindJSON(&req)
		return req
	}

	req.Model = c.Query("model")
	req.Stream = c.Query("stream") == "true"
	req.Thinking = c.Query("thinking") == "true"

	if raw := c.Query("messages"); raw != "" {
		parsed := gjson.Parse(raw)
		if parsed.IsArray() {
			parsed.ForEach(func(_, item gjson.Result) bool {
				req.Messages = append(req.Messages, ChatMessage{
					Role:    item.Get("role").String(),
					Content: item.Get("content").String(),
				})
				return true
			})
		}
	}
	if len(req.Messages) == 0 {
		if content := c.Query("content"); content != "" {
			req.Messages = []ChatMessage{{Role: "user", Content: content}}
		}
	}
	return req
}

// Completions handles POST and GET /v1/chat/completions.
func (h *CompletionsHandler) Completions(c *gin.Context) {
	req := parseRequest(c)

	if len(req.Messages) == 0 || strings.TrimSpace(req.Model) == "" {
		vendorError(c, http.StatusBadRequest, "Messages and model are required", "invalid_request_error")
		return
	}

	alias := strings.ToLower(req.Model)
	if !catalog.IsAllowed(alias) {
		vendorError(c, http.StatusNotFound, fmt.Sprintf("Model '%s' not found or not supported.", req.Model), "invalid_request_error")
		return
	}

	keyID := c.GetUint64(middleware.ContextAPIKeyID)
	userID := c.GetString(middleware.ContextUserID)

	lastMessage := req.Messages[len(req.Messages)-1].Content
	allText := joinContents(req.Messages)

	// Leak guard scans the full conversation. Matches never reach a backend
	// and never produce a usage row.
	if guard.Detect(allText) {
		c.JSON(http.StatusOK, h.shaper.Shape(alias, guard.Refusal(alias), nil))
		return
	}
	if answer, ok := guard.IdentityProbe(alias, lastMessage); ok {
		c.JSON(http.StatusOK, h.shaper.Shape(alias, answer, nil))
		return
	}

	messages := h.buildMessages(alias, req.Messages)

	if req.Stream {
		h.streamCompletion(c, alias, keyID, userID, messages)
		return
	}

	result, errInvoke := h.backend.Invoke(c.Request.Context(), alias, messages, backend.Params{})
	if errInvoke != nil {
		log.WithError(errInvoke).Error("completion failed")
		vendorError(c, http.StatusInternalServerError, "Internal server error", "server_error")
		return
	}

	entry := usagelog.Entry{KeyID: keyID, UserID: userID, Model: alias}
	if result.Usage != nil {
		entry.TokensPrompt = result.Usage.PromptTokens
		entry.TokensCompletion = result.Usage.CompletionTokens
	}
	h.recorder.Record(entry)

	text := shaper.EnsureThinkBlock(alias, req.Thinking, result.Text, lastMessage)
	c.JSON(http.StatusOK, h.shaper.Shape(alias, text, result.Usage))
}

// streamCompletion emits OpenAI-style SSE chunks. Usage is logged up front
// with zero token counts, streaming responses report no totals.
func (h *CompletionsHandler) streamCompletion(c *gin.Context, alias string, keyID uint64, userID string, messages []backend.Message) {
	h.recorder.Record(usagelog.Entry{KeyID: keyID, UserID: userID, Model: alias})

	stream, errStream := h.backend.InvokeStream(c.Request.Context(), alias, messages, backend.Params{})
	if errStream != nil {
		log.WithError(errStream).Error("completion stream failed")
		vendorError(c, http.StatusInternalServerError, "Internal server error", "server_error")
		return
	}
	defer func() { _ = stream.Close() }()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	chunkID := "chatcmpl-stream"
	created := time.Now().Unix()

	flusher, _ := c.Writer.(http.Flusher)
	for {
		delta, errRecv := stream.Recv()
		if errRecv == io.EOF {
			break
		}
		if errRecv != nil {
			log.WithError(errRecv).Warn("completion stream interrupted")
			break
		}
		if delta == "" {
			continue
		}
		chunk := gin.H{
			"id":      chunkID,
			"object":  "chat.completion.chunk",
			"created": created,
			"model":   alias,
			"choices": []gin.H{{
				"index":         0,
				"delta":         gin.H{"content": delta},
				"finish_reason": nil,
			}},
		}
		payload, _ := json.Marshal(chunk)
		if _, errWrite := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); errWrite != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	_, _ = fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	if flusher != nil {
		flusher.Flush()
	}
}

// buildMessages prepends the persona system prompt to the conversation.
func (h *CompletionsHandler) buildMessages(alias string, messages []ChatMessage) []backend.Message {
	displayName := alias
	if model, ok := catalog.Lookup(alias); ok {
		displayName = model.DisplayName
	}

	systemPrompt := fmt.Sprintf("%s\n\nKnowledge cutoff: 2026\nCurrent date: %s",
		persona.Resolve(alias, displayName, ""), time.Now().Format("Mon Jan 02 2006"))

	out := make([]backend.Message, 0, len(messages)+1)
	out = append(out, backend.Message{Role: "system", Content: systemPrompt})
	for _, m := range messages {
		out = append(out, backend.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func joinContents(messages []ChatMessage) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}
