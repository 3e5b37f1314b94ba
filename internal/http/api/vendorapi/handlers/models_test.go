package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/shaper"
)

func newModelsRouter(t *testing.T, conn *gorm.DB, fb *fakeBackend) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewModelsHandler(conn, fb, testShaper())
	r.GET("/v1/models", handler.List)
	r.POST("/v1/models/:model", handler.GenerateContent)
	return r
}

func TestModelsList(t *testing.T) {
	conn := openTestDB(t)
	r := newModelsRouter(t, conn, &fakeBackend{})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Models) != 14 {
		t.Fatalf("expected 14 catalog entries, got %d", len(resp.Models))
	}
	if resp.Models[0].Name != "grok-4-heavy" {
		t.Fatalf("unexpected first entry %q", resp.Models[0].Name)
	}
}

func postGenerateContent(r *gin.Engine, path, apiKey, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateContentMissingKey(t *testing.T) {
	conn := openTestDB(t)
	seedKey(t, conn)
	r := newModelsRouter(t, conn, &fakeBackend{text: "hi"})

	w := postGenerateContent(r, "/v1/models/gemini-3-pro:generateContent", "", `{"contents":[{"role":"user","parts":[{"text":"hi"}]}]}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "UNAUTHENTICATED") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestGenerateContentMissingContents(t *testing.T) {
	conn := openTestDB(t)
	seedKey(t, conn)
	r := newModelsRouter(t, conn, &fakeBackend{text: "hi"})

	w := postGenerateContent(r, "/v1/models/gemini-3-pro:generateContent", testAPIKey, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INVALID_ARGUMENT") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestGenerateContentEnvelope(t *testing.T) {
	conn := openTestDB(t)
	seedKey(t, conn)
	fb := &fakeBackend{text: "jawaban", usage: &shaper.Usage{PromptTokens: 8, CompletionTokens: 4, TotalTokens: 12}}
	r := newModelsRouter(t, conn, fb)

	w := postGenerateContent(r, "/v1/models/gemini-3-pro:generateContent", testAPIKey,
		`{"contents":[{"role":"user","parts":[{"text":"halo"}]},{"role":"model","parts":[{"text":"hai"}]}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp shaper.GeminiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(resp.Candidates))
	}
	if resp.ModelVersion != "gemini-3-pro-preview" {
		t.Fatalf("unexpected model version %q", resp.ModelVersion)
	}
	if resp.Candidates[0].Content.Parts[0].Text != "jawaban" {
		t.Fatalf("answer text missing from candidate parts %+v", resp.Candidates[0].Content.Parts)
	}
	if resp.UsageMetadata.PromptTokenCount != 8 || resp.UsageMetadata.CandidatesTokenCount != 4 {
		t.Fatalf("unexpected usage %+v", resp.UsageMetadata)
	}
}
