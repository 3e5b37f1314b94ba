package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/visora-labs/visora-relay/internal/imagegen"
	"github.com/visora-labs/visora-relay/internal/models"
)

func TestImageGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := openTestDB(t)
	row := models.GeneratedImage{ID: "abc123", Prompt: "kucing oranye", Data: []byte{0xff, 0xd8, 0xff}, ContentType: "image/jpeg"}
	if err := conn.Create(&row).Error; err != nil {
		t.Fatalf("seed image: %v", err)
	}

	r := gin.New()
	handler := NewImageHandler(imagegen.NewGenerator(conn, nil))
	r.GET("/api/images/:id", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/images/abc123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "image/jpeg" {
		t.Fatalf("unexpected content type %q", w.Header().Get("Content-Type"))
	}
	if w.Header().Get("Cache-Control") != "public, max-age=31536000, immutable" {
		t.Fatalf("unexpected cache control %q", w.Header().Get("Cache-Control"))
	}
	if w.Body.Len() != 3 {
		t.Fatalf("unexpected body length %d", w.Body.Len())
	}
}

func TestImageGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := openTestDB(t)

	r := gin.New()
	handler := NewImageHandler(imagegen.NewGenerator(conn, nil))
	r.GET("/api/images/:id", handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/images/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
