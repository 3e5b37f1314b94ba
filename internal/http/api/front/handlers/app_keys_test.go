package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/models"
)

func newAppKeyRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn := openTestDB(t)
	seedUser(t, conn)
	r := gin.New()
	handler := NewAppKeyHandler(conn)
	group := authedGroup(r, conn)
	group.GET("/app-keys", handler.List)
	group.POST("/app-keys", handler.Create)
	group.DELETE("/app-keys", handler.Delete)
	return r, conn
}

func TestAppKeysRequireSession(t *testing.T) {
	r, _ := newAppKeyRouter(t)
	w := doJSON(r, http.MethodGet, "/api/app-keys", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAppKeyCreateDefaultName(t *testing.T) {
	r, conn := newAppKeyRouter(t)
	token := sessionToken(t)

	w := doJSON(r, http.MethodPost, "/api/app-keys", token, `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Name string `json:"name"`
		Key  string `json:"key"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Name != "Default Key" {
		t.Fatalf("expected default name, got %q", resp.Name)
	}
	if !strings.HasPrefix(resp.Key, "vsk_") {
		t.Fatalf("unexpected key format %q", resp.Key)
	}

	var row models.APIKey
	if err := conn.First(&row, "user_id = ?", testUserID).Error; err != nil {
		t.Fatalf("load key: %v", err)
	}
	if row.Key != resp.Key {
		t.Fatalf("stored key mismatch")
	}
}

func TestAppKeyListAndDelete(t *testing.T) {
	r, conn := newAppKeyRouter(t)
	token := sessionToken(t)

	doJSON(r, http.MethodPost, "/api/app-keys", token, `{"name":"First"}`)
	doJSON(r, http.MethodPost, "/api/app-keys", token, `{"name":"Second"}`)

	w := doJSON(r, http.MethodGet, "/api/app-keys", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var listed []struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(listed))
	}

	w = doJSON(r, http.MethodDelete, "/api/app-keys", token, fmt.Sprintf(`{"id":%d}`, listed[0].ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	conn.Model(&models.APIKey{}).Where("user_id = ?", testUserID).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 remaining key, got %d", count)
	}
}

func TestAppKeyDeleteScopedToUser(t *testing.T) {
	r, conn := newAppKeyRouter(t)
	token := sessionToken(t)

	other := models.User{ID: "00000000-0000-0000-0000-000000000002", Email: "other@example.com"}
	if err := conn.Create(&other).Error; err != nil {
		t.Fatalf("seed other user: %v", err)
	}
	foreign := models.APIKey{UserID: other.ID, Key: "vsk_foreign000000000000000000", Name: "Foreign"}
	if err := conn.Create(&foreign).Error; err != nil {
		t.Fatalf("seed foreign key: %v", err)
	}

	w := doJSON(r, http.MethodDelete, "/api/app-keys", token, fmt.Sprintf(`{"id":%d}`, foreign.ID))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign key, got %d", w.Code)
	}
}

func TestAppKeyDeleteMissingID(t *testing.T) {
	r, _ := newAppKeyRouter(t)
	token := sessionToken(t)

	w := doJSON(r, http.MethodDelete, "/api/app-keys", token, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ID is required") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}
