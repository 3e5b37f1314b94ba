package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/visora-labs/visora-relay/internal/models"
)

func TestKeygenMintsAnonymousUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn := openTestDB(t)
	r := gin.New()
	handler := NewKeygenHandler(conn)
	r.POST("/api/v1/keys/generate", handler.Generate)

	w := doJSON(r, http.MethodPost, "/api/v1/keys/generate", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		APIKey  string `json:"apiKey"`
		UserID  string `json:"userId"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(resp.APIKey, "vsk_") {
		t.Fatalf("unexpected key format %q", resp.APIKey)
	}
	if resp.Message != "This key is temporary and for SDK use only." {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	var user models.User
	if err := conn.First(&user, "id = ?", resp.UserID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !user.Anonymous {
		t.Fatalf("minted user should be anonymous")
	}
	if !strings.HasPrefix(user.Email, "sdk-") || !strings.HasSuffix(user.Email, "@visora.anonymous") {
		t.Fatalf("unexpected synthetic email %q", user.Email)
	}

	var key models.APIKey
	if err := conn.First(&key, "user_id = ?", resp.UserID).Error; err != nil {
		t.Fatalf("load key: %v", err)
	}
	if key.Name != "SDK Random Key" || key.Key != resp.APIKey {
		t.Fatalf("unexpected key row %+v", key)
	}
}
