package handlers

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/config"
	"github.com/visora-labs/visora-relay/internal/db"
	"github.com/visora-labs/visora-relay/internal/http/middleware"
	"github.com/visora-labs/visora-relay/internal/models"
	"github.com/visora-labs/visora-relay/internal/security"
)

const testUserID = "00000000-0000-0000-0000-000000000001"

var testJWT = config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB) {
	t.Helper()
	user := models.User{ID: testUserID, Email: "tester@example.com"}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func sessionToken(t *testing.T) string {
	t.Helper()
	token, err := security.IssueSessionToken(testJWT.Secret, testUserID, testJWT.Expiry)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func authedGroup(r *gin.Engine, conn *gorm.DB) *gin.RouterGroup {
	group := r.Group("/api")
	group.Use(middleware.SessionAuth(conn, testJWT))
	return group
}
