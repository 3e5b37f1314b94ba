package usagelog

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/db"
	"github.com/visora-labs/visora-relay/internal/models"
)

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

func TestRecordNow(t *testing.T) {
	conn := openTestDB(t)
	recorder := NewRecorder(conn)

	entry := Entry{KeyID: 7, UserID: "00000000-0000-0000-0000-000000000001", Model: "grok-4", TokensPrompt: 12, TokensCompletion: 34}
	if err := recorder.RecordNow(context.Background(), entry); err != nil {
		t.Fatalf("RecordNow failed: %v", err)
	}

	var row models.UsageLog
	if err := conn.First(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.KeyID != 7 || row.Model != "grok-4" || row.TokensPrompt != 12 || row.TokensCompletion != 34 {
		t.Fatalf("unexpected row %+v", row)
	}
	if row.CreatedAt.IsZero() {
		t.Fatalf("created_at should be set")
	}
}

func TestRecordNilRecorderIsSafe(t *testing.T) {
	var recorder *Recorder
	recorder.Record(Entry{})
	if err := recorder.RecordNow(context.Background(), Entry{}); err != nil {
		t.Fatalf("nil recorder should be a no-op, got %v", err)
	}
}
