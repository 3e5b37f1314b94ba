// Package usagelog persists per-request usage rows. Recording is fire and
// forget: a failed insert is logged and never propagated to the request path.
package usagelog

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/models"
)

// Recorder appends usage rows for completed inference calls.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder constructs a Recorder backed by GORM.
func NewRecorder(db *gorm.DB) *Recorder { return &Recorder{db: db} }

// Entry describes one completed request.
type Entry struct {
	KeyID            uint64
	UserID           string
	Model            string
	TokensPrompt     int
	TokensCompletion int
}

// RecordNow inserts the usage row synchronously.
func (r *Recorder) RecordNow(ctx context.Context, entry Entry) error {
	if r == nil || r.db == nil {
		return nil
	}
	row := models.UsageLog{
		KeyID:            entry.KeyID,
		UserID:           entry.UserID,
		Model:            entry.Model,
		TokensPrompt:     entry.TokensPrompt,
		TokensCompletion: entry.TokensCompletion,
		CreatedAt:        time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// Record inserts the usage row on a background goroutine. The write uses a
// detached context so a finished request cannot cancel it.
func (r *Recorder) Record(entry Entry) {
	if r == nil || r.db == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.RecordNow(ctx, entry); err != nil {
			log.WithError(err).Warn("failed to record usage log")
		}
	}()
}
