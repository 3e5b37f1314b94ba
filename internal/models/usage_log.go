package models

import "time"

// UsageLog records a single billable API request. Rows are append-only.
type UsageLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	KeyID  uint64 `gorm:"not null;index"`           // API key used for the request.
	UserID string `gorm:"type:uuid;not null;index"` // Owning user ID.

	Model            string `gorm:"type:text;not null"` // Requested model alias, not the backend model.
	TokensPrompt     int    `gorm:"not null;default:0"` // Prompt token count.
	TokensCompletion int    `gorm:"not null;default:0"` // Completion token count.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
}
