package models

import (
	"time"

	"gorm.io/datatypes"
)

// ChatMessage represents a persisted message in a product chat.
type ChatMessage struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ChatID string `gorm:"type:text;not null;index"` // Conversation ID.
	UserID string `gorm:"type:uuid;not null;index"` // Owning user ID.

	Role    string `gorm:"type:text;not null"` // Message role: user or assistant.
	Content string `gorm:"type:text;not null"` // Message text.

	Attachments    datatypes.JSON ``                 // Attachment descriptors, optional.
	MessageGroupID string         `gorm:"type:text"` // Client-side message group.
	Model          string         `gorm:"type:text"` // Model alias the message was produced with.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
}
