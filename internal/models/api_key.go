package models

import "time"

// APIKey represents an access token issued to a user.
type APIKey struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID string `gorm:"type:uuid;not null;index"` // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID"`        // Owning user.

	Key  string `gorm:"type:text;not null;uniqueIndex"` // Opaque token, always prefixed vsk_.
	Name string `gorm:"type:text;not null"`             // Display name.

	LastUsedAt *time.Time `` // Last successful validation timestamp.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
