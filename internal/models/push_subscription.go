package models

import "time"

// PushSubscription stores a browser web push subscription.
type PushSubscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID *string `gorm:"type:uuid;index"` // Owning user ID, nil for anonymous subscriptions.

	Endpoint string `gorm:"type:text;not null;uniqueIndex"` // Push service endpoint URL.
	P256dh   string `gorm:"type:text;not null"`             // Client public key.
	Auth     string `gorm:"type:text;not null"`             // Client auth secret.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
