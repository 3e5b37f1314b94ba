package models

import "time"

// User represents an end-user account stored in the database.
type User struct {
	ID string `gorm:"type:uuid;primaryKey"` // Primary key.

	Email    string  `gorm:"type:text;not null;uniqueIndex"` // Email address, synthetic for anonymous users.
	Password *string `gorm:"type:text"`                      // Hashed password, nil for anonymous users.

	Anonymous    bool  `gorm:"not null;default:false"` // Whether the account was minted for SDK use.
	Premium      bool  `gorm:"not null;default:false"` // Premium flag.
	MessageCount int64 `gorm:"not null;default:0"`     // Total chat messages sent.

	APIKeys []APIKey `gorm:"foreignKey:UserID"` // Related API keys.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
