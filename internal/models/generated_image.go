package models

import "time"

// GeneratedImage stores the bytes of a generated image.
type GeneratedImage struct {
	ID string `gorm:"type:text;primaryKey"` // Short public image ID.

	Prompt      string `gorm:"type:text;not null"`                    // Generation prompt.
	ContentType string `gorm:"type:text;not null;default:image/jpeg"` // MIME type of the stored bytes.
	Data        []byte `gorm:"not null"`                              // Raw image bytes.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
