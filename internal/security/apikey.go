// Package security holds credential primitives: API key generation, password
// hashing, and session token issuance.
package security

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	apiKeyPrefix      = "vsk_"
	apiKeyEntropy     = 24
	anonymousIDLength = 10
)

// GenerateAPIKey mints a new API key string.
func GenerateAPIKey() (string, error) {
	id, errGen := gonanoid.New(apiKeyEntropy)
	if errGen != nil {
		return "", fmt.Errorf("security: generate api key: %w", errGen)
	}
	return apiKeyPrefix + id, nil
}

// AnonymousEmail mints a synthetic email address for an anonymous SDK user.
func AnonymousEmail() (string, error) {
	id, errGen := gonanoid.New(anonymousIDLength)
	if errGen != nil {
		return "", fmt.Errorf("security: generate anonymous email: %w", errGen)
	}
	return fmt.Sprintf("sdk-%s@visora.anonymous", id), nil
}
