package ratelimit

import "strings"

// KeyForUser builds the limiter key for a user. An empty user ID disables the
// check.
func KeyForUser(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ""
	}
	return "u:" + userID
}
