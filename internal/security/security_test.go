package security

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}
	if !strings.HasPrefix(key, "vsk_") {
		t.Fatalf("key missing prefix: %q", key)
	}
	if len(key) != len("vsk_")+24 {
		t.Fatalf("unexpected key length %d", len(key))
	}

	other, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}
	if key == other {
		t.Fatalf("keys should not repeat")
	}
}

func TestAnonymousEmail(t *testing.T) {
	email, err := AnonymousEmail()
	if err != nil {
		t.Fatalf("AnonymousEmail failed: %v", err)
	}
	if !strings.HasPrefix(email, "sdk-") || !strings.HasSuffix(email, "@visora.anonymous") {
		t.Fatalf("unexpected email %q", email)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hashed, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hashed == "hunter2" {
		t.Fatalf("password stored in plaintext")
	}
	if !CheckPassword(hashed, "hunter2") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hashed, "wrong") {
		t.Fatalf("wrong password accepted")
	}
}

func TestSessionToken(t *testing.T) {
	token, err := IssueSessionToken("secret", "user-1", time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken failed: %v", err)
	}

	claims, err := ParseSessionToken("secret", token)
	if err != nil {
		t.Fatalf("ParseSessionToken failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("unexpected user id %q", claims.UserID)
	}

	if _, err := ParseSessionToken("other-secret", token); err == nil {
		t.Fatalf("wrong secret should be rejected")
	}
	if _, err := ParseSessionToken("secret", "not-a-token"); err == nil {
		t.Fatalf("garbage token should be rejected")
	}
}

func TestSessionTokenExpiry(t *testing.T) {
	token, err := IssueSessionToken("secret", "user-1", -time.Minute)
	if err != nil {
		t.Fatalf("IssueSessionToken failed: %v", err)
	}
	if _, err := ParseSessionToken("secret", token); err == nil {
		t.Fatalf("expired token should be rejected")
	}
}
