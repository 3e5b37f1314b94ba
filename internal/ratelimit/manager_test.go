package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/visora-labs/visora-relay/internal/config"
)

func TestMemoryLimiterFixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(1000, 0)

	for i := 0; i < 3; i++ {
		result, err := limiter.Allow(context.Background(), "u:a", 3, now)
		if err != nil || !result.Allowed {
			t.Fatalf("request %d should be allowed: %+v %v", i, result, err)
		}
	}
	result, err := limiter.Allow(context.Background(), "u:a", 3, now)
	if err != nil || result.Allowed {
		t.Fatalf("fourth request in the window should be denied: %+v %v", result, err)
	}

	result, err = limiter.Allow(context.Background(), "u:a", 3, now.Add(time.Second))
	if err != nil || !result.Allowed {
		t.Fatalf("new window should reset the counter: %+v %v", result, err)
	}
}

func TestMemoryLimiterSeparateKeys(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(1000, 0)

	if result, _ := limiter.Allow(context.Background(), "u:a", 1, now); !result.Allowed {
		t.Fatalf("first key should be allowed")
	}
	if result, _ := limiter.Allow(context.Background(), "u:a", 1, now); result.Allowed {
		t.Fatalf("first key should now be limited")
	}
	if result, _ := limiter.Allow(context.Background(), "u:b", 1, now); !result.Allowed {
		t.Fatalf("second key should have its own counter")
	}
}

func TestManagerWithoutRedisUsesMemory(t *testing.T) {
	nowFn := func() time.Time { return time.Unix(1000, 0) }
	manager := NewManager(config.RateLimitConfig{Limit: 2}, nowFn, nil)

	for i := 0; i < 2; i++ {
		result, err := manager.Allow(context.Background(), "u:a", manager.Limit())
		if err != nil || !result.Allowed {
			t.Fatalf("request %d should be allowed: %+v %v", i, result, err)
		}
	}
	result, err := manager.Allow(context.Background(), "u:a", manager.Limit())
	if err != nil || result.Allowed {
		t.Fatalf("limit should be enforced: %+v %v", result, err)
	}
}

func TestManagerZeroLimitAllowsEverything(t *testing.T) {
	manager := NewManager(config.RateLimitConfig{}, nil, nil)
	for i := 0; i < 10; i++ {
		result, err := manager.Allow(context.Background(), "u:a", manager.Limit())
		if err != nil || !result.Allowed {
			t.Fatalf("zero limit should disable the check: %+v %v", result, err)
		}
	}
}

func TestMemoryLimiterRemainingAndReset(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(1000, 0)

	result, err := limiter.Allow(context.Background(), "u:a", 3, now)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if result.Remaining != 2 {
		t.Fatalf("expected 2 remaining, got %d", result.Remaining)
	}
	if !result.Reset.Equal(time.Unix(1001, 0)) {
		t.Fatalf("expected reset at the next second, got %v", result.Reset)
	}
}

func TestRedisLimiterWindowKey(t *testing.T) {
	withPrefix := NewRedisLimiter(nil, " relay ")
	if got := withPrefix.windowKey("u:a", 1000); got != "relay:u:a:1000" {
		t.Fatalf("unexpected key %q", got)
	}
	bare := NewRedisLimiter(nil, "")
	if got := bare.windowKey("u:a", 1000); got != "u:a:1000" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestRedisLimiterNilClientAllows(t *testing.T) {
	limiter := NewRedisLimiter(nil, "relay")
	result, err := limiter.Allow(context.Background(), "u:a", 1, time.Unix(1000, 0))
	if err != nil || !result.Allowed {
		t.Fatalf("nil client should disable the check: %+v %v", result, err)
	}
}

func TestKeyForUser(t *testing.T) {
	if got := KeyForUser("abc-123"); got != "u:abc-123" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := KeyForUser("  "); got != "" {
		t.Fatalf("blank user should produce an empty key, got %q", got)
	}
}
