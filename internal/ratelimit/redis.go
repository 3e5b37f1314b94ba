package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window keys live two seconds so a key from the previous second expires
// on its own instead of needing a cleanup pass.
const redisWindowTTLSeconds = 2

// countAndExpire atomically bumps the per-second counter and arms its TTL
// on first use, so one round trip decides the request.
var countAndExpire = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisLimiter enforces per-key one-second fixed windows shared across
// relay instances through Redis.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter constructs a RedisLimiter writing keys under prefix.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: strings.TrimSpace(prefix)}
}

// Allow records one request for key and reports whether it fits within
// limit for the second containing now. A non-positive limit or empty key
// disables limiting; Redis errors are returned so the caller can fall
// back to the in-memory backend.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" || l == nil || l.client == nil {
		return Result{Allowed: true}, nil
	}
	sec := now.Unix()
	reset := time.Unix(sec+1, 0).UTC()

	raw, errRun := countAndExpire.Run(ctx, l.client, []string{l.windowKey(key, sec)}, redisWindowTTLSeconds).Result()
	if errRun != nil {
		return Result{}, errRun
	}
	var count int64
	switch n := raw.(type) {
	case int64:
		count = n
	case int:
		count = int64(n)
	case uint64:
		count = int64(n)
	default:
		return Result{}, fmt.Errorf("rate limit redis: unexpected script result %T", raw)
	}

	if count > int64(limit) {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, Reset: reset}, nil
}

func (l *RedisLimiter) windowKey(key string, sec int64) string {
	secStr := strconv.FormatInt(sec, 10)
	if l.prefix == "" {
		return key + ":" + secStr
	}
	return l.prefix + ":" + key + ":" + secStr
}
