package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/creatorhub/creatorhub-api/internal/pkg/logger"
)

// incrWindow increments the counter and (re)arms its TTL whenever the key has none,
// so a counter can never outlive its window.
var incrWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// RateLimiter is a Redis fixed-window counter keyed by scope and user
type RateLimiter struct {
	redis  *redis.Client
	scope  string
	limit  int
	window time.Duration
}

// NewRateLimiter creates a limiter allowing limit calls per window
func NewRateLimiter(client *redis.Client, scope string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{redis: client, scope: scope, limit: limit, window: window}
}

// Allow reports whether userID may perform one more call in the current window.
// It fails open when Redis is not configured or unavailable.
func (rl *RateLimiter) Allow(ctx context.Context, userID int64) bool {
	if rl == nil || rl.redis == nil || rl.limit <= 0 || rl.window <= 0 {
		return true
	}

	key := fmt.Sprintf("ratelimit:%s:%d", rl.scope, userID)

	count, err := incrWindow.Run(ctx, rl.redis, []string{key}, rl.window.Milliseconds()).Int64()
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("scope", rl.scope).Msg("Rate limiter unavailable, allowing request")
		return true
	}

	return count <= int64(rl.limit)
}
