package ratelimit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/greenbot-eco/greenbot/internal/config"
)

const keyPrefix = "greenbot:rl:"

// Decision is the outcome of counting one request against a bucket.
// Limit is zero when rate limiting is disabled.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Window     time.Duration
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter keeps one sliding window per route and client in Redis sorted
// sets, so every proxy replica sharing a Redis shares the buckets.
type Limiter struct {
	rdb *redis.Client
	cfg func() config.RateLimitConfig
}

// NewLimiter reads limits from cfg on every call. A nil rdb lets every
// request through.
func NewLimiter(rdb *redis.Client, cfg func() config.RateLimitConfig) *Limiter {
	return &Limiter{rdb: rdb, cfg: cfg}
}

func bucketKey(route, client string) string {
	return keyPrefix + route + ":" + client
}

// KEYS[1] = bucket
// ARGV[1] = window start (unix micro)
// ARGV[2] = now (unix micro)
// ARGV[3] = limit
// ARGV[4] = key TTL in seconds
// ARGV[5] = member id for this request
// Returns {count, allowed, oldest score}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[1])
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
    redis.call('ZADD', key, now, ARGV[5])
    count = count + 1
    allowed = 1
end
redis.call('EXPIRE', key, ARGV[4])

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local first = now
if oldest[2] then
    first = tonumber(oldest[2])
end
return {count, allowed, first}
`)

// Allow counts one request from client on route. When Redis fails the
// request is allowed and the error is returned for logging.
func (l *Limiter) Allow(ctx context.Context, route, client string) (Decision, error) {
	rl := l.cfg()
	if !rl.Enabled {
		return Decision{Allowed: true}, nil
	}

	now := time.Now()
	d := Decision{
		Allowed:   true,
		Limit:     rl.RequestsPerWindow,
		Remaining: rl.RequestsPerWindow - 1,
		Window:    rl.Window,
		ResetAt:   now.Add(rl.Window),
	}
	if l.rdb == nil {
		return d, nil
	}

	ttl := int64(rl.Window/time.Second) + 1
	res, err := slidingWindowScript.Run(ctx, l.rdb, []string{bucketKey(route, client)},
		now.Add(-rl.Window).UnixMicro(), now.UnixMicro(), rl.RequestsPerWindow, ttl, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		d.Remaining = rl.RequestsPerWindow
		return d, err
	}

	count, allowed, oldest := res[0], res[1] == 1, res[2]
	d.Allowed = allowed
	d.Remaining = max(rl.RequestsPerWindow-int(count), 0)
	d.ResetAt = time.UnixMicro(oldest).Add(rl.Window)
	if !allowed {
		d.RetryAfter = max(d.ResetAt.Sub(now), 0)
	}
	return d, nil
}
