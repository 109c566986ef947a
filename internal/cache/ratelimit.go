package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitIPPrefix = "ratelimit:ip:"

// RateLimitResult is the outcome of one token-bucket check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// tokenBucketScript refills and takes one token atomically.
// Times are milliseconds; the bucket expires once it would be full again.
//
// KEYS[1] bucket key
// ARGV    rate (tokens/s), burst, now (ms)
// Returns {allowed, retry_after_ms, remaining}.
var tokenBucketScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(bucket[1]) or burst
local ts = tonumber(bucket[2]) or now

tokens = math.min(burst, tokens + math.max(0, now - ts) * rate / 1000)

local allowed = 0
local wait = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	wait = math.ceil((1 - tokens) * 1000 / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', KEYS[1], math.ceil(burst * 1000 / rate) + 1000)

return {allowed, wait, math.floor(tokens)}
`)

// CheckIPRateLimit takes a token from the bucket of ip within scope.
// IPs are hashed before they reach Redis. Redis failures fail open.
func (c *Cache) CheckIPRateLimit(ctx context.Context, scope, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	open := &RateLimitResult{Allowed: true, Remaining: int64(burst)}
	if ratePerSecond <= 0 || burst <= 0 {
		return open, nil
	}

	key := c.key(rateLimitIPPrefix, scope, ":", hashIP(ip))
	res, err := tokenBucketScript.Run(ctx, c.client, []string{key},
		ratePerSecond, burst, time.Now().UnixMilli(),
	).Int64Slice()
	if err != nil || len(res) != 3 {
		return open, nil //nolint:nilerr
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
		Remaining:  res[2],
	}, nil
}

// hashIP returns the first 8 bytes of the SHA-256 of ip, hex encoded.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
