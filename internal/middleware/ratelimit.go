package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/cache"
)

// RateDecision is the outcome of one rate limit check.
type RateDecision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter decides whether a client may make another request in a scope.
type Limiter interface {
	Allow(ctx context.Context, scope, clientIP string) (RateDecision, error)
}

// RedisLimiter shares token buckets across instances through Redis.
type RedisLimiter struct {
	cache *cache.Cache
	rps   int
	burst int
}

// NewRedisLimiter creates a RedisLimiter.
func NewRedisLimiter(c *cache.Cache, rps, burst int) *RedisLimiter {
	return &RedisLimiter{cache: c, rps: rps, burst: burst}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, scope, clientIP string) (RateDecision, error) {
	res, err := l.cache.CheckIPRateLimit(ctx, scope, clientIP, l.rps, l.burst)
	if err != nil {
		return RateDecision{}, err
	}
	return RateDecision{Allowed: res.Allowed, Remaining: res.Remaining, RetryAfter: res.RetryAfter}, nil
}

// LocalLimiter keeps token buckets in process memory. Used when Redis
// is not configured; limits then apply per instance.
type LocalLimiter struct {
	rate  rate.Limit
	burst int
	idle  time.Duration

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLocalLimiter creates a LocalLimiter and starts its cleanup loop.
// Buckets idle for longer than twice cleanupInterval are dropped.
func NewLocalLimiter(rps, burst int, cleanupInterval time.Duration) *LocalLimiter {
	l := &LocalLimiter{
		rate:     rate.Limit(rps),
		burst:    burst,
		idle:     2 * cleanupInterval,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop(cleanupInterval)
	return l
}

// Allow implements Limiter.
func (l *LocalLimiter) Allow(_ context.Context, scope, clientIP string) (RateDecision, error) {
	key := scope + ":" + clientIP
	now := time.Now()

	l.mu.Lock()
	cl, ok := l.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = cl
	}
	cl.lastAccess = now
	l.mu.Unlock()

	if cl.limiter.AllowN(now, 1) {
		return RateDecision{Allowed: true, Remaining: int64(cl.limiter.TokensAt(now))}, nil
	}

	retry := time.Duration(math.Ceil(1/float64(l.rate))) * time.Second
	if retry < time.Second {
		retry = time.Second
	}
	return RateDecision{Allowed: false, RetryAfter: retry}, nil
}

// Len returns the number of tracked buckets.
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (l *LocalLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *LocalLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			l.cleanup(now)
		case <-l.stopCh:
			return
		}
	}
}

func (l *LocalLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, cl := range l.limiters {
		if now.Sub(cl.lastAccess) > l.idle {
			delete(l.limiters, key)
		}
	}
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter Limiter
	Enabled bool
	// Scope separates the buckets of independent route groups.
	Scope string
}

// RateLimitIP returns middleware that rate limits requests per client IP.
// Limiter errors fail open.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || cfg.Limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			decision, err := cfg.Limiter.Allow(r.Context(), cfg.Scope, ip)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("scope", cfg.Scope),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("scope", cfg.Scope),
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int("retry_after_seconds", retryAfter),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeError(w, http.StatusTooManyRequests, CodeRateLimited,
					"Rate limit exceeded. Retry after "+strconv.Itoa(retryAfter)+" seconds.")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers for proxied requests.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
