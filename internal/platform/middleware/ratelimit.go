package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/access"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

const (
	sweepInterval = time.Minute
	evictAfter    = 10 * time.Minute
)

// bucket is one caller's token bucket. Tokens refill continuously at the
// configured rate up to the burst size; seen doubles as the refill anchor
// and the idle marker for eviction.
type bucket struct {
	mu     sync.Mutex
	tokens float64
	seen   time.Time
}

// take consumes one token if available. When the bucket is empty it reports
// how long the caller must wait for the next token.
func (b *bucket) take(rate, burst float64, now time.Time) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = math.Min(burst, b.tokens+now.Sub(b.seen).Seconds()*rate)
	b.seen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if rate <= 0 {
		return false, time.Second
	}
	return false, time.Duration((1 - b.tokens) / rate * float64(time.Second))
}

func (b *bucket) lastSeen() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seen
}

// limiter keys buckets by caller. Buckets idle past evictAfter are dropped
// during a periodic sweep so the map does not grow with one-off clients.
type limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	cfg       RateLimitConfig
	nextSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	return &limiter{
		buckets:   make(map[string]*bucket),
		cfg:       cfg,
		nextSweep: time.Now().Add(sweepInterval),
	}
}

func (l *limiter) bucket(key string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen()) > evictAfter {
				delete(l.buckets, k)
			}
		}
		l.nextSweep = now.Add(sweepInterval)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.cfg.BurstSize), seen: now}
		l.buckets[key] = b
	}
	return b
}

// RateLimit throttles requests per caller. Authenticated callers get a
// per-account bucket, anonymous traffic shares a per-IP bucket.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	l := newLimiter(cfg)
	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if actor, ok := access.ActorFromContext(c.Request().Context()); ok && actor.Authenticated {
				key = actor.ID
			}

			now := time.Now()
			ok, wait := l.bucket(key, now).take(cfg.RequestsPerSecond, float64(cfg.BurstSize), now)

			c.Response().Header().Set("X-RateLimit-Limit", limitHeader)
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
