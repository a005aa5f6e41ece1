package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(c *fiber.Ctx) string

// RateLimiter keeps one token bucket per key.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per key with the given burst.
// Buckets unused for ten minutes are dropped.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		idle:    10 * time.Minute,
		now:     time.Now,
	}
}

func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	for k, other := range l.buckets {
		if now.Sub(other.lastSeen) > l.idle {
			delete(l.buckets, k)
		}
	}
	return b.limiter.AllowN(now, 1)
}

// Handler answers 429 once the caller's bucket is empty. A zero per-minute
// rate disables limiting.
func (l *RateLimiter) Handler(key KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l.limit == 0 {
			return c.Next()
		}
		if !l.Allow(key(c)) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many requests, try again later"})
		}
		return c.Next()
	}
}

// SessionOrIP charges the session user, falling back to the client IP.
func SessionOrIP(c *fiber.Ctx) string {
	if id, ok := UserID(c); ok {
		return "user:" + id.String()
	}
	return "ip:" + c.IP()
}
