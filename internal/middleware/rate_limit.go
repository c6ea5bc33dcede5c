package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/pageza/recipe-search/backend/internal/apperror"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether the client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter is a fixed-window limiter shared by every API instance
// using the same Redis.
type RedisLimiter struct {
	redis  redis.Cmdable
	config RateLimitConfig
	now    func() time.Time
}

// NewRedisLimiter creates a new rate limiter instance
func NewRedisLimiter(client redis.Cmdable, config RateLimitConfig) *RedisLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit:api"
	}
	return &RedisLimiter{
		redis:  client,
		config: config,
		now:    time.Now,
	}
}

// Allow counts the request against the current window.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.TxPipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incrCmd.Val())
	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: max(rl.config.Limit-count, 0),
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

// LocalLimiter keeps one token bucket per key in process memory. It is used
// when no Redis is configured; limits are then per instance.
type LocalLimiter struct {
	config  RateLimitConfig
	every   rate.Limit
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	now     func() time.Time
}

const localLimiterMaxKeys = 10000

// NewLocalLimiter refills Limit tokens per Window with a burst of Limit.
func NewLocalLimiter(config RateLimitConfig) *LocalLimiter {
	return &LocalLimiter{
		config:  config,
		every:   rate.Every(config.Window / time.Duration(config.Limit)),
		buckets: make(map[string]*rate.Limiter),
		now:     time.Now,
	}
}

// Allow takes a token from key's bucket.
func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= localLimiterMaxKeys {
			l.pruneLocked(now)
		}
		bucket = rate.NewLimiter(l.every, l.config.Limit)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	allowed := bucket.AllowN(now, 1)
	tokens := bucket.TokensAt(now)
	missing := float64(l.config.Limit) - tokens
	reset := now.Add(time.Duration(missing * float64(time.Second) / float64(l.every)))

	return Decision{
		Allowed:   allowed,
		Limit:     l.config.Limit,
		Remaining: int(math.Max(0, math.Floor(tokens))),
		Reset:     reset,
	}, nil
}

// pruneLocked drops buckets that have refilled completely; they hold no
// state a fresh bucket would not.
func (l *LocalLimiter) pruneLocked(now time.Time) {
	for key, bucket := range l.buckets {
		if bucket.TokensAt(now) >= float64(l.config.Limit) {
			delete(l.buckets, key)
		}
	}
}

// RateLimit enforces limiter per client IP. Limiter failures let the request
// through.
func RateLimit(limiter Limiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limit check failed", "error", err)
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

		if !decision.Allowed {
			rateLimitRejects.Inc()
			retryAfter := int(math.Ceil(time.Until(decision.Reset).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			_ = c.Error(apperror.New(apperror.RateLimitExceeded,
				fmt.Sprintf("rate limit of %d requests exceeded, retry in %d seconds", decision.Limit, retryAfter)))
			c.Abort()
			return
		}

		c.Next()
	}
}
