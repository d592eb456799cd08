// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/saramoussaya/barryland/internal/logging"
	"github.com/saramoussaya/barryland/internal/model"
)

// maxLimiterKeys bounds the in-process limiter map.
const maxLimiterKeys = 10000

// Limiter decides whether one more request for key may proceed. When it may
// not, retryAfter is how long the caller should wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	maxSize  int
}

func newLimiterCache[K comparable](rps float64, burst, maxSize int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		maxSize:  maxSize,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
// The map is reset when it grows past maxSize.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	if lc.maxSize > 0 && len(lc.limiters) >= lc.maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
	}
	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

func (lc *limiterCache[K]) size() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.limiters)
}

// LocalLimiter is a token bucket per key held in process memory.
type LocalLimiter struct {
	cache *limiterCache[string]
}

// NewLocalLimiter creates a limiter allowing rps requests per second per key
// with the given burst.
func NewLocalLimiter(rps float64, burst int) *LocalLimiter {
	return &LocalLimiter{cache: newLimiterCache[string](rps, burst, maxLimiterKeys)}
}

// Allow implements Limiter.
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	if l.cache.get(key).Allow() {
		return true, 0, nil
	}
	return false, l.interval(), nil
}

func (l *LocalLimiter) interval() time.Duration {
	if l.cache.rate <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / float64(l.cache.rate))
}

// RedisLimiter shares limits across instances through Redis (GCRA).
// Redis errors fall back to a local limiter with the same settings.
type RedisLimiter struct {
	limiter  *redis_rate.Limiter
	limit    redis_rate.Limit
	prefix   string
	fallback *LocalLimiter
	logger   *slog.Logger
}

// NewRedisLimiter creates a Redis-backed limiter. Keys are stored under prefix.
func NewRedisLimiter(client *redis.Client, prefix string, rps float64, burst int, logger *slog.Logger) *RedisLimiter {
	return &RedisLimiter{
		limiter:  redis_rate.NewLimiter(client),
		limit:    redisLimit(rps, burst),
		prefix:   prefix,
		fallback: NewLocalLimiter(rps, burst),
		logger:   logger,
	}
}

// redisLimit expresses a possibly fractional per-second rate as whole
// requests per period.
func redisLimit(rps float64, burst int) redis_rate.Limit {
	if burst < 1 {
		burst = 1
	}
	if rps >= 1 {
		return redis_rate.Limit{Rate: int(math.Round(rps)), Burst: burst, Period: time.Second}
	}
	if rps <= 0 {
		rps = 1
	}
	return redis_rate.Limit{
		Rate:   1,
		Burst:  burst,
		Period: time.Duration(float64(time.Second) / rps),
	}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := l.limiter.Allow(ctx, l.prefix+key, l.limit)
	if err != nil {
		l.logger.Warn("redis rate limiter unavailable, using local limiter",
			"error", err,
			logging.AttrCategory, model.EventCategoryCache)
		return l.fallback.Allow(ctx, key)
	}
	if res.Allowed > 0 {
		return true, 0, nil
	}
	return false, res.RetryAfter, nil
}

// KeyFunc derives the rate limit bucket for a request.
type KeyFunc func(*http.Request) string

// KeyByIP buckets requests by client address.
func KeyByIP(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

// KeyByActor buckets authenticated requests by user and the rest by address.
func KeyByActor(r *http.Request) string {
	if actor := GetActor(r); actor.UserID != 0 {
		return "user:" + strconv.FormatInt(actor.UserID, 10)
	}
	return KeyByIP(r)
}

// RateLimit creates middleware that rejects requests over the limit with 429.
// Limiter errors fail open.
func RateLimit(limiter Limiter, key KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			allowed, retryAfter, err := limiter.Allow(r.Context(), k)
			if err != nil {
				logger.Warn("rate limiter error, failing open", "error", err, "key", k)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				logger.Warn("rate limit exceeded",
					logging.AttrCategory, model.EventCategoryAuth,
					logging.AttrIP, ClientIP(r),
					logging.AttrRequestURL, r.URL.Path,
					"key", k)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
