package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"orghierarchy-backend/shared/config"
)

// RateLimit is the window state of one caller.
type RateLimit struct {
	Count      int
	ResetAt    time.Time
	LastAccess time.Time
	Blocked    bool
	BlockUntil time.Time
}

// RateLimiter throttles hierarchy writes per caller.
type RateLimiter struct {
	store map[string]*RateLimit
	mutex sync.Mutex
	now   func() time.Time
}

type RateLimitConfig struct {
	MaxRequests   int
	TimeWindow    time.Duration
	BlockDuration time.Duration
}

// NewRateLimitConfig reads the limits from configuration.
func NewRateLimitConfig(cfg *config.Config) RateLimitConfig {
	return RateLimitConfig{
		MaxRequests:   cfg.GetRateLimitMaxRequests(),
		TimeWindow:    time.Duration(cfg.GetRateLimitTimeWindowSeconds()) * time.Second,
		BlockDuration: time.Duration(cfg.GetRateLimitBlockDurationMinutes()) * time.Minute,
	}
}

// NewRateLimiter starts a sweeper that drops idle callers every cleanupEvery
// until ctx is done.
func NewRateLimiter(ctx context.Context, cleanupEvery time.Duration) *RateLimiter {
	limiter := &RateLimiter{
		store: make(map[string]*RateLimit),
		now:   time.Now,
	}
	go limiter.cleanup(ctx, cleanupEvery)
	return limiter
}

func (rl *RateLimiter) cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mutex.Lock()
			now := rl.now()
			for key, limit := range rl.store {
				if now.Sub(limit.LastAccess) > 24*time.Hour {
					delete(rl.store, key)
				}
			}
			rl.mutex.Unlock()
		}
	}
}

func (rl *RateLimiter) isAllowed(key string, cfg RateLimitConfig) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	limit, exists := rl.store[key]
	if !exists {
		rl.store[key] = &RateLimit{Count: 1, ResetAt: now.Add(cfg.TimeWindow), LastAccess: now}
		return true
	}
	limit.LastAccess = now

	if limit.Blocked {
		if now.Before(limit.BlockUntil) {
			return false
		}
		limit.Blocked = false
		limit.Count = 1
		limit.ResetAt = now.Add(cfg.TimeWindow)
		return true
	}

	if now.After(limit.ResetAt) {
		limit.Count = 1
		limit.ResetAt = now.Add(cfg.TimeWindow)
		return true
	}

	if limit.Count >= cfg.MaxRequests {
		limit.Blocked = true
		limit.BlockUntil = now.Add(cfg.BlockDuration)
		return false
	}

	limit.Count++
	return true
}

// Middleware limits the authenticated actor, or the client IP when the
// request carries no actor.
func (rl *RateLimiter) Middleware(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if actor, ok := CurrentActor(c); ok {
			key = "actor:" + actor.ID.String()
		}

		if !rl.isAllowed(key, cfg) {
			c.Header("Retry-After", strconv.Itoa(int(cfg.BlockDuration.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
