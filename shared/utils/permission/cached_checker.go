package permission

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"orghierarchy-backend/shared/utils/cache"
)

type decision struct {
	Allowed  bool      `json:"allowed"`
	CachedAt time.Time `json:"cached_at"`
}

// CachedChecker memoizes decisions of an inner Checker in Redis.
// Cache failures are logged and the inner checker is consulted directly.
type CachedChecker struct {
	inner Checker
	cache *cache.CacheManager
	log   logrus.FieldLogger
}

func NewCachedChecker(inner Checker, cm *cache.CacheManager, log logrus.FieldLogger) *CachedChecker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachedChecker{inner: inner, cache: cm, log: log}
}

func (c *CachedChecker) key(subject Subject, action Action) string {
	return c.cache.Key("user", subject.UserID.String(), "role", strings.ToUpper(subject.Role), "act", string(action))
}

func (c *CachedChecker) HasPermission(ctx context.Context, subject Subject, action Action) (bool, error) {
	key := c.key(subject, action)

	var cached decision
	err := c.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached.Allowed, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		c.log.WithError(err).WithField("key", key).Warn("permission cache read failed")
	}

	allowed, err := c.inner.HasPermission(ctx, subject, action)
	if err != nil {
		return false, err
	}

	if err := c.cache.Set(ctx, key, decision{Allowed: allowed, CachedAt: time.Now()}); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("permission cache write failed")
	}
	return allowed, nil
}

// InvalidateUser drops every cached decision for the user.
func (c *CachedChecker) InvalidateUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return c.cache.InvalidateByPattern(ctx, c.cache.Key("user", userID.String(), "*"))
}
