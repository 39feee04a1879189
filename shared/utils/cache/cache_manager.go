package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"orghierarchy-backend/shared/config"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// NewRedisClient connects to the Redis instance described by cfg and pings it.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.GetRedisDB(),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"addr": client.Options().Addr,
		"db":   client.Options().DB,
	}).Info("redis connection established")
	return client, nil
}

// CacheManager stores JSON values under a key prefix with a fixed TTL.
type CacheManager struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCacheManager(client *redis.Client, prefix string, ttl time.Duration) *CacheManager {
	return &CacheManager{client: client, prefix: prefix, ttl: ttl}
}

func (cm *CacheManager) Key(parts ...string) string {
	key := cm.prefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Set caches value under key
func (cm *CacheManager) Set(ctx context.Context, key string, value interface{}) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := cm.client.Set(ctx, key, data, cm.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Get decodes the cached value into dest. Returns ErrMiss when the key is absent.
func (cm *CacheManager) Get(ctx context.Context, key string, dest interface{}) error {
	if cm == nil || cm.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	raw, err := cm.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("failed to read cache: %w", err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return nil
}

// InvalidateByPattern deletes every key matching pattern and returns how many were removed
func (cm *CacheManager) InvalidateByPattern(ctx context.Context, pattern string) (int, error) {
	if cm == nil || cm.client == nil {
		return 0, fmt.Errorf("cache manager not initialized")
	}

	iter := cm.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan keys: %w", err)
	}

	if len(keys) == 0 {
		return 0, nil
	}
	if err := cm.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("failed to delete keys: %w", err)
	}
	return len(keys), nil
}
