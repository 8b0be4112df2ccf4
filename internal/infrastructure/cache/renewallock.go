// Package cache holds the Redis-backed coordination primitives.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	sharedConfig "subcycle/internal/shared/config"
	"subcycle/internal/shared/logger"
)

// NewRedisClient opens the Redis connection used for renewal locking.
func NewRedisClient(cfg *sharedConfig.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RenewalLock serializes renewal processing per subscription across worker
// instances. The key embeds the scheduled payment time, so retrying the same
// missed renewal after the TTL works while a concurrent duplicate does not.
type RenewalLock struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

func NewRenewalLock(client *redis.Client, ttl time.Duration, log logger.Interface) *RenewalLock {
	return &RenewalLock{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// Acquire takes the lock for one subscription's renewal cycle. Returns false
// when another worker already holds it.
func (l *RenewalLock) Acquire(ctx context.Context, subscriptionID uint, scheduledFor time.Time) (bool, error) {
	key := l.key(subscriptionID, scheduledFor)

	ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire renewal lock: %w", err)
	}
	if !ok {
		l.logger.Debugw("renewal lock already held",
			"subscription_id", subscriptionID, "key", key)
	}
	return ok, nil
}

// Release drops the lock early. Safe to skip: the TTL reclaims it.
func (l *RenewalLock) Release(ctx context.Context, subscriptionID uint, scheduledFor time.Time) error {
	if err := l.client.Del(ctx, l.key(subscriptionID, scheduledFor)).Err(); err != nil {
		return fmt.Errorf("failed to release renewal lock: %w", err)
	}
	return nil
}

func (l *RenewalLock) key(subscriptionID uint, scheduledFor time.Time) string {
	return fmt.Sprintf("subcycle:renewal:%d:%d", subscriptionID, scheduledFor.UTC().Unix())
}
