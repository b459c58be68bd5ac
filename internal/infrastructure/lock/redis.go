// Package lock provides a Redis-backed named lock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained is returned when the lock is held elsewhere after all retries.
var ErrNotObtained = redislock.ErrNotObtained

const (
	// DefaultTTL bounds how long a crashed holder can block others.
	DefaultTTL = 5 * time.Second
	// DefaultWait is the longest Obtain keeps retrying.
	DefaultWait = 2 * time.Second

	retryInterval = 25 * time.Millisecond
)

// RedisLocker obtains short-lived locks through redislock.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisLocker creates a locker. Non-positive durations fall back to the defaults.
func NewRedisLocker(rdb *redis.Client, ttl, wait time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if wait <= 0 {
		wait = DefaultWait
	}
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl, wait: wait}
}

// Obtain acquires key, retrying until the wait elapses. The returned release never fails;
// an expired lock is simply gone.
func (l *RedisLocker) Obtain(ctx context.Context, key string) (func(), error) {
	retries := int(l.wait / retryInterval)
	lk, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryInterval), retries),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrNotObtained
		}
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func() {
		_ = lk.Release(context.WithoutCancel(ctx))
	}, nil
}
