package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/payamancoders/trustcheck/internal/domain"
	"github.com/payamancoders/trustcheck/internal/repository"
)

const (
	defaultLockTTL   = 15 * time.Second
	lockRetryBackoff = 100 * time.Millisecond
	lockRetries      = 30
)

// RedisEmployerLocker implements EmployerLocker with a Redis lease per employer.
type RedisEmployerLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ repository.EmployerLocker = (*RedisEmployerLocker)(nil)

// NewRedisEmployerLocker constructs a Redis-backed locker.
func NewRedisEmployerLocker(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisEmployerLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if logger == nil {
		logger = zap.L()
	}
	return &RedisEmployerLocker{locker: redislock.New(client), ttl: ttl, logger: logger}
}

// LockKey is the Redis key guarding one employer.
func LockKey(employerID int64) string {
	return fmt.Sprintf("lock:employer:%d", employerID)
}

// Acquire retries for a short while before giving up with ErrLockNotObtained.
func (l *RedisEmployerLocker) Acquire(ctx context.Context, employerID int64) (func(), error) {
	key := LockKey(employerID)
	lock, err := l.locker.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockRetryBackoff), lockRetries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrLockNotObtained)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock: %w", err)
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("release employer lock failed", zap.String("key", key), zap.Error(err))
		}
	}
	return release, nil
}

// NoopLocker is used when Redis is not configured; the repository version check still
// rejects lost updates.
type NoopLocker struct{}

var _ repository.EmployerLocker = NoopLocker{}

func (NoopLocker) Acquire(context.Context, int64) (func(), error) {
	return func() {}, nil
}
