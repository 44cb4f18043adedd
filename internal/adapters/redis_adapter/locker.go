// internal/adapters/redis_adapter/locker.go
package redis_a

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
)

const lockKeyPrefix = "lock:"

// LockerConfig tunes lock acquisition.
type LockerConfig struct {
	TTL        time.Duration
	RetryEvery time.Duration
	MaxWait    time.Duration
}

// RequestLocker serializes work on a key across API and worker processes.
type RequestLocker struct {
	locker *redislock.Client
	config LockerConfig
	logger *slog.Logger
}

var _ ports.RequestLocker = (*RequestLocker)(nil)

// NewRequestLocker creates a Redis-backed locker
func NewRequestLocker(client *redis.Client, config LockerConfig, logger *slog.Logger) *RequestLocker {
	if config.TTL <= 0 {
		config.TTL = 10 * time.Second
	}
	if config.RetryEvery <= 0 {
		config.RetryEvery = 50 * time.Millisecond
	}
	if config.MaxWait <= 0 {
		config.MaxWait = 3 * time.Second
	}
	return &RequestLocker{
		locker: redislock.New(client),
		config: config,
		logger: logger.With(slog.String("component", "locker")),
	}
}

// WithLock runs fn while holding key. It waits up to MaxWait for the lock and
// returns domain.ErrConcurrentModification if it is still held elsewhere.
func (l *RequestLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.config.MaxWait)
	defer cancel()

	lock, err := l.locker.Obtain(waitCtx, lockKeyPrefix+key, l.config.TTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.config.RetryEvery),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.WarnContext(ctx, "lock busy", slog.String("key", key))
			return fmt.Errorf("%s: %w", key, domain.ErrConcurrentModification)
		}
		return fmt.Errorf("failed to obtain lock: %w", err)
	}

	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.WarnContext(ctx, "failed to release lock",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}()

	return fn(ctx)
}
