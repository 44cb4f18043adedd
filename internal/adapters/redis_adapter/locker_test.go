package redis_a_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/ammerola/logistics-be/internal/adapters/redis_adapter"
	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/test/helpers"
)

func newLocker(t *testing.T, cfg redis_a.LockerConfig) (*redis_a.RequestLocker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return redis_a.NewRequestLocker(client, cfg, helpers.TestLogger()), mr
}

func TestRequestLocker_RunsAndReleases(t *testing.T) {
	locker, mr := newLocker(t, redis_a.LockerConfig{TTL: time.Second})

	ran := false
	err := locker.WithLock(context.Background(), "request:1", func(ctx context.Context) error {
		ran = true
		assert.True(t, mr.Exists("lock:request:1"))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, mr.Exists("lock:request:1"))
}

func TestRequestLocker_PropagatesFnError(t *testing.T) {
	locker, mr := newLocker(t, redis_a.LockerConfig{})

	err := locker.WithLock(context.Background(), "request:1", func(ctx context.Context) error {
		return domain.ErrOverReturn
	})

	assert.True(t, errors.Is(err, domain.ErrOverReturn))
	assert.False(t, mr.Exists("lock:request:1"))
}

func TestRequestLocker_BusyLockIsConcurrentModification(t *testing.T) {
	locker, mr := newLocker(t, redis_a.LockerConfig{
		TTL:        time.Minute,
		RetryEvery: 10 * time.Millisecond,
		MaxWait:    50 * time.Millisecond,
	})
	require.NoError(t, mr.Set("lock:request:1", "someone-else"))

	err := locker.WithLock(context.Background(), "request:1", func(ctx context.Context) error {
		t.Fatal("fn must not run without the lock")
		return nil
	})

	assert.True(t, errors.Is(err, domain.ErrConcurrentModification))
}

func TestRequestLocker_SerializesSameKey(t *testing.T) {
	locker, _ := newLocker(t, redis_a.LockerConfig{
		TTL:        5 * time.Second,
		RetryEvery: 5 * time.Millisecond,
		MaxWait:    5 * time.Second,
	})

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), "request:1", func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				if n > atomic.LoadInt32(&maxSeen) {
					atomic.StoreInt32(&maxSeen, n)
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxSeen))
}
