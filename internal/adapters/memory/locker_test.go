package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/logistics-be/internal/adapters/memory"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	locker := memory.NewLocker()

	var (
		inside  int32
		overlap int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), "request:1", func(ctx context.Context) error {
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.StoreInt32(&overlap, 1)
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlap))
}

func TestLocker_IndependentKeys(t *testing.T) {
	locker := memory.NewLocker()
	entered := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = locker.WithLock(context.Background(), "request:1", func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	done := make(chan struct{})
	go func() {
		_ = locker.WithLock(context.Background(), "request:2", func(ctx context.Context) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
	close(release)
}

func TestLocker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := memory.NewLocker().WithLock(ctx, "request:1", func(ctx context.Context) error {
		t.Fatal("fn must not run")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLocker_WaiterHonoursDeadline(t *testing.T) {
	locker := memory.NewLocker()
	entered := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	go func() {
		_ = locker.WithLock(context.Background(), "request:1", func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := locker.WithLock(ctx, "request:1", func(ctx context.Context) error {
		t.Error("fn must not run while the key is held")
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLocker_KeyUsableAfterAbandonedWait(t *testing.T) {
	locker := memory.NewLocker()
	entered := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		_ = locker.WithLock(context.Background(), "request:1", func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.Error(t, locker.WithLock(ctx, "request:1", func(ctx context.Context) error { return nil }))

	close(release)
	<-finished

	ran := false
	require.NoError(t, locker.WithLock(context.Background(), "request:1", func(ctx context.Context) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
}
