// internal/adapters/memory/locker.go
package memory

import (
	"context"
	"sync"
)

// KeyedMutex hands out one lock per key. Entries are reference counted and
// dropped once no goroutine holds or waits on them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	held chan struct{}
	refs int
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedEntry)}
}

// LockContext acquires the lock for key, giving up with ctx.Err() once ctx is
// done.
func (k *KeyedMutex) LockContext(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{held: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.held <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	return func() {
		<-e.held
		k.release(key, e)
	}, nil
}

func (k *KeyedMutex) release(key string, e *keyedEntry) {
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}

// Locker is a process-local ports.RequestLocker for single-instance deployments.
type Locker struct {
	keys *KeyedMutex
}

// NewLocker creates a process-local locker.
func NewLocker() *Locker {
	return &Locker{keys: NewKeyedMutex()}
}

// WithLock runs fn while holding the lock for key. A caller still waiting when
// ctx is done gets ctx.Err() and fn does not run.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock, err := l.keys.LockContext(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(ctx)
}
