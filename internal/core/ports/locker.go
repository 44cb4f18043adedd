// internal/core/ports/locker.go
package ports

import "context"

// RequestLocker serializes work on a single key across processes. WithLock
// returns domain.ErrConcurrentModification if the lock cannot be obtained.
type RequestLocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
