// internal/core/ports/cache.go
package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a cached key is absent.
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository defines the interface for cache operations. The cache only
// ever holds derived read models; ledger decisions never read from it.
type CacheRepository interface {
	// GetOrSet loads key into dest, calling fetch and caching its result on a miss.
	GetOrSet(ctx context.Context, key string, dest interface{},
		fetch func() (interface{}, error), ttl time.Duration) error

	// DeletePattern drops every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error
}
