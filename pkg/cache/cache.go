package cache

import (
	"context"
	"time"
)

// Default TTLs per entry family.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	DocumentTTL = time.Hour
)

// Cache is a byte store keyed by string.
// Get reports a miss with ok=false and a nil error; errors are reserved for
// backend failures.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
