package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/topoview/pkg/observability"
)

// Observed reports hits, misses and writes of the wrapped cache to
// observability.Cache().
type Observed struct {
	Cache
}

// NewObserved wraps c.
func NewObserved(c Cache) *Observed {
	return &Observed{Cache: c}
}

// Get delegates and reports a hit or a miss.
func (o *Observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, keyType(key))
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType(key))
	}
	return data, ok, nil
}

// Set delegates and reports the stored size.
func (o *Observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := o.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// keyType is the namespace segment of a key ("layout", "document"), after
// any scope prefix.
func keyType(key string) string {
	parts := strings.Split(key, ":")
	for _, p := range parts {
		if p == "layout" || p == "document" {
			return p
		}
	}
	return parts[0]
}
