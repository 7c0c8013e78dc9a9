package cache

import (
	"context"
	"time"
)

// noopStore implements Store without a backend. Selected at startup when no
// cache address is configured; every read misses and every write succeeds.
type noopStore struct{}

// NewNoopStore creates a cache store that caches nothing.
func NewNoopStore() Store {
	return noopStore{}
}

func (noopStore) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }

func (noopStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {}

func (noopStore) Delete(ctx context.Context, keys ...string) {}

func (noopStore) DeletePrefix(ctx context.Context, prefix string) {}
