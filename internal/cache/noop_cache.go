package cache

import (
	"context"
	"time"
)

// NoopCache is the cache used when no Redis address is configured: every
// Get is a miss and every Set is discarded, so queries always hit the
// repository.
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (*NoopCache) Get(ctx context.Context, key string) (string, error) {
	return "", ErrCacheMiss
}

func (*NoopCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return nil
}

func (*NoopCache) Delete(ctx context.Context, key string) error {
	return nil
}

func (*NoopCache) Close() error {
	return nil
}
