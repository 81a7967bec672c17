package repository

import (
	"context"
	"time"
)

// Cache is a key to JSON value store used to memoize read-heavy queries.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
