package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key has no value (or it expired).
var ErrNotFound = errors.New("store: key not found")

// Store is a small persistent key-value store. The feedback guard keeps
// its per-visitor rate-limit record here; handlers use it for short-TTL
// response caching. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
