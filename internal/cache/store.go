package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or its TTL has elapsed.
var ErrNotFound = errors.New("cache: key not found")

// Store is the key-value contract the session and OTP services run on.
// Entries expire after their TTL; a zero TTL means no expiry. All live
// session state goes through this interface, so nothing auth-related is held
// in process memory.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
