// Package cache defines the keyed cache contract the session store runs on:
// opaque string keys, JSON text values, no transactions and no TTL. Deployments
// may layer expiry on top independently.
package cache

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has no value.
var ErrKeyNotFound = errors.New("key not found")

// Cache is a single-key read/write store. Writes are last-writer-wins; any
// atomicity comes from the backend's own single-key guarantees.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
