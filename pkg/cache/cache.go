// Package cache stores finished pipeline bundles keyed by their inputs.
//
// Three backends implement [Cache]:
//   - [FileCache]: zstd-compressed files under the user cache directory (CLI)
//   - [RedisCache]: a shared Redis instance (HTTP API with several replicas)
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so every caller derives the same key for
// the same heightmap, track mask and request.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiration.
type Cache interface {
	// Get returns the value stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Cache TTLs.
const (
	// TTLBundle is how long a rendered bundle stays valid.
	TTLBundle = 7 * 24 * time.Hour
)

// Keyer derives cache keys.
type Keyer interface {
	// BundleKey returns the key of the artifact bundle produced from the
	// given heightmap and track mask hashes under a normalized request.
	BundleKey(inputHash, trackHash string, request any) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// BundleKey implements Keyer.
func (DefaultKeyer) BundleKey(inputHash, trackHash string, request any) string {
	return hashKey("bundle", inputHash, trackHash, request)
}
