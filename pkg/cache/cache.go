// Package cache stores rendered sphere grid frames and artifacts.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// servers sharing one cache, and [NullCache] to disable caching. Keys come
// from a [Keyer] so every entry point derives the same key for the same scene.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found.
	// A missing or expired key is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes. Frames are deterministic for a given scene, so
// they only expire to bound disk and memory use.
const (
	TTLFrame    = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
