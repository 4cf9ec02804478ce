// Package cache stores fetched folder trees and rendered artifacts.
//
// Two things are cached: the tree a walk produced (keyed by root and walk
// options, short TTL since folders change) and rendered output (keyed by a
// hash of the layout JSON and the format, long TTL since the key already
// pins the content). Layouts are recomputed on every request; computing one
// is cheaper than a cache round trip.
//
// Backends: [NullCache] (caching disabled), [FileCache] (CLI, one file per
// entry under the user cache dir) and [RedisCache] (server deployments).
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	TTLTree     = 10 * time.Minute
	TTLArtifact = 24 * time.Hour
)

// Key families, used as key prefixes and as the keyType reported to hooks.
const (
	KeyTypeTree     = "tree"
	KeyTypeArtifact = "artifact"
)

// Cache is a byte-oriented key/value store with per-entry TTLs.
type Cache interface {
	// Get returns the value for key and whether it was present.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// TreeKeyOpts are the walk options that change what a walk returns.
type TreeKeyOpts struct {
	MaxDepth   int      `json:"max_depth"`
	Indicators []string `json:"indicators,omitempty"`
	Blocklist  []string `json:"blocklist,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	TreeKey(root string, opts TreeKeyOpts) string
	ArtifactKey(layoutHash, format string) string
}

// DefaultKeyer builds "<family>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TreeKey keys a walk of root with opts.
func (DefaultKeyer) TreeKey(root string, opts TreeKeyOpts) string {
	return hashKey(KeyTypeTree, root, opts)
}

// ArtifactKey keys a rendering of the layout whose JSON hashes to layoutHash.
func (DefaultKeyer) ArtifactKey(layoutHash, format string) string {
	return hashKey(KeyTypeArtifact, layoutHash, format)
}
