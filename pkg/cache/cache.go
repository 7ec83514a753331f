// Package cache provides the storage backends and key scheme used to reuse
// cellmap results across runs.
//
// Three backends implement [Cache]:
//
//   - [FileCache] stores entries as JSON files under a directory (CLI default)
//   - [RedisCache] stores entries in Redis (shared between API replicas)
//   - [NullCache] stores nothing (--no-cache)
//
// Keys are built by a [Keyer] so the CLI and the HTTP API agree on them:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(configHash, cache.LayoutKeyOpts{Seed: 42})
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    // reuse data
//	}
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// TTLs for cached entries.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// A miss is reported as (nil, false, nil), never as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys. An empty key means the inputs cannot be keyed
// reliably and the entry must be neither read nor written.
type Keyer interface {
	// LayoutKey identifies a full pipeline result for a config document.
	LayoutKey(configHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered output of a result.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the run options that change a pipeline result.
type LayoutKeyOpts struct {
	Seed             uint64   `json:"seed"`
	Sites            []string `json:"sites,omitempty"`
	RejectDuplicates bool     `json:"reject_duplicates,omitempty"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Kind     string  `json:"kind"` // "cellmap" or "tree"
	Format   string  `json:"format"`
	Columns  int     `json:"columns,omitempty"`
	Legend   bool    `json:"legend,omitempty"`
	HideFake bool    `json:"hide_fake,omitempty"`
	Chains   bool    `json:"chains,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
	Title    string  `json:"title,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(configHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", configHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// GetJSON reads key and decodes it into v. Undecodable entries are deleted
// and reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
