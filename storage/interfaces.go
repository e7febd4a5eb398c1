package storage

import (
	"context"

	"github.com/poiesic/clinquery/core"
	"github.com/poiesic/clinquery/graph"
)

// GraphCache persists built knowledge graphs keyed by dataset content hash.
// Implementations must be thread-safe and support concurrent access.
type GraphCache interface {
	// Load returns the cached graph for the given dataset hash.
	// Returns ErrCacheMiss when no snapshot exists for the hash and an
	// error wrapping ErrCacheCorrupt when a snapshot exists but cannot
	// be decoded.
	Load(ctx context.Context, hash core.ID) (*graph.Graph, error)

	// Save stores the graph's snapshot under its dataset hash, replacing
	// snapshots saved for other (stale) hashes.
	Save(ctx context.Context, g *graph.Graph) error

	// Close closes the cache backend and releases resources.
	Close() error
}
