// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package badger provides the BadgerDB-backed graph cache.
package badger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/clinquery/core"
	"github.com/poiesic/clinquery/graph"
	"github.com/poiesic/clinquery/storage"
)

// graphCache implements storage.GraphCache on a badger Backend.
type graphCache struct {
	backend *Backend
	logger  *slog.Logger
}

// Option configures the cache.
type Option func(*graphCache)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *graphCache) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewGraphCache opens a graph cache at the given directory.
func NewGraphCache(path string, opts ...Option) (storage.GraphCache, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newGraphCache(backend, opts...), nil
}

func newGraphCache(backend *Backend, opts ...Option) *graphCache {
	c := &graphCache{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the cached graph for the dataset hash, storage.ErrCacheMiss
// when no snapshot exists for it, or an error wrapping
// storage.ErrCacheCorrupt when the stored payload does not decode.
func (c *graphCache) Load(ctx context.Context, hash core.ID) (*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var payload []byte
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeGraphSnapshotKey(hash))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	}, false)
	if err == badger.ErrKeyNotFound {
		return nil, storage.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	snapshot, err := storage.UnmarshalSnapshot(payload)
	if err != nil {
		return nil, err
	}
	if snapshot.DatasetHash != hash {
		// The payload decoded but belongs to a different dataset; treat it
		// like corruption so callers rebuild.
		return nil, fmt.Errorf("%w: snapshot hash mismatch", storage.ErrCacheCorrupt)
	}

	c.logger.Debug("graph cache hit", "hash", uint64(hash), "nodes", len(snapshot.Nodes))
	return graph.FromSnapshot(snapshot), nil
}

// Save stores the graph's snapshot under its dataset hash and sweeps
// snapshots stored for other hashes, which can only be stale versions.
func (c *graphCache) Save(ctx context.Context, g *graph.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	key := makeGraphSnapshotKey(g.DatasetHash())
	payload := storage.MarshalSnapshot(g.Snapshot())

	return c.backend.WithTx(func(tx *badger.Txn) error {
		var stale [][]byte
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		prefix := graphSnapshotKeyPrefix()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			if !bytes.Equal(k, key) {
				stale = append(stale, k)
			}
		}
		it.Close()

		for _, k := range stale {
			if err := tx.Delete(k); err != nil {
				return err
			}
		}
		return tx.Set(key, payload)
	}, true)
}

// Close closes the underlying backend.
func (c *graphCache) Close() error {
	return c.backend.Close()
}
