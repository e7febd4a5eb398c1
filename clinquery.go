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


// Package clinquery is a retrieval engine for static clinical Q&A datasets:
// weighted token-overlap search over an inverted index, facet filtering, and
// related-concept lookup over a precomputed knowledge graph.
//
// The Engine facade owns the immutable read structures. LoadDataset builds
// them off to the side and publishes them atomically, so concurrent readers
// never observe a partial index or graph; all query operations are lock-free
// reads and safe to call from any number of goroutines.
package clinquery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/poiesic/clinquery/config"
	"github.com/poiesic/clinquery/core"
	"github.com/poiesic/clinquery/graph"
	"github.com/poiesic/clinquery/index"
	"github.com/poiesic/clinquery/ingestion"
	"github.com/poiesic/clinquery/search"
	"github.com/poiesic/clinquery/storage"
)

// ErrNotLoaded is returned by query operations before a dataset has been
// loaded successfully.
var ErrNotLoaded = errors.New("no dataset loaded")

// snapshot is one published dataset version: documents, their index and
// searcher, and the content hash that keys the graph cache.
type snapshot struct {
	docs     []*core.Document
	idx      *index.Index
	searcher *search.Searcher
	hash     core.ID
}

// Engine is the core facade handed to the presentation layer.
type Engine struct {
	cfg    config.Config
	cache  storage.GraphCache // nil when persistence is disabled
	logger *slog.Logger

	current    atomic.Pointer[snapshot]
	knowledge  atomic.Pointer[graph.Graph]
	buildGroup singleflight.Group
	results    *lru.Cache[string, []*core.ScoredResult]
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithGraphCache sets the persisted graph cache. The engine takes ownership
// and closes it in Close. Default is no persistence: graphs are rebuilt per
// process.
func WithGraphCache(cache storage.GraphCache) Option {
	return func(e *Engine) error {
		e.cache = cache
		return nil
	}
}

// New creates an engine with the given configuration.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	results, err := lru.New[string, []*core.ScoredResult](cfg.ResultCacheSize)
	if err != nil {
		return nil, err
	}
	e.results = results
	return e, nil
}

// Close releases the graph cache, if any.
func (e *Engine) Close() error {
	if e.cache == nil {
		return nil
	}
	if err := e.cache.Close(); err != nil {
		e.logger.Error("error closing graph cache", "err", err)
		return err
	}
	return nil
}

// LoadDataset reads and validates a dataset, builds the inverted index off
// to the side, and atomically publishes the new snapshot. On failure the
// previously published snapshot, if any, stays live.
func (e *Engine) LoadDataset(ctx context.Context, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	docs, err := ingestion.Load(r, ingestion.WithLogger(e.logger))
	if err != nil {
		return err
	}
	return e.publish(docs)
}

// LoadDatasetFile is LoadDataset over a file on disk.
func (e *Engine) LoadDatasetFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	docs, err := ingestion.LoadFile(path, ingestion.WithLogger(e.logger))
	if err != nil {
		return err
	}
	return e.publish(docs)
}

func (e *Engine) publish(docs []*core.Document) error {
	idx, err := index.Build(docs,
		index.WithMinTokenLength(e.cfg.MinTokenLength),
		index.WithPoolSize(e.cfg.PoolSize),
		index.WithLogger(e.logger))
	if err != nil {
		return err
	}
	searcher, err := search.NewSearcher(docs, idx,
		search.WithWeights(e.cfg.PromptWeight, e.cfg.CompletionWeight),
		search.WithLogger(e.logger))
	if err != nil {
		return err
	}
	snap := &snapshot{docs: docs, idx: idx, searcher: searcher, hash: core.DatasetHash(docs)}
	e.current.Store(snap)
	e.knowledge.Store(nil)
	e.results.Purge()
	e.logger.Info("dataset published", "documents", len(docs), "hash", uint64(snap.hash))
	return nil
}

// SearchRequest carries one query with its request-scoped filters. There is
// no ambient session state in the engine; pagination and history belong to
// the caller.
type SearchRequest struct {
	Query    string
	MinScore int
	Keywords []string
	Facets   search.FacetFilters
}

// Search ranks and filters documents for the request. Results are shared,
// read-only values; callers must not mutate them.
func (e *Engine) Search(ctx context.Context, req SearchRequest) ([]*core.ScoredResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}

	key := requestKey(snap.hash, req)
	if cached, ok := e.results.Get(key); ok {
		return cached, nil
	}

	ranked := snap.searcher.Search(req.Query)
	filtered := search.Filter(ranked, req.MinScore, req.Keywords, req.Facets)
	e.results.Add(key, filtered)
	return filtered, nil
}

// ClosestMatch answers with the single most similar prompt, the legacy
// pre-ranking behavior. It is a separate backend from Search.
func (e *Engine) ClosestMatch(ctx context.Context, query string) (*core.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	snap := e.current.Load()
	if snap == nil {
		return nil, false, ErrNotLoaded
	}
	doc, ok := search.ClosestMatch(snap.docs, query, e.cfg.ClosestCutoff)
	return doc, ok, nil
}

// BuildOrLoadGraph returns the knowledge graph for the current dataset,
// loading it from the cache when a snapshot for the dataset hash exists and
// building it otherwise. Cache corruption degrades silently to a fresh
// build. Concurrent calls for the same dataset are coalesced.
func (e *Engine) BuildOrLoadGraph(ctx context.Context) (*graph.Graph, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	if g := e.knowledge.Load(); g != nil && g.DatasetHash() == snap.hash {
		return g, nil
	}

	v, err, _ := e.buildGroup.Do(fmt.Sprintf("graph:%d", snap.hash), func() (any, error) {
		if g := e.knowledge.Load(); g != nil && g.DatasetHash() == snap.hash {
			return g, nil
		}
		g := e.loadOrBuild(ctx, snap)
		e.knowledge.Store(g)
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*graph.Graph), nil
}

func (e *Engine) loadOrBuild(ctx context.Context, snap *snapshot) *graph.Graph {
	if e.cache != nil {
		g, err := e.cache.Load(ctx, snap.hash)
		switch {
		case err == nil:
			e.logger.Info("knowledge graph loaded from cache", "hash", uint64(snap.hash))
			return g
		case errors.Is(err, storage.ErrCacheMiss):
			e.logger.Debug("graph cache miss", "hash", uint64(snap.hash))
		default:
			// Corrupt or unreadable cache is never fatal; rebuild.
			e.logger.Warn("graph cache unreadable, rebuilding", "err", err)
		}
	}

	g := graph.Build(snap.docs,
		graph.WithTermMinLength(e.cfg.TermMinLength),
		graph.WithKeywordCap(e.cfg.KeywordCap),
		graph.WithLogger(e.logger))

	if e.cache != nil {
		if err := e.cache.Save(ctx, g); err != nil {
			e.logger.Warn("failed to persist knowledge graph", "err", err)
		}
	}
	return g
}

// RelatedConcepts returns up to topN concepts related to the query via the
// knowledge graph, building or loading the graph on first use. A
// non-positive topN uses the configured default.
func (e *Engine) RelatedConcepts(ctx context.Context, query string, topN int) ([]core.RelatedConcept, error) {
	if topN <= 0 {
		topN = e.cfg.DefaultTopN
	}
	g, err := e.BuildOrLoadGraph(ctx)
	if err != nil {
		return nil, err
	}
	return g.RelatedConcepts(query, topN), nil
}

// Documents returns the published document set. The slice is a copy; the
// documents themselves are shared and immutable.
func (e *Engine) Documents() []*core.Document {
	snap := e.current.Load()
	if snap == nil {
		return nil
	}
	docs := make([]*core.Document, len(snap.docs))
	copy(docs, snap.docs)
	return docs
}

// requestKey builds a deterministic result-cache key for a request against
// one dataset version. Every string component is length-prefixed and every
// list is count-prefixed, so distinct requests always produce distinct keys
// even when fields contain separator-looking bytes.
func requestKey(hash core.ID, req SearchRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d;%d;", hash, req.MinScore)
	writeKeyPart(&b, req.Query)

	keywords := make([]string, len(req.Keywords))
	for i, kw := range req.Keywords {
		keywords[i] = strings.ToLower(kw)
	}
	sort.Strings(keywords)
	fmt.Fprintf(&b, "%d;", len(keywords))
	for _, kw := range keywords {
		writeKeyPart(&b, kw)
	}

	facetNames := make([]string, 0, len(req.Facets))
	for name := range req.Facets {
		facetNames = append(facetNames, name)
	}
	sort.Strings(facetNames)
	fmt.Fprintf(&b, "%d;", len(facetNames))
	for _, name := range facetNames {
		writeKeyPart(&b, name)
		values := make([]string, len(req.Facets[name]))
		copy(values, req.Facets[name])
		sort.Strings(values)
		fmt.Fprintf(&b, "%d;", len(values))
		for _, v := range values {
			writeKeyPart(&b, v)
		}
	}
	return b.String()
}

func writeKeyPart(b *strings.Builder, s string) {
	fmt.Fprintf(b, "%d:%s", len(s), s)
}
