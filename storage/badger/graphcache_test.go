package badger

import (
	"context"
	"testing"

	bdg "github.com/dgraph-io/badger/v4"
	"github.com/poiesic/clinquery/core"
	"github.com/poiesic/clinquery/graph"
	"github.com/poiesic/clinquery/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGraph(t *testing.T, prompts ...string) *graph.Graph {
	t.Helper()
	docs := make([]*core.Document, len(prompts))
	for i, p := range prompts {
		docs[i] = &core.Document{
			Id:          i,
			Prompt:      p,
			Completion:  "atezolizumab response data for " + p,
			CancerTypes: []string{"NSCLC"},
			Genes:       []string{"PD-L1"},
		}
	}
	return graph.Build(docs)
}

func TestGraphCache_SaveLoadRoundTrip(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	g := buildGraph(t, "pdl1 expression in nsclc", "atezolizumab dosing")

	require.NoError(t, cache.Save(ctx, g))

	loaded, err := cache.Load(ctx, g.DatasetHash())
	require.NoError(t, err)

	assert.Equal(t, g.DatasetHash(), loaded.DatasetHash())
	assert.Equal(t, g.Nodes(), loaded.Nodes())
	assert.Equal(t, g.CoocEdges(), loaded.CoocEdges())
	assert.Equal(t, g.Relations(), loaded.Relations())
	assert.Equal(t, g.RelatedConcepts("nsclc", 10), loaded.RelatedConcepts("nsclc", 10))
}

func TestGraphCache_MissForUnknownHash(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	_, err = cache.Load(context.Background(), core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrCacheMiss)
}

func TestGraphCache_SaveSweepsStaleSnapshots(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	old := buildGraph(t, "old dataset version")
	current := buildGraph(t, "new dataset version")
	require.NotEqual(t, old.DatasetHash(), current.DatasetHash())

	require.NoError(t, cache.Save(ctx, old))
	require.NoError(t, cache.Save(ctx, current))

	_, err = cache.Load(ctx, old.DatasetHash())
	assert.ErrorIs(t, err, storage.ErrCacheMiss)

	loaded, err := cache.Load(ctx, current.DatasetHash())
	require.NoError(t, err)
	assert.Equal(t, current.DatasetHash(), loaded.DatasetHash())
}

func TestGraphCache_CorruptPayload(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	cache := newGraphCache(backend)
	defer cache.Close()

	hash := core.ID(777)
	err = backend.WithTx(func(tx *bdg.Txn) error {
		return tx.Set(makeGraphSnapshotKey(hash), []byte{0xff})
	}, true)
	require.NoError(t, err)

	_, err = cache.Load(context.Background(), hash)
	assert.ErrorIs(t, err, storage.ErrCacheCorrupt)
}

func TestGraphCache_HashMismatchTreatedAsCorrupt(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	cache := newGraphCache(backend)
	defer cache.Close()

	g := buildGraph(t, "some dataset")
	payload := storage.MarshalSnapshot(g.Snapshot())
	wrongKey := core.ID(1)
	require.NotEqual(t, wrongKey, g.DatasetHash())

	err = backend.WithTx(func(tx *bdg.Txn) error {
		return tx.Set(makeGraphSnapshotKey(wrongKey), payload)
	}, true)
	require.NoError(t, err)

	_, err = cache.Load(context.Background(), wrongKey)
	assert.ErrorIs(t, err, storage.ErrCacheCorrupt)
}

func TestGraphCache_ClosedBackend(t *testing.T) {
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	ctx := context.Background()
	_, err = cache.Load(ctx, core.ID(1))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = cache.Save(ctx, buildGraph(t, "whatever"))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
