package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/banktalk/core"
	"github.com/poiesic/banktalk/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) storage.VectorStore {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createCollection(t *testing.T, store storage.VectorStore, name string, dim int) {
	t.Helper()
	err := store.CreateCollection(context.Background(), storage.CollectionConfig{
		Name:      name,
		Dimension: dim,
		Distance:  storage.DistanceCosine,
	})
	require.NoError(t, err)
}

func TestStoreCollections(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	exists, err := store.CollectionExists(ctx, "banking_kb")
	require.NoError(t, err)
	assert.False(t, exists)

	createCollection(t, store, "banking_kb", 3)

	exists, err = store.CollectionExists(ctx, "banking_kb")
	require.NoError(t, err)
	assert.True(t, exists)

	t.Run("duplicate create", func(t *testing.T) {
		err := store.CreateCollection(ctx, storage.CollectionConfig{Name: "banking_kb", Dimension: 3, Distance: storage.DistanceCosine})
		assert.ErrorIs(t, err, storage.ErrCollectionExists)
	})

	t.Run("invalid config", func(t *testing.T) {
		err := store.CreateCollection(ctx, storage.CollectionConfig{Name: "x", Dimension: 0, Distance: storage.DistanceCosine})
		assert.ErrorIs(t, err, storage.ErrInvalidCollection)
	})

	t.Run("delete removes points", func(t *testing.T) {
		require.NoError(t, store.Upsert(ctx, "banking_kb", storage.Point{ID: core.NumericPointID(1), Vector: []float32{1, 0, 0}}))
		require.NoError(t, store.DeleteCollection(ctx, "banking_kb"))

		exists, err := store.CollectionExists(ctx, "banking_kb")
		require.NoError(t, err)
		assert.False(t, exists)

		createCollection(t, store, "banking_kb", 3)
		count, err := store.Count(ctx, "banking_kb")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("delete missing collection", func(t *testing.T) {
		assert.NoError(t, store.DeleteCollection(ctx, "nope"))
	})
}

func TestStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	createCollection(t, store, "kb", 2)

	t.Run("overwrites by id", func(t *testing.T) {
		id := core.PointIDFromString("42")
		require.NoError(t, store.Upsert(ctx, "kb", storage.Point{ID: id, Vector: []float32{1, 0}, Payload: storage.Payload{Text: "old"}}))
		require.NoError(t, store.Upsert(ctx, "kb", storage.Point{ID: id, Vector: []float32{0, 1}, Payload: storage.Payload{Text: "new"}}))

		count, err := store.Count(ctx, "kb")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)

		hits, err := store.Search(ctx, "kb", []float32{0, 1}, 5)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "new", hits[0].Payload.Text)
		assert.Equal(t, id, hits[0].ID)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		err := store.Upsert(ctx, "kb", storage.Point{ID: core.NumericPointID(2), Vector: []float32{1, 0, 0}})
		assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
	})

	t.Run("missing collection", func(t *testing.T) {
		err := store.Upsert(ctx, "missing", storage.Point{ID: core.NumericPointID(2), Vector: []float32{1, 0}})
		assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
	})

	t.Run("large batch", func(t *testing.T) {
		createCollection(t, store, "big", 2)
		points := make([]storage.Point, maxPointsPerTx*2+5)
		for i := range points {
			points[i] = storage.Point{
				ID:      core.NumericPointID(uint64(i)),
				Vector:  []float32{1, float32(i)},
				Payload: storage.Payload{Text: fmt.Sprintf("passage %d", i)},
			}
		}
		require.NoError(t, store.Upsert(ctx, "big", points...))

		count, err := store.Count(ctx, "big")
		require.NoError(t, err)
		assert.Equal(t, uint64(len(points)), count)
	})
}

func TestStoreSearch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	createCollection(t, store, "kb", 3)

	points := []storage.Point{
		{ID: core.NumericPointID(1), Vector: []float32{1, 0, 0}, Payload: storage.Payload{Text: "exact"}},
		{ID: core.NumericPointID(2), Vector: []float32{0.9, 0.1, 0}, Payload: storage.Payload{Text: "close"}},
		{ID: core.NumericPointID(3), Vector: []float32{0, 0, 1}, Payload: storage.Payload{Text: "far"}},
		{ID: core.PointIDFromString("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), Vector: []float32{-1, 0, 0}, Payload: storage.Payload{Text: "opposite"}},
	}
	require.NoError(t, store.Upsert(ctx, "kb", points...))

	t.Run("ordered and limited", func(t *testing.T) {
		hits, err := store.Search(ctx, "kb", []float32{2, 0, 0}, 2)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "exact", hits[0].Payload.Text)
		assert.Equal(t, "close", hits[1].Payload.Text)
		assert.InDelta(t, 1.0, hits[0].Score, 1e-5)
		assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
	})

	t.Run("limit above size", func(t *testing.T) {
		hits, err := store.Search(ctx, "kb", []float32{1, 0, 0}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 4)
		assert.Equal(t, "opposite", hits[3].Payload.Text)
		for i := 1; i < len(hits); i++ {
			assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		_, err := store.Search(ctx, "kb", []float32{1, 0, 0}, 0)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		_, err := store.Search(ctx, "kb", []float32{1, 0}, 2)
		assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
	})

	t.Run("missing collection", func(t *testing.T) {
		_, err := store.Search(ctx, "nope", []float32{1, 0, 0}, 2)
		assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		createCollection(t, store, "kb2", 3)
		hits, err := store.Search(ctx, "kb2", []float32{1, 0, 0}, 2)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestStoreClosed(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err = store.Count(context.Background(), "kb")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
