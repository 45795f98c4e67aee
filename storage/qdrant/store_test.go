package qdrant

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/banktalk/core"
	"github.com/poiesic/banktalk/storage"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeClient struct {
	created []*qdrant.CreateCollection
	deleted []string
	upserts []*qdrant.UpsertPoints
	queries []*qdrant.QueryPoints
	hits    []*qdrant.ScoredPoint
	count   uint64
	err     error
	closed  bool
}

func (f *fakeClient) CollectionExists(ctx context.Context, name string) (bool, error) {
	return len(f.created) > 0, f.err
}

func (f *fakeClient) CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error {
	f.created = append(f.created, req)
	return f.err
}

func (f *fakeClient) DeleteCollection(ctx context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return f.err
}

func (f *fakeClient) Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserts = append(f.upserts, req)
	return &qdrant.UpdateResult{}, f.err
}

func (f *fakeClient) Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.queries = append(f.queries, req)
	return f.hits, f.err
}

func (f *fakeClient) Count(ctx context.Context, req *qdrant.CountPoints) (uint64, error) {
	return f.count, f.err
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, (&Config{Port: DefaultPort}).Validate(), ErrHostRequired)
	assert.Error(t, (&Config{Host: "localhost", Port: 70000}).Validate())
	assert.NoError(t, (&Config{Host: "localhost", Port: DefaultPort}).Validate())
}

func TestCreateCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("cosine with dimension", func(t *testing.T) {
		fc := &fakeClient{}
		store := newStore(fc)

		err := store.CreateCollection(ctx, storage.CollectionConfig{Name: "banking_kb", Dimension: 384, Distance: storage.DistanceCosine})
		require.NoError(t, err)
		require.Len(t, fc.created, 1)

		params := fc.created[0].GetVectorsConfig().GetParams()
		assert.Equal(t, "banking_kb", fc.created[0].GetCollectionName())
		assert.Equal(t, uint64(384), params.GetSize())
		assert.Equal(t, qdrant.Distance_Cosine, params.GetDistance())
	})

	t.Run("invalid config never reaches server", func(t *testing.T) {
		fc := &fakeClient{}
		err := newStore(fc).CreateCollection(ctx, storage.CollectionConfig{Name: "kb"})
		assert.ErrorIs(t, err, storage.ErrInvalidCollection)
		assert.Empty(t, fc.created)
	})

	t.Run("already exists", func(t *testing.T) {
		fc := &fakeClient{err: status.Error(codes.AlreadyExists, "exists")}
		err := newStore(fc).CreateCollection(ctx, storage.CollectionConfig{Name: "kb", Dimension: 3, Distance: storage.DistanceCosine})
		assert.ErrorIs(t, err, storage.ErrCollectionExists)
	})
}

func TestDeleteCollection_NotFoundIgnored(t *testing.T) {
	fc := &fakeClient{err: status.Error(codes.NotFound, "missing")}
	assert.NoError(t, newStore(fc).DeleteCollection(context.Background(), "kb"))
}

func TestUpsert(t *testing.T) {
	fc := &fakeClient{}
	store := newStore(fc)

	points := make([]storage.Point, upsertBatchSize+1)
	for i := range points {
		points[i] = storage.Point{
			ID:      core.NumericPointID(uint64(i)),
			Vector:  []float32{1, 0},
			Payload: storage.Payload{Text: "passage", Category: "accounts"},
		}
	}
	points[0].ID = core.PointIDFromString("3f2504e0-4f89-11d3-9a0c-0305e82c3301")

	require.NoError(t, store.Upsert(context.Background(), "kb", points...))
	require.Len(t, fc.upserts, 2)
	assert.Len(t, fc.upserts[0].GetPoints(), upsertBatchSize)
	assert.Len(t, fc.upserts[1].GetPoints(), 1)

	first := fc.upserts[0]
	assert.True(t, first.GetWait())
	assert.Equal(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", first.GetPoints()[0].GetId().GetUuid())
	assert.Equal(t, uint64(1), first.GetPoints()[1].GetId().GetNum())
	assert.Equal(t, "passage", first.GetPoints()[1].GetPayload()[payloadText].GetStringValue())
	assert.Equal(t, "accounts", first.GetPoints()[1].GetPayload()[payloadCategory].GetStringValue())
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("maps hits", func(t *testing.T) {
		fc := &fakeClient{hits: []*qdrant.ScoredPoint{
			{Id: qdrant.NewIDNum(3), Score: 0.9, Payload: map[string]*qdrant.Value{payloadText: qdrant.NewValueString("first")}},
			{Id: qdrant.NewIDUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), Score: 0.5, Payload: map[string]*qdrant.Value{}},
		}}
		hits, err := newStore(fc).Search(ctx, "kb", []float32{1, 0}, 2)
		require.NoError(t, err)

		require.Len(t, hits, 2)
		assert.Equal(t, core.NumericPointID(3), hits[0].ID)
		assert.Equal(t, "first", hits[0].Payload.Text)
		assert.True(t, hits[1].ID.IsUUID())
		assert.False(t, hits[1].Payload.HasText())

		require.Len(t, fc.queries, 1)
		assert.Equal(t, uint64(2), fc.queries[0].GetLimit())
	})

	t.Run("missing collection", func(t *testing.T) {
		fc := &fakeClient{err: status.Error(codes.NotFound, "Collection `kb` doesn't exist!")}
		_, err := newStore(fc).Search(ctx, "kb", []float32{1}, 2)
		assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := newStore(&fakeClient{err: boom}).Search(ctx, "kb", []float32{1}, 2)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("invalid limit", func(t *testing.T) {
		_, err := newStore(&fakeClient{}).Search(ctx, "kb", []float32{1}, 0)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}

func TestCountAndClose(t *testing.T) {
	fc := &fakeClient{count: 12}
	store := newStore(fc)

	count, err := store.Count(context.Background(), "kb")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), count)

	require.NoError(t, store.Close())
	assert.True(t, fc.closed)
}
