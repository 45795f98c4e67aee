// Package qdrant implements storage.VectorStore on a Qdrant server reached
// over gRPC.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/banktalk/core"
	"github.com/poiesic/banktalk/storage"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// DefaultPort is Qdrant's gRPC port.
	DefaultPort = 6334

	payloadText     = "text"
	payloadCategory = "category"

	upsertBatchSize = 256
)

// ErrHostRequired is returned when no Qdrant host is configured.
var ErrHostRequired = errors.New("qdrant host required")

// Config holds the connection settings for a Qdrant server.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return ErrHostRequired
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid qdrant port %d", c.Port)
	}
	return nil
}

// client is the subset of *qdrant.Client the store uses.
type client interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	Close() error
}

// Store is a storage.VectorStore backed by Qdrant.
type Store struct {
	client client
	logger *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// NewStore connects to Qdrant. The connection is shared by all callers.
func NewStore(config Config) (storage.VectorStore, error) {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		APIKey: config.APIKey,
		UseTLS: config.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant at %s:%d: %w", config.Host, config.Port, err)
	}

	store := newStore(c)
	store.logger.Info("connected to qdrant", "host", config.Host, "port", config.Port, "tls", config.UseTLS)
	return store, nil
}

func newStore(c client) *Store {
	return &Store{
		client: c,
		logger: slog.Default().With("component", "qdrant-store"),
	}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	return s.client.CollectionExists(ctx, name)
}

func (s *Store) CreateCollection(ctx context.Context, config storage.CollectionConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: config.Name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(config.Dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("%w: %s", storage.ErrCollectionExists, config.Name)
	}
	return mapError(config.Name, err)
}

func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	err := s.client.DeleteCollection(ctx, name)
	if status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}

// Upsert sends points in batches and waits for each batch to be applied.
func (s *Store) Upsert(ctx context.Context, collection string, points ...storage.Point) error {
	for batch := range slices.Chunk(points, upsertBatchSize) {
		structs := make([]*qdrant.PointStruct, len(batch))
		for i, p := range batch {
			structs[i] = &qdrant.PointStruct{
				Id:      toPointID(p.ID),
				Vectors: qdrant.NewVectors(p.Vector...),
				Payload: map[string]*qdrant.Value{
					payloadText:     qdrant.NewValueString(p.Payload.Text),
					payloadCategory: qdrant.NewValueString(p.Payload.Category),
				},
			}
		}

		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Wait:           qdrant.PtrOf(true),
			Points:         structs,
		})
		if err != nil {
			return mapError(collection, err)
		}
	}

	s.logger.Debug("upserted points", "collection", collection, "count", len(points))
	return nil
}

func (s *Store) Search(ctx context.Context, collection string, vector []float32, limit int) ([]storage.ScoredPoint, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, mapError(collection, err)
	}

	results := make([]storage.ScoredPoint, 0, len(hits))
	for _, hit := range hits {
		results = append(results, storage.ScoredPoint{
			ID:      fromPointID(hit.GetId()),
			Score:   hit.GetScore(),
			Payload: fromPayload(hit.GetPayload()),
		})
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Store) Count(ctx context.Context, collection string) (uint64, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, mapError(collection, err)
	}
	return count, nil
}

func toPointID(id core.PointID) *qdrant.PointId {
	if id.IsUUID() {
		return qdrant.NewIDUUID(id.UUID)
	}
	return qdrant.NewIDNum(id.Num)
}

func fromPointID(id *qdrant.PointId) core.PointID {
	if u := id.GetUuid(); u != "" {
		return core.PointID{UUID: u}
	}
	return core.NumericPointID(id.GetNum())
}

func fromPayload(payload map[string]*qdrant.Value) storage.Payload {
	return storage.Payload{
		Text:     payload[payloadText].GetStringValue(),
		Category: payload[payloadCategory].GetStringValue(),
	}
}

// mapError turns a gRPC NotFound into storage.ErrCollectionNotFound.
func mapError(collection string, err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %s: %w", storage.ErrCollectionNotFound, collection, err)
	}
	return err
}
