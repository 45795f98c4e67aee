package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/banktalk/storage"
)

// maxPointsPerTx bounds the size of a single write transaction.
const maxPointsPerTx = 1000

// Store implements storage.VectorStore on BadgerDB. Vectors are stored
// normalized and searched with an exact scan, which is fine for knowledge
// bases of a few thousand passages.
type Store struct {
	backend   *Backend
	ownsClose bool
	logger    *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// NewStore opens (or creates) an on-disk store at path.
func NewStore(path string) (storage.VectorStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newStore(backend, true), nil
}

// NewStoreWithBackend creates a store on an already opened backend.
// The caller keeps ownership of the backend.
func NewStoreWithBackend(backend *Backend) *Store {
	return newStore(backend, false)
}

func newStore(backend *Backend, ownsClose bool) *Store {
	return &Store{
		backend:   backend,
		ownsClose: ownsClose,
		logger:    slog.Default().With("component", "badger-store"),
	}
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.ownsClose || s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}

func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	if s.backend.IsClosed() {
		return false, storage.ErrStorageClosed
	}
	var exists bool
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := readCollection(tx, name)
		if errors.Is(err, storage.ErrCollectionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	}, false)
	return exists, err
}

func (s *Store) CreateCollection(ctx context.Context, config storage.CollectionConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if strings.Contains(config.Name, keySeparator) {
		return fmt.Errorf("%w: name contains NUL", storage.ErrInvalidCollection)
	}
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := readCollection(tx, config.Name)
		if err == nil {
			return storage.ErrCollectionExists
		}
		if !errors.Is(err, storage.ErrCollectionNotFound) {
			return err
		}

		value, err := storage.MarshalCollection(&config)
		if err != nil {
			return err
		}
		if err := tx.Set(makeCollectionKey(config.Name), value); err != nil {
			return err
		}
		s.logger.Debug("created collection", "name", config.Name, "dimension", config.Dimension)
		return tx.Commit()
	}, true)
}

func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	if err := s.backend.DropPrefix(makePointPrefix(name)); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCollectionKey(name)); err != nil {
			return err
		}
		s.logger.Debug("deleted collection", "name", name)
		return tx.Commit()
	}, true)
}

// Upsert writes points in chunks of maxPointsPerTx. Every vector is checked
// against the collection width before anything is written.
func (s *Store) Upsert(ctx context.Context, collection string, points ...storage.Point) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	var config *storage.CollectionConfig
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		config, err = readCollection(tx, collection)
		return err
	}, false)
	if err != nil {
		return err
	}

	for i := range points {
		if len(points[i].Vector) != config.Dimension {
			return fmt.Errorf("%w: point %s has %d values, collection %q expects %d",
				storage.ErrDimensionMismatch, points[i].ID, len(points[i].Vector), collection, config.Dimension)
		}
	}

	for chunk := range slices.Chunk(points, maxPointsPerTx) {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.backend.WithTx(func(tx *badger.Txn) error {
			for _, point := range chunk {
				point.Vector = storage.NormalizeVector(point.Vector)
				value, err := storage.MarshalPoint(&point)
				if err != nil {
					return err
				}
				if err := tx.Set(makePointKey(collection, point.ID), value); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
	}

	s.logger.Debug("upserted points", "collection", collection, "count", len(points))
	return nil
}

// Search scans every point of the collection.
func (s *Store) Search(ctx context.Context, collection string, vector []float32, limit int) ([]storage.ScoredPoint, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	query := storage.NormalizeVector(vector)
	var results []storage.ScoredPoint

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		config, err := readCollection(tx, collection)
		if err != nil {
			return err
		}
		if len(query) != config.Dimension {
			return fmt.Errorf("%w: query has %d values, collection %q expects %d",
				storage.ErrDimensionMismatch, len(query), collection, config.Dimension)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePointPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var point *storage.Point
			err := iter.Item().Value(func(val []byte) error {
				var err error
				point, err = storage.UnmarshalPoint(val)
				return err
			})
			if err != nil {
				return err
			}

			// Stored vectors are unit length, so the dot product is the cosine.
			results = append(results, storage.ScoredPoint{
				ID:      point.ID,
				Score:   storage.DotProduct(query, point.Vector),
				Payload: point.Payload,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b storage.ScoredPoint) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Store) Count(ctx context.Context, collection string) (uint64, error) {
	if s.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	var count uint64
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := readCollection(tx, collection); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePointPrefix(collection)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

func readCollection(tx *badger.Txn, name string) (*storage.CollectionConfig, error) {
	item, err := tx.Get(makeCollectionKey(name))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", storage.ErrCollectionNotFound, name)
		}
		return nil, err
	}

	var config *storage.CollectionConfig
	err = item.Value(func(val []byte) error {
		var err error
		config, err = storage.UnmarshalCollection(val)
		return err
	})
	return config, err
}
