package storage

import (
	"context"

	"github.com/poiesic/banktalk/core"
)

// Distance names the similarity metric of a collection.
type Distance string

const (
	DistanceCosine Distance = "cosine"
)

// CollectionConfig describes a vector collection.
type CollectionConfig struct {
	Name      string   `json:"name"`
	Dimension int      `json:"dimension"`
	Distance  Distance `json:"distance"`
}

// Validate checks that the collection can be created.
func (c CollectionConfig) Validate() error {
	if c.Name == "" || c.Dimension <= 0 {
		return ErrInvalidCollection
	}
	switch c.Distance {
	case DistanceCosine:
		return nil
	default:
		return ErrInvalidCollection
	}
}

// Payload is the data stored next to each vector.
type Payload struct {
	Text     string
	Category string
}

// HasText reports whether the payload carries passage text.
func (p Payload) HasText() bool {
	return p.Text != ""
}

// Point is a vector with its identifier and payload.
type Point struct {
	ID      core.PointID
	Vector  []float32
	Payload Payload
}

// ScoredPoint is a search hit. Higher scores are more similar.
type ScoredPoint struct {
	ID      core.PointID
	Score   float32
	Payload Payload
}

// VectorStore stores points in named collections and answers
// nearest-neighbour queries over them.
// Implementations must be thread-safe and support concurrent access.
type VectorStore interface {
	// CollectionExists reports whether the named collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// CreateCollection creates an empty collection.
	// Returns ErrCollectionExists if it already exists.
	CreateCollection(ctx context.Context, config CollectionConfig) error

	// DeleteCollection removes a collection and all of its points.
	// Deleting a missing collection is not an error.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert inserts or overwrites points by ID and returns once the
	// write is acknowledged.
	// Returns ErrCollectionNotFound or ErrDimensionMismatch.
	Upsert(ctx context.Context, collection string, points ...Point) error

	// Search returns at most limit points ordered by descending similarity.
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]ScoredPoint, error)

	// Count returns the exact number of points in a collection.
	Count(ctx context.Context, collection string) (uint64, error)

	// Close releases the underlying connection or database.
	Close() error
}
