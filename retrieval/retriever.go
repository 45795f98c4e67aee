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


package retrieval

import (
	"context"
	"log/slog"

	"github.com/poiesic/banktalk/ai"
	"github.com/poiesic/banktalk/core"
	"github.com/poiesic/banktalk/storage"
)

// DefaultTopK is the number of passages fetched for every query.
const DefaultTopK = 2

// Retriever performs semantic search over a knowledge-base collection.
type Retriever struct {
	store      storage.VectorStore
	embedder   ai.Embedder
	collection string
	topK       int
	logger     *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "retriever")
		return nil
	}
}

// WithTopK overrides DefaultTopK.
func WithTopK(k int) Option {
	return func(r *Retriever) error {
		if k <= 0 {
			return ErrInvalidTopK
		}
		r.topK = k
		return nil
	}
}

// NewRetriever creates a new retriever over collection.
func NewRetriever(store storage.VectorStore, embedder ai.Embedder, collection string, opts ...Option) (*Retriever, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	r := &Retriever{
		store:      store,
		embedder:   embedder,
		collection: collection,
		topK:       DefaultTopK,
		logger:     slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// TopK returns the number of passages requested per query.
func (r *Retriever) TopK() int {
	return r.topK
}

// Retrieve returns up to TopK passages for query, most similar first.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]core.RetrievedPassage, error) {
	return r.RetrieveWithMonitor(ctx, query, nil)
}

// RetrieveWithMonitor is Retrieve with callbacks at each step.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, monitor Monitor) ([]core.RetrievedPassage, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(len(embedding))

	hits, err := r.store.Search(ctx, r.collection, embedding, r.topK)
	if err != nil {
		r.logger.Error("error searching knowledge base", "collection", r.collection, "err", err)
		return nil, err
	}
	monitor.AfterSearch(hits)

	passages := make([]core.RetrievedPassage, 0, len(hits))
	for _, hit := range hits {
		if !hit.Payload.HasText() {
			monitor.SkippedHit(hit)
			continue
		}
		passages = append(passages, core.RetrievedPassage{
			Text:  hit.Payload.Text,
			Rank:  len(passages) + 1,
			Score: hit.Score,
		})
		if len(passages) == r.topK {
			break
		}
	}

	r.logger.Debug("retrieved passages", "count", len(passages))
	monitor.Finish(passages)
	return passages, nil
}
