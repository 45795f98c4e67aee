package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/banktalk/ai"
	"github.com/poiesic/banktalk/core"
	"github.com/poiesic/banktalk/storage"
)

// DefaultBatchSize is the number of passages sent to the embedder per call.
const DefaultBatchSize = 32

// Report summarizes a rebuild.
type Report struct {
	Collection string
	Loaded     int // entries read from the corpus
	Skipped    int // entries rejected during validation
	Upserted   int
	Dimension  int
	Points     uint64 // point count reported by the store afterwards
	Elapsed    time.Duration
}

// Ingester rebuilds a knowledge-base collection.
type Ingester struct {
	store          storage.VectorStore
	embedder       ai.Embedder
	collection     string
	pool           *ants.Pool
	batchSize      int
	progress       io.Writer
	reportInterval int
	logger         *slog.Logger
}

// Option configures an Ingester.
type Option func(*Ingester) error

// WithPoolSize sets the number of concurrent embedding calls.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(in *Ingester) error {
		if size < 1 {
			size = 1
		}

		if in.pool != nil {
			in.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		in.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of passages per embedding call.
func WithBatchSize(size int) Option {
	return func(in *Ingester) error {
		if size < 1 {
			size = 1
		}
		in.batchSize = size
		return nil
	}
}

// WithProgress prints embedding progress to w every interval passages.
func WithProgress(w io.Writer, interval int) Option {
	return func(in *Ingester) error {
		in.progress = w
		in.reportInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(in *Ingester) error {
		if logger == nil {
			logger = slog.Default()
		}
		in.logger = logger.With("component", "ingester")
		return nil
	}
}

// NewIngester creates a new ingester. Call Release when done.
func NewIngester(store storage.VectorStore, embedder ai.Embedder, collection string, opts ...Option) (*Ingester, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	in := &Ingester{
		store:      store,
		embedder:   embedder,
		collection: collection,
		pool:       pool,
		batchSize:  DefaultBatchSize,
		logger:     slog.Default().With("component", "ingester"),
	}

	for _, opt := range opts {
		if optErr := opt(in); optErr != nil {
			in.Release()
			return nil, optErr
		}
	}

	return in, nil
}

// Release releases the worker pool.
// The ingester should not be used after calling Release.
func (in *Ingester) Release() {
	if in.pool != nil {
		in.pool.Release()
	}
}

// RebuildFromFile loads the corpus at path and rebuilds the collection from it.
func (in *Ingester) RebuildFromFile(ctx context.Context, path string) (*Report, error) {
	corpus, err := LoadCorpusFile(path, in.logger)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}
	in.logger.Info("loaded corpus", "path", path, "entries", corpus.Loaded, "skipped", corpus.Skipped)

	report, err := in.Rebuild(ctx, corpus.Documents)
	if err != nil {
		return nil, err
	}
	report.Loaded = corpus.Loaded
	report.Skipped = corpus.Skipped
	return report, nil
}

// Rebuild replaces the collection with docs.
func (in *Ingester) Rebuild(ctx context.Context, docs []core.KnowledgeDocument) (*Report, error) {
	start := time.Now()
	if len(docs) == 0 {
		return nil, ErrNoValidDocuments
	}

	vectors, err := in.embed(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	dimension := len(vectors[0])

	exists, err := in.store.CollectionExists(ctx, in.collection)
	if err != nil {
		return nil, err
	}
	if exists {
		in.logger.Info("dropping existing collection", "collection", in.collection)
		if err := in.store.DeleteCollection(ctx, in.collection); err != nil {
			return nil, fmt.Errorf("delete collection %s: %w", in.collection, err)
		}
	}

	err = in.store.CreateCollection(ctx, storage.CollectionConfig{
		Name:      in.collection,
		Dimension: dimension,
		Distance:  storage.DistanceCosine,
	})
	if err != nil {
		return nil, fmt.Errorf("create collection %s: %w", in.collection, err)
	}
	in.logger.Info("created collection", "collection", in.collection, "dimension", dimension)

	points := make([]storage.Point, len(docs))
	for i, doc := range docs {
		points[i] = storage.Point{
			ID:     doc.ID,
			Vector: vectors[i],
			Payload: storage.Payload{
				Text:     doc.Text,
				Category: doc.Category,
			},
		}
	}
	if err := in.store.Upsert(ctx, in.collection, points...); err != nil {
		return nil, fmt.Errorf("upsert points: %w", err)
	}

	count, err := in.store.Count(ctx, in.collection)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Collection: in.collection,
		Loaded:     len(docs),
		Upserted:   len(points),
		Dimension:  dimension,
		Points:     count,
		Elapsed:    time.Since(start),
	}
	in.logger.Info("ingestion complete", "collection", in.collection, "points", count, "elapsed", report.Elapsed)
	return report, nil
}

// embed embeds docs in batches on the pool. Vectors come back in doc order
// and all share one width.
func (in *Ingester) embed(parent context.Context, docs []core.KnowledgeDocument) ([][]float32, error) {
	vectors := make([][]float32, len(docs))

	var tracker *ProgressTracker
	if in.progress != nil {
		tracker = NewProgressTracker(in.progress, len(docs), in.reportInterval)
		tracker.Start()
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for start := 0; start < len(docs); start += in.batchSize {
		end := min(start+in.batchSize, len(docs))
		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = docs[start+i].Text
		}

		wg.Add(1)
		offset := start
		err := in.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			batch, err := in.embedder.EmbedTexts(ctx, texts)
			if err != nil {
				in.logger.Error("error embedding batch", "offset", offset, "size", len(texts), "err", err)
				fail(err)
				return
			}
			if len(batch) != len(texts) {
				fail(fmt.Errorf("%w: expected %d embeddings, got %d", ErrEmbeddingMismatch, len(texts), len(batch)))
				return
			}
			copy(vectors[offset:], batch)
			if tracker != nil {
				tracker.Increment(len(batch))
			}
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	if tracker != nil {
		tracker.Finish()
	}

	dimension := len(vectors[0])
	if dimension == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrEmbeddingMismatch)
	}
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("%w: document %s has width %d, expected %d",
				ErrEmbeddingMismatch, docs[i].SourceID, len(v), dimension)
		}
	}
	return vectors, nil
}
