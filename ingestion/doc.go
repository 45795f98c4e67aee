// Package ingestion rebuilds the knowledge-base collection from a corpus file.
//
// A rebuild is a full, idempotent replacement:
//   - load the corpus and skip entries missing an id or text
//   - embed every valid passage concurrently on a worker pool
//   - drop the collection if it exists and recreate it with the embedding
//     width and cosine distance
//   - upsert all points, waiting for acknowledgement
//   - report the resulting point count
//
// Embedding happens before the collection is touched, so a failing embedder
// leaves the previous knowledge base in place. Rebuilds of the same
// collection must not run concurrently.
package ingestion
