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


package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when a vector store is not provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCollectionRequired is returned when no collection name is given.
	ErrCollectionRequired = errors.New("collection name required")

	// ErrNoValidDocuments is returned when the corpus has nothing to ingest.
	ErrNoValidDocuments = errors.New("no valid documents to ingest")

	// ErrInvalidCorpus is returned when the corpus is not a JSON array.
	ErrInvalidCorpus = errors.New("corpus must be a JSON array of documents")

	// ErrEmbeddingMismatch is returned when the embedder's output does not
	// line up with its input or vector widths differ.
	ErrEmbeddingMismatch = errors.New("embedding result mismatch")
)
