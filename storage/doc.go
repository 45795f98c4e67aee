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


// Package storage provides the vector storage abstraction for banktalk.
//
// This package defines the VectorStore interface that decouples the knowledge
// base from the database holding it. Two backends implement it:
//
//   - qdrant: the production store, reached over gRPC
//   - badger: an embedded store for local development and tests that scans
//     every point of a collection with exact cosine similarity
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return storage.VectorStore so
// callers cannot couple themselves to a specific backend:
//
//	store, err := qdrant.NewStore(qdrant.Config{Host: "localhost", Port: 6334})
//	store, err := badger.NewStore("/path/to/db")
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// # Thread Safety
//
// All store implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All store methods accept context.Context for cancellation
// and timeout support.
package storage
