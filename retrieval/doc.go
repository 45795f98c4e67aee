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


// Package retrieval finds the knowledge-base passages most similar to a query.
//
// The Retriever embeds the query with the same embedder used during ingestion,
// asks the vector store for the nearest points of the configured collection
// and returns their passage texts ranked by similarity. Hits without passage
// text are dropped, and never more than the configured top-K are returned.
package retrieval
