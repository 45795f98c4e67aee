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


// Package ai provides abstractions for AI services used by banktalk.
//
// The package defines the two model-backed capabilities the assistant needs:
//
//   - Embedder: turns text into vectors for knowledge-base similarity search
//   - AnswerGenerator: turns a grounded prompt into an answer
//
// AIProvider aggregates both so a single value can be built at startup and
// handed to the retrieval and assistant packages.
//
// # Implementation Packages
//
//   - ai/openai: embeddings and chat answers against OpenAI-compatible APIs
//   - ai/googleai: answers from Gemini
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors in the backend packages return interface types.
// Mock constructors return concrete types so tests can inject behavior and
// assert call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithGenerationAPIKey(os.Getenv("GOOGLE_API_KEY")))
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	generator, err := googleai.NewGenerator(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	provider, err := ai.NewProvider(embedder, generator)
//
// The same embedding model must be used for ingestion and for queries:
// vectors from different models are not comparable.
package ai
