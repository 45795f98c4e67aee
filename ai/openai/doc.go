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


// Package openai implements ai.Embedder and ai.AnswerGenerator on top of
// OpenAI-compatible HTTP APIs through langchaingo.
//
// Embeddings usually come from a local server (Ollama, LocalAI, vLLM) running
// a sentence-transformer model such as all-MiniLM-L6-v2. Local servers that do
// not check credentials accept the token "none".
package openai
