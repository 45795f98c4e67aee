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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a KnowledgeDocument failed validation.
	ErrInvalidDocument = errors.New("invalid knowledge document")

	// ErrMissingDocumentID indicates the corpus entry has no usable id.
	ErrMissingDocumentID = errors.New("document id is missing")

	// ErrEmptyDocumentText indicates the corpus entry has no text.
	ErrEmptyDocumentText = errors.New("document text cannot be empty")

	// ErrNoInput indicates a chat request carried neither text nor audio.
	ErrNoInput = errors.New("no text or audio input provided")
)
