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

import "fmt"

// ValidateKnowledgeDocument validates a KnowledgeDocument according to domain rules.
//
// Validation rules:
//   - SourceID must not be empty
//   - Text must not be empty
//
// Category is not validated; an empty category is replaced by DefaultCategory
// when the document is loaded.
func ValidateKnowledgeDocument(doc *KnowledgeDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.SourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingDocumentID)
	}

	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentText)
	}

	return nil
}

// ValidateChatRequest checks that a request carries something to answer.
func ValidateChatRequest(req *ChatRequest) error {
	if !req.HasAudio() && !req.HasText() {
		return ErrNoInput
	}
	return nil
}
