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

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/poiesic/banktalk/core"
)

// corpusEntry is one element of the corpus array. ID stays raw because it
// may be a number or a string.
type corpusEntry struct {
	ID       json.RawMessage `json:"id"`
	Text     string          `json:"text"`
	Category string          `json:"category"`
}

// Corpus is the result of loading a corpus file.
type Corpus struct {
	Documents []core.KnowledgeDocument
	Loaded    int // entries in the file
	Skipped   int // entries rejected during validation
}

// LoadCorpusFile reads a corpus from path.
func LoadCorpusFile(path string, logger *slog.Logger) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCorpus(f, logger)
}

// LoadCorpus parses a JSON array of {"id", "text", "category"} objects.
//
// Entries missing an id or text, or that cannot be decoded, are skipped with
// a warning. A missing category becomes core.DefaultCategory. When an id
// repeats, the later entry replaces the earlier one.
func LoadCorpus(r io.Reader, logger *slog.Logger) (*Corpus, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCorpus, err)
	}

	corpus := &Corpus{Loaded: len(raw)}
	index := make(map[core.PointID]int, len(raw))

	for i, item := range raw {
		doc, err := parseEntry(item)
		if err != nil {
			corpus.Skipped++
			logger.Warn("skipping corpus entry", "index", i, "err", err)
			continue
		}

		if prev, dup := index[doc.ID]; dup {
			logger.Warn("duplicate document id, later entry wins", "index", i, "id", doc.SourceID)
			corpus.Documents[prev] = *doc
			continue
		}
		index[doc.ID] = len(corpus.Documents)
		corpus.Documents = append(corpus.Documents, *doc)
	}

	return corpus, nil
}

func parseEntry(item json.RawMessage) (*core.KnowledgeDocument, error) {
	var entry corpusEntry
	if err := sonic.Unmarshal(item, &entry); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidDocument, err)
	}

	sourceID, err := parseID(entry.ID)
	if err != nil {
		return nil, err
	}

	doc := &core.KnowledgeDocument{
		SourceID: sourceID,
		Text:     entry.Text,
		Category: entry.Category,
	}
	if err := core.ValidateKnowledgeDocument(doc); err != nil {
		return nil, err
	}

	if doc.Category == "" {
		doc.Category = core.DefaultCategory
	}
	doc.ID = core.PointIDFromString(sourceID)
	return doc, nil
}

// parseID accepts a non-negative integer or a non-empty string.
func parseID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%w: %w", core.ErrInvalidDocument, core.ErrMissingDocumentID)
	}

	if raw[0] == '"' {
		var s string
		if err := sonic.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: %w", core.ErrInvalidDocument, err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return "", fmt.Errorf("%w: %w", core.ErrInvalidDocument, core.ErrMissingDocumentID)
		}
		return s, nil
	}

	n, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: id %s is not a non-negative integer or string", core.ErrInvalidDocument, raw)
	}
	return strconv.FormatUint(n, 10), nil
}
