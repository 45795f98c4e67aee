package ingestion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/banktalk/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCorpus(t *testing.T) {
	t.Run("numeric and string ids", func(t *testing.T) {
		corpus, err := LoadCorpus(strings.NewReader(`[
			{"id": 1, "text": "Minimum balance is Rs 1000.", "category": "accounts"},
			{"id": "3f2504e0-4f89-11d3-9a0c-0305e82c3301", "text": "Cards can be blocked from the app."},
			{"id": "faq-7", "text": "Branches open at 10am."}
		]`), nil)
		require.NoError(t, err)

		assert.Equal(t, 3, corpus.Loaded)
		assert.Zero(t, corpus.Skipped)
		require.Len(t, corpus.Documents, 3)

		assert.Equal(t, core.NumericPointID(1), corpus.Documents[0].ID)
		assert.Equal(t, "1", corpus.Documents[0].SourceID)
		assert.Equal(t, "accounts", corpus.Documents[0].Category)

		assert.True(t, corpus.Documents[1].ID.IsUUID())
		assert.Equal(t, core.DefaultCategory, corpus.Documents[1].Category)

		assert.Equal(t, core.PointIDFromString("faq-7"), corpus.Documents[2].ID)
		assert.False(t, corpus.Documents[2].ID.IsUUID())
	})

	t.Run("skips malformed entries", func(t *testing.T) {
		corpus, err := LoadCorpus(strings.NewReader(`[
			{"id": 1, "text": "valid"},
			{"id": 2},
			{"text": "no id"},
			{"id": null, "text": "null id"},
			{"id": -4, "text": "negative id"},
			{"id": 1.5, "text": "fractional id"},
			{"id": 3, "text": 42},
			{"id": "", "text": "empty id"},
			"not an object",
			{"id": 5, "text": "also valid", "category": null}
		]`), nil)
		require.NoError(t, err)

		assert.Equal(t, 10, corpus.Loaded)
		assert.Equal(t, 8, corpus.Skipped)
		require.Len(t, corpus.Documents, 2)
		assert.Equal(t, "valid", corpus.Documents[0].Text)
		assert.Equal(t, core.DefaultCategory, corpus.Documents[1].Category)
	})

	t.Run("duplicate ids keep the later entry", func(t *testing.T) {
		corpus, err := LoadCorpus(strings.NewReader(`[
			{"id": 1, "text": "first"},
			{"id": "1", "text": "second"}
		]`), nil)
		require.NoError(t, err)

		require.Len(t, corpus.Documents, 1)
		assert.Equal(t, "second", corpus.Documents[0].Text)
	})

	t.Run("not an array", func(t *testing.T) {
		_, err := LoadCorpus(strings.NewReader(`{"id": 1}`), nil)
		assert.ErrorIs(t, err, ErrInvalidCorpus)
	})

	t.Run("empty array", func(t *testing.T) {
		corpus, err := LoadCorpus(strings.NewReader(`[]`), nil)
		require.NoError(t, err)
		assert.Empty(t, corpus.Documents)
	})
}

func TestLoadCorpusFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banking_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 9, "text": "Loans need collateral."}]`), 0644))

	corpus, err := LoadCorpusFile(path, nil)
	require.NoError(t, err)
	require.Len(t, corpus.Documents, 1)

	_, err = LoadCorpusFile(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
