package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/banktalk/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEndpoint serves canned OpenAI-style replies and records request paths.
func fakeEndpoint(t *testing.T, embeddings, chat string) (*httptest.Server, *[]string) {
	t.Helper()
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			_, _ = io.WriteString(w, embeddings)
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			_, _ = io.WriteString(w, chat)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &paths
}

func TestNewEmbedder_Validation(t *testing.T) {
	_, err := NewEmbedder(&ai.Config{})
	assert.Error(t, err)
}

func TestEmbedder(t *testing.T) {
	t.Run("embeds a text", func(t *testing.T) {
		srv, paths := fakeEndpoint(t, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],"model":"all-minilm"}`, "")
		embedder, err := NewEmbedder(ai.NewConfig(ai.WithEmbeddingHost(srv.URL)))
		require.NoError(t, err)

		vec, err := embedder.EmbedText(context.Background(), "What is the minimum balance?")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
		assert.Equal(t, []string{"/v1/embeddings"}, *paths)
	})

	t.Run("vector count mismatch", func(t *testing.T) {
		srv, _ := fakeEndpoint(t, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2]}],"model":"all-minilm"}`, "")
		embedder, err := NewEmbedder(ai.NewConfig(ai.WithEmbeddingHost(srv.URL)))
		require.NoError(t, err)

		_, err = embedder.EmbedTexts(context.Background(), []string{"one", "two"})
		assert.Error(t, err)
	})
}

func TestGenerator(t *testing.T) {
	newConfig := func(host string) *ai.Config {
		return ai.NewConfig(
			ai.WithGenerationProvider(ai.ProviderOpenAI),
			ai.WithGenerationHost(host),
			ai.WithGenerationModel("gpt-4o-mini"),
			ai.WithGenerationAPIKey("sk-test"),
		)
	}

	t.Run("requires a key", func(t *testing.T) {
		cfg := newConfig("http://localhost")
		cfg.GenerationAPIKey = ""
		_, err := NewGenerator(cfg)
		assert.ErrorIs(t, err, ai.ErrGenerationAPIKeyRequired)
	})

	t.Run("returns the trimmed reply", func(t *testing.T) {
		srv, paths := fakeEndpoint(t, "", `{"id":"1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"  You need Rs 1000.  "},"finish_reason":"stop"}]}`)
		gen, err := NewGenerator(newConfig(srv.URL))
		require.NoError(t, err)

		answer, err := gen.Generate(context.Background(), "What is the minimum balance?")
		require.NoError(t, err)
		assert.Equal(t, "You need Rs 1000.", answer)
		assert.Equal(t, []string{"/v1/chat/completions"}, *paths)
	})

	t.Run("empty reply", func(t *testing.T) {
		srv, _ := fakeEndpoint(t, "", `{"id":"1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"   "},"finish_reason":"stop"}]}`)
		gen, err := NewGenerator(newConfig(srv.URL))
		require.NoError(t, err)

		_, err = gen.Generate(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})
}
