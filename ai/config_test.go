package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "all-minilm", cfg.EmbeddingModel)
	assert.Equal(t, "none", cfg.EmbeddingToken)
	assert.Equal(t, ProviderGoogleAI, cfg.GenerationProvider)
	assert.Equal(t, "gemini-1.5-flash", cfg.GenerationModel)
	assert.Empty(t, cfg.GenerationAPIKey)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, ProviderGoogleAI, cfg.GenerationProvider)
	})

	t.Run("with custom embedding settings", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithEmbeddingModel("text-embedding-3-small"),
			WithEmbeddingToken("sk-embed"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "sk-embed", cfg.EmbeddingToken)
	})

	t.Run("with custom generation settings", func(t *testing.T) {
		cfg := NewConfig(
			WithGenerationProvider(ProviderOpenAI),
			WithGenerationHost("http://llm:9090"),
			WithGenerationModel("gpt-4o-mini"),
			WithGenerationAPIKey("secret"),
		)

		assert.Equal(t, ProviderOpenAI, cfg.GenerationProvider)
		assert.Equal(t, "http://llm:9090", cfg.GenerationHost)
		assert.Equal(t, "gpt-4o-mini", cfg.GenerationModel)
		assert.Equal(t, "secret", cfg.GenerationAPIKey)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{name: "already has /v1", host: "http://localhost:11434/v1", expected: "http://localhost:11434/v1"},
		{name: "missing /v1", host: "http://localhost:11434", expected: "http://localhost:11434/v1"},
		{name: "has trailing slash", host: "http://localhost:11434/", expected: "http://localhost:11434/v1"},
		{name: "empty host", host: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.EmbeddingHost)
		})
	}

	t.Run("generation host only normalized for openai", func(t *testing.T) {
		cfg := &Config{GenerationProvider: " GoogleAI ", GenerationHost: "http://llm:9090"}
		cfg.Normalize()
		assert.Equal(t, ProviderGoogleAI, cfg.GenerationProvider)
		assert.Equal(t, "http://llm:9090", cfg.GenerationHost)

		cfg = &Config{GenerationProvider: "openai", GenerationHost: "http://llm:9090"}
		cfg.Normalize()
		assert.Equal(t, "http://llm:9090/v1", cfg.GenerationHost)
	})

	t.Run("empty token becomes none", func(t *testing.T) {
		cfg := &Config{}
		cfg.Normalize()
		assert.Equal(t, "none", cfg.EmbeddingToken)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return NewConfig(WithGenerationAPIKey("key"))
	}

	t.Run("valid config", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("missing generation key", func(t *testing.T) {
		err := NewConfig().Validate()
		assert.True(t, errors.Is(err, ErrGenerationAPIKeyRequired))
	})

	t.Run("embedding-only validation ignores generation key", func(t *testing.T) {
		assert.NoError(t, NewConfig().ValidateEmbedding())
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := valid()
		cfg.EmbeddingModel = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingModel")
	})

	t.Run("missing embedding host", func(t *testing.T) {
		cfg := valid()
		cfg.EmbeddingHost = ""
		err := cfg.ValidateEmbedding()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingHost")
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := valid()
		cfg.GenerationProvider = "anthropic-on-a-toaster"
		assert.ErrorIs(t, cfg.Validate(), ErrUnknownGenerationProvider)
	})

	t.Run("openai provider needs a host", func(t *testing.T) {
		cfg := valid()
		cfg.GenerationProvider = ProviderOpenAI
		cfg.GenerationHost = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GenerationHost")
	})

	t.Run("missing generation model", func(t *testing.T) {
		cfg := valid()
		cfg.GenerationModel = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GenerationModel")
	})
}
