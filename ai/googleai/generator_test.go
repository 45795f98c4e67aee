package googleai

import (
	"context"
	"testing"

	"github.com/poiesic/banktalk/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("requires an API key", func(t *testing.T) {
		cfg := ai.NewConfig()
		gen, err := NewGenerator(ctx, cfg)
		assert.ErrorIs(t, err, ai.ErrGenerationAPIKeyRequired)
		assert.Nil(t, gen)
	})

	t.Run("rejects other providers", func(t *testing.T) {
		cfg := ai.NewConfig(
			ai.WithGenerationProvider(ai.ProviderOpenAI),
			ai.WithGenerationModel("gpt-4o-mini"),
			ai.WithGenerationAPIKey("sk-test"),
		)
		gen, err := NewGenerator(ctx, cfg)
		assert.ErrorIs(t, err, ai.ErrUnknownGenerationProvider)
		assert.Nil(t, gen)
	})

	t.Run("rejects unknown providers", func(t *testing.T) {
		cfg := ai.NewConfig(
			ai.WithGenerationProvider("anthropic"),
			ai.WithGenerationAPIKey("key"),
		)
		_, err := NewGenerator(ctx, cfg)
		assert.ErrorIs(t, err, ai.ErrUnknownGenerationProvider)
	})

	t.Run("builds a client without calling the API", func(t *testing.T) {
		cfg := ai.NewConfig(ai.WithGenerationAPIKey("gemini-key"))
		gen, err := NewGenerator(ctx, cfg)
		require.NoError(t, err)
		require.IsType(t, &Generator{}, gen)
	})
}
