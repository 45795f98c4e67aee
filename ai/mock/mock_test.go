package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("deterministic unit vectors", func(t *testing.T) {
		m := NewMockEmbedder()
		a, err := m.EmbedText(ctx, "savings account")
		require.NoError(t, err)
		b, err := m.EmbedText(ctx, "savings account")
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.Len(t, a, DefaultDimension)

		var sum float64
		for _, v := range a {
			sum += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
		assert.Equal(t, 2, m.CallCount())
	})

	t.Run("batch matches single", func(t *testing.T) {
		m := &MockEmbedder{Dimension: 8}
		single, err := m.EmbedText(ctx, "loan")
		require.NoError(t, err)
		batch, err := m.EmbedTexts(ctx, []string{"loan", "card"})
		require.NoError(t, err)

		require.Len(t, batch, 2)
		assert.Equal(t, single, batch[0])
		assert.Len(t, batch[1], 8)
	})

	t.Run("reset", func(t *testing.T) {
		m := NewMockEmbedder()
		m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1}, nil
		}
		_, _ = m.EmbedText(ctx, "x")
		m.Reset()
		assert.Equal(t, 0, m.CallCount())
		assert.Nil(t, m.EmbedTextFunc)
	})
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider().(*MockProvider)

	answer, err := p.Generator().Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, DefaultAnswer, answer)
	assert.Equal(t, "hello", p.GetMockGenerator().LastPrompt())
	assert.Equal(t, 1, p.GetMockGenerator().CallCount())

	require.NoError(t, p.Close())
	assert.True(t, p.Closed())
}
