// Package googleai implements ai.AnswerGenerator with Gemini through langchaingo.
package googleai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/banktalk/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// ErrEmptyCompletion is returned when Gemini replies with no text.
var ErrEmptyCompletion = errors.New("gemini returned an empty completion")

// Generator answers prompts with a Gemini model.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

// NewGenerator creates a Gemini-backed answer generator. The client is built
// once and shared by all requests.
func NewGenerator(ctx context.Context, config *ai.Config) (ai.AnswerGenerator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.GenerationProvider != ai.ProviderGoogleAI {
		return nil, ai.ErrUnknownGenerationProvider
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(config.GenerationAPIKey),
		googleai.WithDefaultModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		logger: slog.Default().With("component", "gemini-generator", "model", config.GenerationModel),
	}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("sending prompt", "length", len(prompt))

	text, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt)
	if err != nil {
		g.logger.Error("gemini generation failed", "err", err)
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	g.logger.Debug("gemini answered", "length", len(text))
	return text, nil
}
