package assistant

import (
	"context"
	"log/slog"

	"github.com/poiesic/banktalk/ai"
	"github.com/poiesic/banktalk/core"
	"github.com/poiesic/banktalk/speech"
)

// PassageRetriever fetches knowledge-base passages for an English query.
// *retrieval.Retriever implements it.
type PassageRetriever interface {
	Retrieve(ctx context.Context, query string) ([]core.RetrievedPassage, error)
}

// Pipeline orchestrates one chat request. It holds only shared, read-only
// handles and is safe for concurrent use.
type Pipeline struct {
	speech           speech.Service
	retriever        PassageRetriever
	generator        ai.AnswerGenerator
	fallbackLanguage string
	logger           *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "assistant")
		return nil
	}
}

// WithFallbackLanguage sets the language assumed when it cannot be detected.
// Default is core.EnglishLanguageCode.
func WithFallbackLanguage(code string) Option {
	return func(p *Pipeline) error {
		if code != "" {
			p.fallbackLanguage = code
		}
		return nil
	}
}

// NewPipeline creates a new pipeline.
func NewPipeline(speechService speech.Service, retriever PassageRetriever, generator ai.AnswerGenerator, opts ...Option) (*Pipeline, error) {
	if speechService == nil {
		return nil, ErrSpeechServiceRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	p := &Pipeline{
		speech:           speechService,
		retriever:        retriever,
		generator:        generator,
		fallbackLanguage: core.EnglishLanguageCode,
		logger:           slog.Default().With("component", "assistant"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Chat answers req and returns the client response.
// It returns core.ErrNoInput when req carries neither text nor audio and a
// *TranscriptionError when the audio cannot be transcribed. All other
// failures are absorbed.
func (p *Pipeline) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	state, err := p.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return state.Response(), nil
}

// Run executes every stage and returns the final state, including the list
// of degraded stages.
func (p *Pipeline) Run(ctx context.Context, req *core.ChatRequest) (*core.PipelineState, error) {
	if err := core.ValidateChatRequest(req); err != nil {
		return nil, err
	}

	state := &core.PipelineState{}
	if err := p.normalize(ctx, req, state); err != nil {
		return nil, err
	}

	passages := p.retrieve(ctx, state.NormalizedText)
	record(state, StageRetrieval, passages)
	state.Passages = passages.Value

	answer := p.generate(ctx, state.NormalizedText, state.Passages)
	record(state, StageGeneration, answer)
	state.EnglishAnswer = answer.Value

	localized := p.translate(ctx, state.EnglishAnswer, core.EnglishLanguageCode, state.LanguageCode)
	record(state, StageTranslateAnswer, localized)
	state.LocalizedAnswer = localized.Value

	audio := p.synthesize(ctx, state.LocalizedAnswer, state.LanguageCode)
	record(state, StageSynthesis, audio)
	state.Audio = audio.Value
	if state.Audio == nil {
		state.LocalizedAnswer += AudioUnavailableNote
	}

	p.logger.Info("answered chat request",
		"language", state.LanguageCode,
		"audio_input", req.HasAudio(),
		"passages", len(state.Passages),
		"degraded", state.Degraded)
	return state, nil
}

// normalize fills RawUserText, NormalizedText and LanguageCode. Audio takes
// precedence over text.
func (p *Pipeline) normalize(ctx context.Context, req *core.ChatRequest, state *core.PipelineState) error {
	if req.HasAudio() {
		t, err := p.transcribe(ctx, req.Audio)
		if err != nil {
			return err
		}
		state.RawUserText = t.Transcript
		state.NormalizedText = t.Transcript
		if !state.SetLanguage(t.LanguageCode) {
			state.SetLanguage(p.fallbackLanguage)
		}
		return nil
	}

	state.RawUserText = req.Text
	language := p.identifyLanguage(ctx, req.Text)
	record(state, StageIdentifyLanguage, language)
	state.SetLanguage(language.Value)

	english := p.translate(ctx, req.Text, state.LanguageCode, core.EnglishLanguageCode)
	record(state, StageTranslateInput, english)
	state.NormalizedText = english.Value
	return nil
}

func record[T any](state *core.PipelineState, stage string, result StageResult[T]) {
	if result.Degraded() {
		state.MarkDegraded(stage)
	}
}
