package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/poiesic/banktalk/core"
	"github.com/poiesic/banktalk/speech"
)

const (
	// RetrievalErrorPassage stands in for the passages when search fails.
	RetrievalErrorPassage = "An error occurred while fetching banking information from the knowledge base."

	// GenerationFallbackAnswer is sent when the language model call fails.
	GenerationFallbackAnswer = "I apologize, but I encountered an error while processing your request with the AI. Please try again."

	// AudioUnavailableNote is appended to the answer when no speech was produced.
	AudioUnavailableNote = "\n(Audio response could not be generated.)"
)

var errEmptyTranslation = errors.New("translator returned empty text")

// transcribe is the only stage without a fallback.
func (p *Pipeline) transcribe(ctx context.Context, audio *core.AudioInput) (*speech.Transcription, error) {
	t, err := p.speech.Transcribe(ctx, audio)
	if err != nil {
		p.logger.Error("transcription failed", "filename", audio.Filename, "err", err)
		return nil, &TranscriptionError{Err: err}
	}
	return t, nil
}

func (p *Pipeline) identifyLanguage(ctx context.Context, text string) StageResult[string] {
	code, err := p.speech.IdentifyLanguage(ctx, text)
	if err == nil && code == "" {
		err = errors.New("no language code detected")
	}
	if err != nil {
		p.logger.Warn("language identification failed, using fallback", "fallback", p.fallbackLanguage, "err", err)
		return fallback(p.fallbackLanguage, err)
	}
	return ok(code)
}

// translate returns text unchanged, without calling the service, when source
// and target match. On failure the original text is kept.
func (p *Pipeline) translate(ctx context.Context, text, source, target string) StageResult[string] {
	if source == target {
		p.logger.Debug("no translation needed", "language", source)
		return ok(text)
	}

	translated, err := p.speech.Translate(ctx, text, source, target)
	if err == nil && strings.TrimSpace(translated) == "" {
		err = errEmptyTranslation
	}
	if err != nil {
		p.logger.Warn("translation failed, keeping original text", "source", source, "target", target, "err", err)
		return fallback(text, err)
	}
	return ok(translated)
}

func (p *Pipeline) retrieve(ctx context.Context, query string) StageResult[[]core.RetrievedPassage] {
	passages, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		p.logger.Warn("retrieval failed, using error passage", "err", err)
		return fallback([]core.RetrievedPassage{{Text: RetrievalErrorPassage, Rank: 1}}, err)
	}
	return ok(passages)
}

func (p *Pipeline) generate(ctx context.Context, question string, passages []core.RetrievedPassage) StageResult[string] {
	prompt := BuildPrompt(question, core.PassageTexts(passages))
	p.logger.Debug("generating answer", "passages", len(passages), "prompt_length", len(prompt))

	answer, err := p.generator.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = errors.New("empty answer")
	}
	if err != nil {
		p.logger.Warn("answer generation failed, using fallback answer", "err", err)
		return fallback(GenerationFallbackAnswer, err)
	}
	return ok(answer)
}

// synthesize never fails the request. An empty audio list and a transport
// error both come back as a nil clip.
func (p *Pipeline) synthesize(ctx context.Context, text, language string) StageResult[*string] {
	audio, err := p.speech.Synthesize(ctx, text, language)
	if err == nil && audio == "" {
		err = speech.ErrNoAudio
	}
	if err != nil {
		if errors.Is(err, speech.ErrNoAudio) {
			p.logger.Warn("speech synthesis returned no audio", "language", language)
		} else {
			p.logger.Warn("speech synthesis failed", "language", language, "err", err)
		}
		return fallback[*string](nil, err)
	}
	return ok(&audio)
}
