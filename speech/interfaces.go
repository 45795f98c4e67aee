// Package speech defines the speech and language services the assistant
// relies on: transcription, language identification, translation and
// speech synthesis.
package speech

import (
	"context"
	"errors"

	"github.com/poiesic/banktalk/core"
)

// ErrNoAudio is returned by a Synthesizer when the service answered but
// produced no audio.
var ErrNoAudio = errors.New("speech service returned no audio")

// Transcription is the result of transcribing an audio clip into English.
type Transcription struct {
	Transcript   string
	LanguageCode string // spoken language, empty when the service could not tell
}

// Transcriber converts speech into English text and reports the spoken language.
type Transcriber interface {
	Transcribe(ctx context.Context, audio *core.AudioInput) (*Transcription, error)
}

// LanguageIdentifier detects the language of a text.
type LanguageIdentifier interface {
	IdentifyLanguage(ctx context.Context, text string) (string, error)
}

// Translator translates text between two language codes.
type Translator interface {
	Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error)
}

// Synthesizer renders text as speech and returns base64-encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode string) (string, error)
}

// Service aggregates every speech capability. A single client usually
// implements all of them.
type Service interface {
	Transcriber
	LanguageIdentifier
	Translator
	Synthesizer
}
