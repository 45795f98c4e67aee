// Package mock provides a test double for speech.Service.
package mock

import (
	"context"
	"sync"

	"github.com/poiesic/banktalk/core"
	"github.com/poiesic/banktalk/speech"
)

// MockService is a test double for speech.Service.
//
// Without injected functions it behaves like an English-only service:
// transcripts echo the filename, every text is en-IN, translation returns the
// input and synthesis returns a fixed clip.
type MockService struct {
	TranscribeFunc       func(ctx context.Context, audio *core.AudioInput) (*speech.Transcription, error)
	IdentifyLanguageFunc func(ctx context.Context, text string) (string, error)
	TranslateFunc        func(ctx context.Context, text, source, target string) (string, error)
	SynthesizeFunc       func(ctx context.Context, text, languageCode string) (string, error)

	mu    sync.Mutex
	calls map[string]int
}

// DefaultAudio is the base64 clip returned by Synthesize by default.
const DefaultAudio = "UklGRiQAAABXQVZF"

var _ speech.Service = (*MockService)(nil)

func NewMockService() *MockService {
	return &MockService{calls: make(map[string]int)}
}

func (m *MockService) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// CallCount returns how many times method was called.
func (m *MockService) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockService) Transcribe(ctx context.Context, audio *core.AudioInput) (*speech.Transcription, error) {
	m.record("Transcribe")
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio)
	}
	return &speech.Transcription{Transcript: audio.Filename, LanguageCode: core.EnglishLanguageCode}, nil
}

func (m *MockService) IdentifyLanguage(ctx context.Context, text string) (string, error) {
	m.record("IdentifyLanguage")
	if m.IdentifyLanguageFunc != nil {
		return m.IdentifyLanguageFunc(ctx, text)
	}
	return core.EnglishLanguageCode, nil
}

func (m *MockService) Translate(ctx context.Context, text, source, target string) (string, error) {
	m.record("Translate")
	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, source, target)
	}
	return text, nil
}

func (m *MockService) Synthesize(ctx context.Context, text, languageCode string) (string, error) {
	m.record("Synthesize")
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, languageCode)
	}
	return DefaultAudio, nil
}
