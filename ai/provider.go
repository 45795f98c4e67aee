package ai

import (
	"errors"
	"io"
)

// ErrEmbedderRequired is returned when a provider is assembled without an embedder.
var ErrEmbedderRequired = errors.New("embedder required")

// ErrGeneratorRequired is returned when a provider is assembled without a generator.
var ErrGeneratorRequired = errors.New("answer generator required")

type provider struct {
	embedder  Embedder
	generator AnswerGenerator
	closers   []io.Closer
}

// NewProvider aggregates an embedder and a generator built by the backend
// packages. Closers are released in order when the provider is closed.
func NewProvider(embedder Embedder, generator AnswerGenerator, closers ...io.Closer) (AIProvider, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	return &provider{
		embedder:  embedder,
		generator: generator,
		closers:   closers,
	}, nil
}

func (p *provider) Embedder() Embedder {
	return p.embedder
}

func (p *provider) Generator() AnswerGenerator {
	return p.generator
}

func (p *provider) Close() error {
	var errs []error
	for _, c := range p.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
