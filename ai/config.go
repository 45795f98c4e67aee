// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// Generation providers understood by Config.GenerationProvider.
const (
	// ProviderGoogleAI generates answers with Gemini through the Google AI API.
	ProviderGoogleAI = "googleai"
	// ProviderOpenAI generates answers with any OpenAI-compatible chat endpoint.
	ProviderOpenAI = "openai"
)

var (
	// ErrGenerationAPIKeyRequired is returned when no key is configured for the answer generator.
	ErrGenerationAPIKeyRequired = errors.New("ai config: GenerationAPIKey is required")

	// ErrUnknownGenerationProvider is returned for an unsupported GenerationProvider.
	ErrUnknownGenerationProvider = errors.New("ai config: unknown generation provider")
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Ingestion and query embedding must use the same model.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string

	// EmbeddingToken is the bearer token for the embedding service.
	// Local servers that don't require authentication accept "none".
	EmbeddingToken string

	// GenerationProvider selects the answer generator backend, ProviderGoogleAI or ProviderOpenAI.
	GenerationProvider string

	// GenerationHost is the base URL for ProviderOpenAI. Ignored for ProviderGoogleAI.
	GenerationHost string

	// GenerationModel is the model identifier used to answer questions.
	// Example: "gemini-1.5-flash", "gpt-4o-mini"
	GenerationModel string

	// GenerationAPIKey authenticates against the generation provider.
	GenerationAPIKey string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbeddingToken sets the embedding service bearer token.
func WithEmbeddingToken(token string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingToken = token
	}
}

// WithGenerationProvider sets the answer generation backend.
func WithGenerationProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.GenerationProvider = provider
	}
}

// WithGenerationHost sets the OpenAI-compatible generation host URL.
func WithGenerationHost(host string) ConfigOption {
	return func(c *Config) {
		c.GenerationHost = host
	}
}

// WithGenerationModel sets the answer generation model identifier.
func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

// WithGenerationAPIKey sets the answer generation API key.
func WithGenerationAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.GenerationAPIKey = key
	}
}

// DefaultConfig returns a Config with sensible defaults: a local OpenAI-compatible
// embedding server running all-MiniLM-L6-v2 and Gemini for answers.
// GenerationAPIKey has no default and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:      "http://localhost:11434/v1",
		EmbeddingModel:     "all-minilm",
		EmbeddingToken:     "none",
		GenerationProvider: ProviderGoogleAI,
		GenerationHost:     "https://api.openai.com/v1",
		GenerationModel:    "gemini-1.5-flash",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithEmbeddingHost("http://localhost:11434/v1"),
//	    WithGenerationAPIKey(os.Getenv("GOOGLE_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to OpenAI-compatible hosts if missing and
// lower-cases the provider name.
func (c *Config) Normalize() {
	c.EmbeddingHost = withV1Suffix(c.EmbeddingHost)
	c.GenerationProvider = strings.ToLower(strings.TrimSpace(c.GenerationProvider))
	if c.GenerationProvider == ProviderOpenAI {
		c.GenerationHost = withV1Suffix(c.GenerationHost)
	}
	if c.EmbeddingToken == "" {
		c.EmbeddingToken = "none"
	}
}

func withV1Suffix(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// ValidateEmbedding checks only the embedding settings. Commands that never
// generate answers, such as ingestion, validate with this.
func (c *Config) ValidateEmbedding() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	return nil
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	if err := c.ValidateEmbedding(); err != nil {
		return err
	}

	switch c.GenerationProvider {
	case ProviderGoogleAI:
	case ProviderOpenAI:
		if c.GenerationHost == "" {
			return errors.New("ai config: GenerationHost is required for the openai provider")
		}
	default:
		return ErrUnknownGenerationProvider
	}
	if c.GenerationModel == "" {
		return errors.New("ai config: GenerationModel is required")
	}
	if c.GenerationAPIKey == "" {
		return ErrGenerationAPIKeyRequired
	}
	return nil
}
