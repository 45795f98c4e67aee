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


package banktalk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/banktalk/ai"
	"github.com/poiesic/banktalk/ai/googleai"
	"github.com/poiesic/banktalk/ai/openai"
	"github.com/poiesic/banktalk/assistant"
	"github.com/poiesic/banktalk/core"
	"github.com/poiesic/banktalk/ingestion"
	"github.com/poiesic/banktalk/retrieval"
	"github.com/poiesic/banktalk/speech"
	"github.com/poiesic/banktalk/speech/sarvam"
	"github.com/poiesic/banktalk/storage"
	"github.com/poiesic/banktalk/storage/badger"
	"github.com/poiesic/banktalk/storage/qdrant"
)

// Vector store backends understood by StoreConfig.Backend.
const (
	StoreQdrant = "qdrant"
	StoreBadger = "badger"
)

// DefaultCollection is the knowledge-base collection shared by ingestion and retrieval.
const DefaultCollection = "banking_kb"

var (
	ErrUnknownStore       = errors.New("unknown vector store backend")
	ErrBadgerPathRequired = errors.New("badger path required")
	ErrCollectionRequired = errors.New("collection name required")
)

// StoreConfig selects and configures the vector store.
type StoreConfig struct {
	Backend      string
	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
	QdrantTLS    bool
	BadgerPath   string
}

func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case StoreQdrant:
		qc := c.qdrantConfig()
		return qc.Validate()
	case StoreBadger:
		if c.BadgerPath == "" {
			return ErrBadgerPathRequired
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Backend)
	}
}

func (c *StoreConfig) qdrantConfig() qdrant.Config {
	return qdrant.Config{
		Host:   c.QdrantHost,
		Port:   c.QdrantPort,
		APIKey: c.QdrantAPIKey,
		UseTLS: c.QdrantTLS,
	}
}

// Config wires every external service the assistant talks to.
type Config struct {
	AI               *ai.Config
	Speech           *sarvam.Config
	Store            StoreConfig
	Collection       string
	FallbackLanguage string
	TopK             int
}

// DefaultConfig returns a Config pointing at a local Qdrant and the default
// Sarvam and Gemini models. API keys must still be supplied.
func DefaultConfig() *Config {
	return &Config{
		AI:     ai.DefaultConfig(),
		Speech: sarvam.DefaultConfig(),
		Store: StoreConfig{
			Backend:    StoreQdrant,
			QdrantHost: "localhost",
			QdrantPort: qdrant.DefaultPort,
		},
		Collection:       DefaultCollection,
		FallbackLanguage: core.EnglishLanguageCode,
		TopK:             retrieval.DefaultTopK,
	}
}

// Validate checks the settings shared by every command. Service credentials
// are checked by the constructors that need them.
func (c *Config) Validate() error {
	if c.Collection == "" {
		return ErrCollectionRequired
	}
	if c.AI == nil {
		c.AI = ai.DefaultConfig()
	}
	if c.Speech == nil {
		c.Speech = sarvam.DefaultConfig()
	}
	return c.Store.Validate()
}

// OpenStore opens the configured vector store.
func OpenStore(config StoreConfig) (storage.VectorStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Backend == StoreBadger {
		return badger.NewStore(config.BadgerPath)
	}
	return qdrant.NewStore(config.qdrantConfig())
}

// KnowledgeBase owns the vector store and the embedder used on both sides of
// the knowledge base: ingestion and retrieval.
type KnowledgeBase struct {
	store      storage.VectorStore
	embedder   ai.Embedder
	collection string
	topK       int
	logger     *slog.Logger
}

// OpenKnowledgeBase opens the store and builds the embedder. Only the
// embedding half of the AI config is required.
func OpenKnowledgeBase(config *Config) (*KnowledgeBase, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := openai.NewEmbedder(config.AI)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(config.Store)
	if err != nil {
		return nil, err
	}
	return newKnowledgeBase(store, embedder, config.Collection, config.TopK), nil
}

func newKnowledgeBase(store storage.VectorStore, embedder ai.Embedder, collection string, topK int) *KnowledgeBase {
	return &KnowledgeBase{
		store:      store,
		embedder:   embedder,
		collection: collection,
		topK:       topK,
		logger:     slog.Default(),
	}
}

func (kb *KnowledgeBase) Store() storage.VectorStore {
	return kb.store
}

func (kb *KnowledgeBase) Collection() string {
	return kb.collection
}

func (kb *KnowledgeBase) NewIngester(opts ...ingestion.Option) (*ingestion.Ingester, error) {
	return ingestion.NewIngester(kb.store, kb.embedder, kb.collection, opts...)
}

// NewRetriever builds a retriever using the configured top K. Options are
// applied after it and may override it.
func (kb *KnowledgeBase) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	if kb.topK > 0 {
		opts = append([]retrieval.Option{retrieval.WithTopK(kb.topK)}, opts...)
	}
	return retrieval.NewRetriever(kb.store, kb.embedder, kb.collection, opts...)
}

func (kb *KnowledgeBase) Close() error {
	if err := kb.store.Close(); err != nil {
		kb.logger.Error("error closing vector store", "err", err)
		return err
	}
	return nil
}

// Assistant is a fully wired banking assistant ready to answer chats.
type Assistant struct {
	kb       *KnowledgeBase
	provider ai.AIProvider
	pipeline *assistant.Pipeline
	logger   *slog.Logger
}

// OpenAssistant connects every service the chat pipeline needs. Clients are
// created once here and shared by all requests.
func OpenAssistant(ctx context.Context, config *Config, opts ...assistant.Option) (*Assistant, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := config.AI.Validate(); err != nil {
		return nil, err
	}

	speechClient, err := sarvam.NewClient(config.Speech)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator(ctx, config.AI)
	if err != nil {
		return nil, err
	}

	kb, err := OpenKnowledgeBase(config)
	if err != nil {
		return nil, err
	}

	provider, err := ai.NewProvider(kb.embedder, generator, serviceClosers(speechClient, kb.embedder, generator)...)
	if err != nil {
		kb.Close()
		return nil, err
	}

	a, err := newAssistant(kb, provider, speechClient, config.FallbackLanguage, opts...)
	if err != nil {
		provider.Close()
		kb.Close()
		return nil, err
	}
	return a, nil
}

// serviceClosers returns the service handles that hold resources to release.
func serviceClosers(services ...any) []io.Closer {
	var closers []io.Closer
	for _, svc := range services {
		if c, ok := svc.(io.Closer); ok {
			closers = append(closers, c)
		}
	}
	return closers
}

func newGenerator(ctx context.Context, config *ai.Config) (ai.AnswerGenerator, error) {
	switch config.GenerationProvider {
	case ai.ProviderGoogleAI:
		return googleai.NewGenerator(ctx, config)
	case ai.ProviderOpenAI:
		return openai.NewGenerator(config)
	default:
		return nil, ai.ErrUnknownGenerationProvider
	}
}

func newAssistant(kb *KnowledgeBase, provider ai.AIProvider, speechService speech.Service, fallbackLanguage string, opts ...assistant.Option) (*Assistant, error) {
	retriever, err := kb.NewRetriever()
	if err != nil {
		return nil, err
	}

	if fallbackLanguage != "" {
		opts = append([]assistant.Option{assistant.WithFallbackLanguage(fallbackLanguage)}, opts...)
	}
	pipeline, err := assistant.NewPipeline(speechService, retriever, provider.Generator(), opts...)
	if err != nil {
		return nil, err
	}

	return &Assistant{
		kb:       kb,
		provider: provider,
		pipeline: pipeline,
		logger:   slog.Default(),
	}, nil
}

func (a *Assistant) Pipeline() *assistant.Pipeline {
	return a.pipeline
}

func (a *Assistant) KnowledgeBase() *KnowledgeBase {
	return a.kb
}

// Chat answers a single request. See assistant.Pipeline.Chat.
func (a *Assistant) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	return a.pipeline.Chat(ctx, req)
}

func (a *Assistant) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}
	return a.kb.Close()
}
