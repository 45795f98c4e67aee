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


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/banktalk"
	"github.com/poiesic/banktalk/ai"
	"github.com/poiesic/banktalk/core"
	"github.com/poiesic/banktalk/ingestion"
	"github.com/poiesic/banktalk/retrieval"
	"github.com/poiesic/banktalk/server"
	"github.com/poiesic/banktalk/speech/sarvam"
	"github.com/poiesic/banktalk/storage"
	"github.com/poiesic/banktalk/storage/qdrant"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "banktalk",
		Usage: "Multilingual voice and text banking assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before:   setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the chat API over HTTP",
				Action: serveCommand,
				Flags: append(append(storeFlags(), embeddingFlags()...), []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   server.DefaultAddr,
						EnvVars: []string{"BANKTALK_ADDR"},
					},
					&cli.StringFlag{
						Name:    "generation-provider",
						Usage:   "Answer generation backend (googleai, openai)",
						Value:   ai.ProviderGoogleAI,
						EnvVars: []string{"GENERATION_PROVIDER"},
					},
					&cli.StringFlag{
						Name:    "generation-host",
						Usage:   "OpenAI-compatible generation host URL (openai provider only)",
						Value:   "https://api.openai.com/v1",
						EnvVars: []string{"GENERATION_HOST"},
					},
					&cli.StringFlag{
						Name:    "generation-model",
						Usage:   "Answer generation model name",
						Value:   "gemini-1.5-flash",
						EnvVars: []string{"GENERATION_MODEL"},
					},
					&cli.StringFlag{
						Name:     "generation-api-key",
						Usage:    "API key for the answer generation provider",
						EnvVars:  []string{"GOOGLE_API_KEY", "GENERATION_API_KEY"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     "sarvam-api-key",
						Usage:    "Sarvam AI subscription key",
						EnvVars:  []string{"SARVAM_AI_API_KEY"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "sarvam-url",
						Usage:   "Sarvam AI API root",
						Value:   sarvam.DefaultBaseURL,
						EnvVars: []string{"SARVAM_AI_URL"},
					},
					&cli.StringFlag{
						Name:  "speaker",
						Usage: "Text-to-speech voice",
						Value: sarvam.DefaultSpeaker,
					},
					&cli.StringFlag{
						Name:  "fallback-language",
						Usage: "Language assumed when detection fails",
						Value: core.EnglishLanguageCode,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of passages used as answer context",
						Value: retrieval.DefaultTopK,
					},
				}...),
			},
			{
				Name:      "ingest",
				Usage:     "Rebuild the knowledge base from a JSON corpus",
				ArgsUsage: "<corpus.json>",
				Action:    ingestCommand,
				Flags: append(append(storeFlags(), embeddingFlags()...), []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent embedding workers (0 for default)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents embedded per request",
						Value: ingestion.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
				}...),
			},
			{
				Name:      "search",
				Usage:     "Show the passages retrieved for a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(append(storeFlags(), embeddingFlags()...), []cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of passages to retrieve",
						Value: retrieval.DefaultTopK,
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Trace the retrieval steps",
					},
				}...),
			},
		},
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "store",
			Usage:   "Vector store backend (qdrant, badger)",
			Value:   banktalk.StoreQdrant,
			EnvVars: []string{"VECTOR_STORE"},
		},
		&cli.StringFlag{
			Name:    "qdrant-host",
			Usage:   "Qdrant host",
			Value:   "localhost",
			EnvVars: []string{"QDRANT_HOST"},
		},
		&cli.IntFlag{
			Name:    "qdrant-port",
			Usage:   "Qdrant gRPC port",
			Value:   qdrant.DefaultPort,
			EnvVars: []string{"QDRANT_PORT"},
		},
		&cli.StringFlag{
			Name:    "qdrant-api-key",
			Usage:   "Qdrant API key",
			EnvVars: []string{"QDRANT_API_KEY"},
		},
		&cli.BoolFlag{
			Name:    "qdrant-tls",
			Usage:   "Connect to Qdrant over TLS",
			EnvVars: []string{"QDRANT_TLS"},
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory (badger store only)",
			EnvVars: []string{"BADGER_PATH"},
		},
		&cli.StringFlag{
			Name:    "collection",
			Usage:   "Knowledge-base collection name",
			Value:   banktalk.DefaultCollection,
			EnvVars: []string{"COLLECTION_NAME"},
		},
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "all-minilm",
			EnvVars: []string{"EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "embedding-api-key",
			Usage:   "Bearer token for the embedding service",
			EnvVars: []string{"EMBEDDING_API_KEY"},
		},
	}
}

// configFromFlags builds the shared configuration. Flags a command does not
// define read as zero values and leave the defaults alone.
func configFromFlags(c *cli.Context) *banktalk.Config {
	cfg := banktalk.DefaultConfig()
	cfg.Store = banktalk.StoreConfig{
		Backend:      strings.ToLower(c.String("store")),
		QdrantHost:   c.String("qdrant-host"),
		QdrantPort:   c.Int("qdrant-port"),
		QdrantAPIKey: c.String("qdrant-api-key"),
		QdrantTLS:    c.Bool("qdrant-tls"),
		BadgerPath:   c.String("db"),
	}
	cfg.Collection = c.String("collection")

	cfg.AI.EmbeddingHost = c.String("embedding-host")
	cfg.AI.EmbeddingModel = c.String("embedding-model")
	if token := c.String("embedding-api-key"); token != "" {
		cfg.AI.EmbeddingToken = token
	}
	if provider := c.String("generation-provider"); provider != "" {
		cfg.AI.GenerationProvider = provider
		cfg.AI.GenerationHost = c.String("generation-host")
		cfg.AI.GenerationModel = c.String("generation-model")
		cfg.AI.GenerationAPIKey = c.String("generation-api-key")
	}

	if key := c.String("sarvam-api-key"); key != "" {
		cfg.Speech.APIKey = key
	}
	if url := c.String("sarvam-url"); url != "" {
		cfg.Speech.BaseURL = url
	}
	if speaker := c.String("speaker"); speaker != "" {
		cfg.Speech.Speaker = speaker
	}
	if lang := c.String("fallback-language"); lang != "" {
		cfg.FallbackLanguage = lang
	}
	if k := c.Int("top-k"); k > 0 {
		cfg.TopK = k
	}
	return cfg
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := configFromFlags(c)
	assistant, err := banktalk.OpenAssistant(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize assistant: %w", err)
	}
	defer assistant.Close()

	srv, err := server.New(assistant, server.WithAddr(c.String("addr")))
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one corpus file is required")
	}
	corpusPath := c.Args().First()

	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if c.Int("report-interval") <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kb, err := banktalk.OpenKnowledgeBase(configFromFlags(c))
	if err != nil {
		return fmt.Errorf("failed to open knowledge base: %w", err)
	}
	defer kb.Close()

	opts := []ingestion.Option{
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithProgress(os.Stderr, c.Int("report-interval")),
	}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(workers))
	}
	ingester, err := kb.NewIngester(opts...)
	if err != nil {
		return fmt.Errorf("failed to create ingester: %w", err)
	}
	defer ingester.Release()

	report, err := ingester.RebuildFromFile(ctx, corpusPath)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	printReport(c.App.Writer, report)
	return nil
}

func printReport(w io.Writer, report *ingestion.Report) {
	fmt.Fprintf(w, "Collection:  %s\n", report.Collection)
	fmt.Fprintf(w, "Loaded:      %d\n", report.Loaded)
	fmt.Fprintf(w, "Skipped:     %d\n", report.Skipped)
	fmt.Fprintf(w, "Upserted:    %d\n", report.Upserted)
	fmt.Fprintf(w, "Dimensions:  %d\n", report.Dimension)
	fmt.Fprintf(w, "Points:      %d\n", report.Points)
	fmt.Fprintf(w, "Elapsed:     %s\n", report.Elapsed.Round(time.Millisecond))
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	kb, err := banktalk.OpenKnowledgeBase(configFromFlags(c))
	if err != nil {
		return fmt.Errorf("failed to open knowledge base: %w", err)
	}
	defer kb.Close()

	retriever, err := kb.NewRetriever()
	if err != nil {
		return err
	}

	var monitor retrieval.Monitor = quietMonitor{}
	if c.Bool("verbose") {
		monitor = &traceMonitor{w: c.App.ErrWriter}
	}
	passages, err := retriever.RetrieveWithMonitor(c.Context, query, monitor)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Found %d passages\n", len(passages))
	for _, p := range passages {
		fmt.Fprintf(c.App.Writer, "%d: '%s' [%0.3f]\n", p.Rank, p.Text, p.Score)
	}
	return nil
}

type quietMonitor struct{}

func (quietMonitor) Start(string)                      {}
func (quietMonitor) AfterEmbedding(int)                {}
func (quietMonitor) AfterSearch([]storage.ScoredPoint) {}
func (quietMonitor) SkippedHit(storage.ScoredPoint)    {}
func (quietMonitor) Finish([]core.RetrievedPassage)    {}

// traceMonitor prints every retrieval step.
type traceMonitor struct {
	w io.Writer
}

func (m *traceMonitor) Start(query string) {
	fmt.Fprintf(m.w, "query: %q\n", query)
}

func (m *traceMonitor) AfterEmbedding(dimensions int) {
	fmt.Fprintf(m.w, "embedded query (%d dimensions)\n", dimensions)
}

func (m *traceMonitor) AfterSearch(hits []storage.ScoredPoint) {
	fmt.Fprintf(m.w, "store returned %d hits\n", len(hits))
	for _, hit := range hits {
		fmt.Fprintf(m.w, "  %s [%0.3f] category=%s\n", hit.ID, hit.Score, hit.Payload.Category)
	}
}

func (m *traceMonitor) SkippedHit(hit storage.ScoredPoint) {
	fmt.Fprintf(m.w, "skipped %s: no text payload\n", hit.ID)
}

func (m *traceMonitor) Finish(passages []core.RetrievedPassage) {
	fmt.Fprintf(m.w, "%d passages kept\n", len(passages))
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
