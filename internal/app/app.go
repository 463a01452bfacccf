// ABOUTME: Builds the assistant's object graph from configuration
// ABOUTME: Shared by every command so the CLI, HTTP server and MCP server wire components the same way
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/harper/wodsmith/internal/charm"
	"github.com/harper/wodsmith/internal/config"
	"github.com/harper/wodsmith/internal/core"
	"github.com/harper/wodsmith/internal/generator"
	"github.com/harper/wodsmith/internal/ingest"
	"github.com/harper/wodsmith/internal/llm"
	"github.com/harper/wodsmith/internal/logging"
	"github.com/harper/wodsmith/internal/metrics"
	"github.com/harper/wodsmith/internal/rag"
	"github.com/harper/wodsmith/internal/session"
	"github.com/harper/wodsmith/internal/storage"
	"github.com/harper/wodsmith/internal/storage/sqlite"
	"github.com/harper/wodsmith/internal/vectorstore"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// App holds every long-lived component
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Backend    vectorstore.Backend
	Collection *vectorstore.Collection
	Retriever  *rag.Retriever
	Loader     *ingest.Loader
	Sessions   *session.Store

	// Nil when no LLM key is configured
	LLM          *llm.OpenAIClient
	Generator    *generator.Generator
	Orchestrator *core.Orchestrator
	PDFParser    *ingest.PDFParser

	charm *charm.Client
}

// Build opens the vector collection and wires the components. LLM-backed components are
// only built when an API key is configured; callers that need them check HasLLM.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	if err := a.openBackend(); err != nil {
		return nil, err
	}

	a.Collection, err = vectorstore.Open(ctx, vectorstore.Options{
		Name:   cfg.CollectionName,
		Metric: vectorstore.Metric(cfg.DistanceMetric),
	}, a.Backend, embedder, logger)
	if err != nil {
		_ = a.Backend.Close()
		return nil, err
	}

	a.Retriever = rag.NewRetriever(a.Collection, logger)
	a.Loader = ingest.NewLoader(a.Collection, logger)
	a.Sessions = session.NewStore(cfg.SessionTTL, a.Metrics)

	if cfg.LLMAPIKey != "" {
		a.LLM, err = llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
			APIKey:     cfg.LLMAPIKey,
			BaseURL:    cfg.LLMBaseURL,
			ChatModel:  cfg.ChatModel,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		})
		if err != nil {
			_ = a.Close()
			return nil, err
		}

		a.Generator = generator.New(a.LLM, a.Retriever, generator.Config{
			References:            cfg.RetrievalCount,
			MaxTokens:             cfg.MaxOutputTokens,
			GenerationTemperature: float32(cfg.GenerationTemperature),
			EditTemperature:       float32(cfg.EditTemperature),
		}, logger)
		a.Generator.SetRecorder(a.Metrics)

		a.Orchestrator = core.NewOrchestrator(a.Generator, a.Collection, logger)
		a.Orchestrator.SetRecorder(a.Metrics)

		a.PDFParser = ingest.NewPDFParser(a.LLM, logger)
		a.PDFParser.SetRecorder(a.Metrics)
	}

	logger.Info("assistant ready",
		zap.String("backend", cfg.VectorBackend),
		zap.String("collection", cfg.CollectionName),
		zap.String("embeddings", cfg.EmbeddingProvider),
		zap.Bool("llm", a.HasLLM()))
	return a, nil
}

// HasLLM reports whether generation, editing and PDF structuring are available
func (a *App) HasLLM() bool {
	return a.Orchestrator != nil
}

// Seed loads the seed directory when the collection is empty
func (a *App) Seed(ctx context.Context) (int, error) {
	if a.Config.SeedDir == "" {
		return 0, nil
	}
	return a.Loader.InitializeIfEmpty(ctx, a.Config.SeedDir)
}

// Sync pushes and pulls the charm database. Only meaningful for the charm backend.
func (a *App) Sync() error {
	if a.charm == nil {
		return errors.New("sync requires VECTOR_BACKEND=charm")
	}
	return a.charm.Sync()
}

// Close releases the backend
func (a *App) Close() error {
	if a.Backend == nil {
		return nil
	}
	return a.Backend.Close()
}

func (a *App) openBackend() error {
	cfg := a.Config
	switch cfg.VectorBackend {
	case "memory":
		a.Backend = vectorstore.NewMemoryBackend()
	case "charm":
		client, err := charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: cfg.AutoSync,
		})
		if err != nil {
			return err
		}
		a.charm = client
		a.Backend = storage.NewCharmBackend(client)
	default:
		backend, err := sqlite.OpenBackend(cfg.VectorDBPath)
		if err != nil {
			return err
		}
		a.Backend = backend
	}
	return nil
}

func newEmbedder(cfg *config.Config) (vectorstore.Embedder, error) {
	if cfg.EmbeddingProvider != "openai" {
		return vectorstore.NewHashEmbedder(cfg.LocalEmbeddingDim), nil
	}

	apiKey := cfg.EmbeddingAPIKey
	baseURL := cfg.EmbeddingBaseURL
	if apiKey == "" && cfg.LLMBaseURL == "" {
		apiKey = cfg.LLMAPIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("EMBEDDING_PROVIDER=openai needs EMBEDDING_API_KEY or OPENAI_API_KEY")
	}

	client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
		APIKey:         apiKey,
		BaseURL:        baseURL,
		EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
