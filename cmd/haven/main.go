package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/config"
	"github.com/kailas-cloud/haven/internal/db"
	dbRedis "github.com/kailas-cloud/haven/internal/db/redis"
	"github.com/kailas-cloud/haven/internal/domain"
	logpkg "github.com/kailas-cloud/haven/internal/logger"
	"github.com/kailas-cloud/haven/internal/metrics"
	"github.com/kailas-cloud/haven/internal/repository/embcache"
	outcomerepo "github.com/kailas-cloud/haven/internal/repository/outcome"
	anthropicGen "github.com/kailas-cloud/haven/internal/transport/anthropic"
	chiTransport "github.com/kailas-cloud/haven/internal/transport/chi"
	geminiGen "github.com/kailas-cloud/haven/internal/transport/gemini"
	openaiTransport "github.com/kailas-cloud/haven/internal/transport/openai"
	"github.com/kailas-cloud/haven/internal/transport/tavily"
	"github.com/kailas-cloud/haven/internal/usecase/embedding"
	"github.com/kailas-cloud/haven/internal/usecase/fallback"
	"github.com/kailas-cloud/haven/internal/usecase/format"
	healthuc "github.com/kailas-cloud/haven/internal/usecase/health"
	intentuc "github.com/kailas-cloud/haven/internal/usecase/intent"
	outcomeuc "github.com/kailas-cloud/haven/internal/usecase/outcome"
	"github.com/kailas-cloud/haven/internal/usecase/query"
	"github.com/kailas-cloud/haven/internal/usecase/rerank"
	"github.com/kailas-cloud/haven/internal/version"
)

const (
	pipelineSearch       = "search"
	pipelineConversation = "conversation"
)

func main() {
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting haven API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Bool("database", cfg.Database.Enabled()),
		zap.Bool("outcomes", cfg.Outcomes.Enabled),
	)

	if cfg.ThresholdsDiffer() {
		logger.Warn("Search and conversation pipelines use different confidence thresholds",
			zap.Float64("search_min_confidence", cfg.Pipeline.SearchMinConfidence),
			zap.Float64("conversation_min_confidence", cfg.Pipeline.ConversationMinConfidence),
		)
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	ctx := context.Background()

	// Optional database: embedding cache and outcome journal.
	var store db.Store
	if cfg.Database.Enabled() {
		store, err = openStore(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("Database not available", zap.Error(err))
		}
		defer store.Close()
		logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
	}

	embedder := buildEmbedder(cfg.Embedding, store, logger)

	gen, closeGen, err := buildGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create generator", zap.Error(err))
	}
	defer closeGen()
	logger.Info("Generator created",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", gen.ModelName()),
	)

	pool, err := ants.NewPool(cfg.Pipeline.RerankWorkers)
	if err != nil {
		logger.Fatal("Failed to create rerank pool", zap.Error(err))
	}
	defer pool.Release()

	searchClient := tavily.New(tavily.Config{
		APIKey:         cfg.Search.APIKey,
		BaseURL:        cfg.Search.BaseURL,
		SearchDepth:    cfg.Search.SearchDepth,
		MaxResults:     cfg.Search.MaxResults,
		IncludeDomains: cfg.Search.IncludeDomains,
		Timeout:        time.Duration(cfg.Search.TimeoutSec) * time.Second,
	}, logger)

	intents := intentuc.New(gen, logger)
	reranker := rerank.New(embedder, pool, logger).WithMaxCandidates(cfg.Pipeline.RerankMaxCandidates)
	hotline := format.Hotline{Name: cfg.Crisis.HotlineName, Number: cfg.Crisis.HotlineNumber}

	// Nil interface, not a typed nil pointer, when the journal is off.
	var journal outcomeuc.Journal
	if cfg.Outcomes.Enabled {
		journal = outcomerepo.New(store, cfg.Outcomes.KeepLast, logger)
	}
	recorder := outcomeuc.New(journal, logger)

	searchPipeline := query.New(
		query.Config{Pipeline: pipelineSearch, MinConfidence: cfg.Pipeline.SearchMinConfidence},
		query.Deps{
			Intents:  intents,
			Search:   searchClient,
			Rerank:   reranker,
			Format:   format.New(format.Listing, hotline),
			Fallback: fallback.New(gen, hotline, fallback.Written, logger),
			Outcomes: recorder,
		},
		logger,
	)
	conversationPipeline := query.New(
		query.Config{Pipeline: pipelineConversation, MinConfidence: cfg.Pipeline.ConversationMinConfidence},
		query.Deps{
			Intents:  intents,
			Search:   searchClient,
			Rerank:   reranker,
			Format:   format.New(format.Voice, hotline),
			Fallback: fallback.New(gen, hotline, fallback.Spoken, logger),
			Outcomes: recorder,
		},
		logger,
	)

	healthSvc := healthuc.New().
		With("embedding", embedder).
		With("search", searchClient)
	if store != nil {
		healthSvc.WithDatabase(store)
	}

	var outcomes chiTransport.OutcomeReader
	if journal != nil {
		outcomes = recorder
	}

	server := chiTransport.NewServer(searchPipeline, conversationPipeline, outcomes, healthSvc, hotline)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:        cfg.Auth.APIKeys,
		RequestTimeout: time.Duration(cfg.HTTP.RequestTimeoutSec) * time.Second,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore connects to Redis or Valkey. Both speak RESP and share the rueidis store.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "valkey", "redis":
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Addrs,
		Password:   cfg.Password,
		ClientName: "haven",
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("wait for ready: %w", err)
	}
	return store, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger) *embedding.InstrumentedEmbedder {
	base := openaiTransport.NewEmbedder(openaiTransport.Config{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		Provider: cfg.Provider,
	}, cfg.Dimensions, logger)

	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(
			base, store, cfg.Model, cfg.Dimensions,
			time.Duration(cfg.CacheTTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	return embedding.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, logger)
}

// buildGenerator selects the LLM provider. The returned func releases provider resources.
func buildGenerator(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (domain.Generator, func(), error) {
	noop := func() {}
	switch cfg.Provider {
	case "anthropic":
		return anthropicGen.NewGenerator(anthropicGen.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}, logger), noop, nil
	case "gemini":
		g, err := geminiGen.NewGenerator(ctx, geminiGen.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("gemini: %w", err)
		}
		return g, func() { _ = g.Close() }, nil
	case "openai", "":
		return openaiTransport.NewGenerator(openaiTransport.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: "openai",
		}, openaiTransport.GeneratorOptions{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}, logger), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
