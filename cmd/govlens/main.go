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

	"go.uber.org/zap"

	"github.com/whatthegovdoin/govlens/internal/config"
	"github.com/whatthegovdoin/govlens/internal/db"
	dbRedis "github.com/whatthegovdoin/govlens/internal/db/redis"
	"github.com/whatthegovdoin/govlens/internal/domain"
	logpkg "github.com/whatthegovdoin/govlens/internal/logger"
	"github.com/whatthegovdoin/govlens/internal/metrics"
	budgetrepo "github.com/whatthegovdoin/govlens/internal/repository/budget"
	documentrepo "github.com/whatthegovdoin/govlens/internal/repository/document"
	"github.com/whatthegovdoin/govlens/internal/repository/embcache"
	issuerepo "github.com/whatthegovdoin/govlens/internal/repository/issue"
	chiTransport "github.com/whatthegovdoin/govlens/internal/transport/chi"
	openaiTransport "github.com/whatthegovdoin/govlens/internal/transport/openai"
	"github.com/whatthegovdoin/govlens/internal/usecase/briefing"
	"github.com/whatthegovdoin/govlens/internal/usecase/budget"
	embeddinguc "github.com/whatthegovdoin/govlens/internal/usecase/embedding"
	"github.com/whatthegovdoin/govlens/internal/usecase/generation"
	healthuc "github.com/whatthegovdoin/govlens/internal/usecase/health"
	issueuc "github.com/whatthegovdoin/govlens/internal/usecase/issue"
	"github.com/whatthegovdoin/govlens/internal/usecase/narrative"
	"github.com/whatthegovdoin/govlens/internal/usecase/retrieval"
	"github.com/whatthegovdoin/govlens/internal/usecase/synopsis"
	usageuc "github.com/whatthegovdoin/govlens/internal/usecase/usage"
	"github.com/whatthegovdoin/govlens/internal/version"
)

const (
	budgetDailyTTL   = 48 * time.Hour
	budgetMonthlyTTL = 62 * 24 * time.Hour
)

func main() {
	// Load configuration based on ENV
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

	if err := run(cfg, env, logger); err != nil {
		logger.Fatal("govlens stopped with error", zap.Error(err))
	}
}

func run(cfg config.Config, env string, logger *zap.Logger) error {
	logger.Info("Starting govlens API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:        cfg.Database.Addrs,
		Username:     cfg.Database.Username,
		Password:     cfg.Database.Password,
		DB:           cfg.Database.DB,
		ClientName:   cfg.Database.ClientName,
		WriteTimeout: time.Duration(cfg.Database.WriteTimeoutSec) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	metrics.Register()

	// Budgets are always tracked so /api/usage reports consumption; limits of 0 never reject.
	budgetStore := budgetrepo.New(store, budgetDailyTTL, budgetMonthlyTTL)
	embBudget := newBudget(ctx, budget.KindEmbedding, cfg.Embedding.Provider, cfg.Embedding.Budget, budgetStore, logger)
	llmBudget := newBudget(ctx, budget.KindLLM, cfg.LLM.Provider, cfg.LLM.Budget, budgetStore, logger)

	embedder := buildEmbedder(cfg.Embedding, store, embBudget, logger)
	generator := generation.NewInstrumentedGenerator(
		openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Logger:      logger,
		}),
		cfg.LLM.Model, llmBudget, logger,
	)
	logger.Info("Model clients created",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.String("llm_model", cfg.LLM.Model),
	)

	retrievalSvc := retrieval.New(documentrepo.New(store), embedder, cfg.Retrieval.MaxQueryRunes)

	stage, err := synopsis.New(generator, synopsis.Config{
		Concurrency:   cfg.LLM.SynopsisConcurrency,
		RatePerSecond: cfg.LLM.RequestsPerSecond,
		Burst:         cfg.LLM.Burst,
		ItemTimeout:   time.Duration(cfg.LLM.SynopsisTimeoutSec) * time.Second,
		Backoff: synopsis.Backoff{
			Attempts: cfg.LLM.RetryAttempts,
			Base:     time.Duration(cfg.LLM.RetryBaseMs) * time.Millisecond,
			Cap:      time.Duration(cfg.LLM.RetryCapMs) * time.Millisecond,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create synopsis stage: %w", err)
	}
	defer stage.Release()

	composer := narrative.NewComposer(generator, narrative.Config{
		Timeout:       time.Duration(cfg.LLM.FinalTimeoutSec) * time.Second,
		FallbackRunes: cfg.Retrieval.SnippetRunes,
	}, logger)

	server := chiTransport.NewServer(
		retrievalSvc,
		briefing.New(retrievalSvc, stage, composer, cfg.Retrieval.SummaryTopK),
		issueuc.New(issuerepo.New(store)),
		usageuc.New(embBudget, llmBudget),
		healthuc.New(store, embedder, generator),
		chiTransport.Limits{
			DefaultTopK:  cfg.Retrieval.DefaultTopK,
			MaxTopK:      cfg.Retrieval.MaxTopK,
			SnippetRunes: cfg.Retrieval.SnippetRunes,
		},
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr: addr,
		Handler: chiTransport.NewRouter(server, chiTransport.RouterConfig{
			APIKeys:        cfg.Auth.APIKeys,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Logger:         logger,
		}),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func newBudget(
	ctx context.Context,
	kind, provider string,
	bc config.BudgetConfig,
	store budget.Store,
	logger *zap.Logger,
) *budget.Tracker {
	action := budget.ActionWarn
	if bc.Action == string(budget.ActionReject) {
		action = budget.ActionReject
	}
	return budget.New(budget.Config{
		Kind:         kind,
		Provider:     provider,
		DailyLimit:   bc.DailyTokenLimit,
		MonthlyLimit: bc.MonthlyTokenLimit,
		Action:       action,
	}, logger).WithStore(ctx, store)
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction -> BlankText.
func buildEmbedder(
	ec config.EmbeddingConfig,
	store db.Store,
	tracker *budget.Tracker,
	logger *zap.Logger,
) *domain.BlankTextEmbedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Timeout:    time.Duration(ec.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	var embedder domain.Embedder = embcache.New(base, store, embcache.Options{
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		TTL:        time.Duration(ec.CacheTTLSec) * time.Second,
	}, metrics.EmbeddingCacheTotal, logger)

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, tracker, logger)

	// Instruction prefix sits above the cache, so the cache key includes it.
	if ec.QueryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, ec.QueryInstruction)
	}

	return domain.NewBlankTextEmbedder(embedder, ec.Dimensions)
}
