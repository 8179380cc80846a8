package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/querygate/engine/pkg/adapters/datasource"
	"github.com/querygate/engine/pkg/adapters/datasource/duckdb"
	"github.com/querygate/engine/pkg/adapters/datasource/postgres"
	"github.com/querygate/engine/pkg/audit"
	"github.com/querygate/engine/pkg/config"
	"github.com/querygate/engine/pkg/handlers"
	"github.com/querygate/engine/pkg/llm"
	"github.com/querygate/engine/pkg/middleware"
	"github.com/querygate/engine/pkg/retrieval"
	"github.com/querygate/engine/pkg/services"
	"github.com/querygate/engine/pkg/validation"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("datastore", cfg.Datastore.Type),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execution engine
	duckdb.Register()
	postgres.Register()
	conn, err := datasource.Open(ctx, cfg.Datastore)
	if err != nil {
		logger.Fatal("failed to open datastore", zap.Error(err))
	}
	defer conn.Executor.Close()

	// Schema catalog
	catalog, err := buildCatalog(ctx, cfg, conn, logger)
	if err != nil {
		logger.Fatal("failed to build schema catalog", zap.Error(err))
	}

	// SQL generation collaborator
	client, err := llm.NewFromConfig(cfg.LLM, logger)
	if err != nil {
		logger.Fatal("failed to create LLM client", zap.Error(err))
	}
	retriever := buildRetriever(cfg, client, logger)

	// Validation pipeline and conversation services
	validator := validation.NewOrchestrator(validation.OrchestratorConfig{
		ClarityThreshold: cfg.Validation.ClarityThreshold,
		MediumBoundary:   cfg.Validation.MediumBoundary,
		ComplexBoundary:  cfg.Validation.ComplexBoundary,
		CheckTimeout:     time.Duration(cfg.Validation.CheckTimeoutSeconds) * time.Second,
	}, logger)

	generator := services.NewGeneratorService(client, retriever, cfg.LLM.Temperature, logger)
	sessions := services.NewSessionStore()
	chat := services.NewChatService(
		catalog,
		generator,
		validator,
		validation.NewClarityScorer(cfg.Validation.ClarityThreshold),
		services.NewDecisionGate(),
		services.NewExecutionAnalyzer(),
		services.NewRegenerationController(generator, cfg.Validation.MaxRegenerationAttempts, logger),
		conn.Executor,
		sessions,
		services.ChatConfig{
			ClarityThreshold: cfg.Validation.ClarityThreshold,
			SelectRowLimit:   cfg.Datastore.SelectRowLimit,
		},
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewSessionHandler(sessions, chat, audit.NewSecurityAuditor(logger), logger).RegisterRoutes(mux)
	handlers.NewCatalogHandler(catalog, logger).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting querygate-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildCatalog prefers a YAML snapshot when one is configured; otherwise
// the live catalog is introspected at startup. A failed introspection is
// not fatal: the catalog starts empty and can be refreshed over the API.
func buildCatalog(ctx context.Context, cfg *config.Config, conn *datasource.Connection, logger *zap.Logger) (services.CatalogService, error) {
	if path := cfg.Datastore.SchemaSnapshotPath; path != "" {
		return services.NewCatalogFromSnapshot(path, conn.Extractor, logger)
	}

	catalog := services.NewCatalogService(conn.Extractor, logger)
	if err := catalog.Refresh(ctx); err != nil {
		logger.Warn("initial catalog refresh failed", zap.Error(err))
	}
	return catalog, nil
}

// buildRetriever returns an embedding-backed context retriever when the
// provider supports embeddings, and a no-op retriever otherwise.
func buildRetriever(cfg *config.Config, client llm.Client, logger *zap.Logger) retrieval.ContextRetriever {
	if cfg.LLM.Provider == "anthropic" {
		return retrieval.NopRetriever{}
	}
	return retrieval.NewEmbeddingStore(client, cfg.LLM.EmbeddingModel, logger)
}
