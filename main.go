package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/config"
	"github.com/duahurufo/exeloka-engine/pkg/database"
	"github.com/duahurufo/exeloka-engine/pkg/handlers"
	"github.com/duahurufo/exeloka-engine/pkg/llm"
	"github.com/duahurufo/exeloka-engine/pkg/logging"
	"github.com/duahurufo/exeloka-engine/pkg/middleware"
	"github.com/duahurufo/exeloka-engine/pkg/prompts"
	"github.com/duahurufo/exeloka-engine/pkg/repositories"
	"github.com/duahurufo/exeloka-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("provider_kind", cfg.Provider.Kind),
		zap.Bool("provider_available", cfg.Provider.IsAvailable()))

	ctx := context.Background()

	// Migrations run over database/sql; the application pool is pgx.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// No credential means degraded mode: the orchestrator falls back to its
	// local heuristics instead of calling a provider.
	var client llm.Client
	if cfg.Provider.IsAvailable() {
		client, err = llm.New(cfg.Provider.Kind, &llm.ClientConfig{
			BaseURL: cfg.Provider.BaseURL,
			APIKey:  cfg.Provider.APIKey,
			Timeout: cfg.Provider.RequestTimeout(),
			ModelOverrides: map[llm.TaskType]string{
				llm.TaskCulturalAnalysis:         cfg.Provider.CulturalAnalysisModel,
				llm.TaskRecommendationGeneration: cfg.Provider.RecommendationModel,
				llm.TaskContentExtraction:        cfg.Provider.ContentExtractionModel,
				llm.TaskFeedbackAnalysis:         cfg.Provider.FeedbackAnalysisModel,
			},
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create provider client", zap.Error(err))
		}
	} else {
		logger.Warn("No provider credential configured, running in degraded mode")
	}

	registry := prompts.NewRegistry()
	if cfg.PromptTemplatesPath != "" {
		registry, err = prompts.LoadRegistry(cfg.PromptTemplatesPath)
		if err != nil {
			logger.Fatal("Failed to load prompt templates", zap.Error(err))
		}
	}

	projectRepo := repositories.NewProjectRepository(db)
	wisdomRepo := repositories.NewWisdomRepository(db)
	recommendationRepo := repositories.NewRecommendationRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)
	insightRepo := repositories.NewInsightRepository(db)

	orchestrator := services.NewOrchestrator(client, logger)
	retrieval := services.NewRetrievalService(wisdomRepo, redisClient, logger)
	quickScorer := services.NewQuickScorer(cfg.Scorer.SnapshotPath, logger)
	confidence := services.NewConfidenceScorer()

	recommendationService := services.NewRecommendationService(
		projectRepo, recommendationRepo, retrieval, quickScorer,
		confidence, orchestrator, registry, logger)
	recalibrator := services.NewRecalibrator(
		recommendationRepo, feedbackRepo, insightRepo, orchestrator, logger)
	ingestion := services.NewIngestionService(wisdomRepo, orchestrator, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewRecommendationsHandler(recommendationService, recalibrator, logger).RegisterRoutes(mux)
	handlers.NewInsightsHandler(recalibrator, logger).RegisterRoutes(mux)
	handlers.NewKnowledgeHandler(ingestion, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting exeloka-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
