package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/talentlens/talentlens-backend/internal/config"
	"github.com/talentlens/talentlens-backend/internal/database"
	"github.com/talentlens/talentlens-backend/internal/handler"
	"github.com/talentlens/talentlens-backend/internal/logger"
	"github.com/talentlens/talentlens-backend/internal/repository"
	"github.com/talentlens/talentlens-backend/internal/router"
	"github.com/talentlens/talentlens-backend/internal/scoring"
	"github.com/talentlens/talentlens-backend/internal/service"
	"github.com/talentlens/talentlens-backend/internal/validator"
	"github.com/talentlens/talentlens-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting TalentLens Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	competencyRepo := repository.NewCompetencyRepository(pool)
	indicatorRepo := repository.NewIndicatorRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)
	monitorRepo := repository.NewMonitorRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	selector := service.NewQuestionSelector(indicatorRepo, questionRepo)
	sessionService := service.NewSessionService(
		templateRepo, sessionRepo, answerRepo, selector,
		scoring.DefaultRegistry(), rdb, log,
	)
	statsService := service.NewStatsService(statsRepo, rdb, cfg, log)
	catalogService := service.NewCatalogService(templateRepo, competencyRepo)
	monitorService := service.NewMonitorService(monitorRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, adminRepo),
		Catalog: handler.NewCatalogHandler(catalogService),
		Session: handler.NewSessionHandler(sessionService),
		Stats:   handler.NewStatsHandler(statsService),
		Monitor: handler.NewMonitorHandler(rdb, catalogService, monitorService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	answerEventWorker := worker.NewAnswerEventWorker(pool, rdb, log)
	go answerEventWorker.Start(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Compute the entity stats report BEFORE accepting traffic so the
	// first dashboard request never pays the aggregation cost.
	if err := statsService.Prewarm(ctx); err != nil {
		log.Warn().Err(err).Msg("Stats prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
