package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizora/quizora-backend/internal/ai"
	"github.com/quizora/quizora-backend/internal/config"
	"github.com/quizora/quizora-backend/internal/database"
	"github.com/quizora/quizora-backend/internal/events"
	"github.com/quizora/quizora-backend/internal/handler"
	"github.com/quizora/quizora-backend/internal/ident"
	"github.com/quizora/quizora-backend/internal/logger"
	"github.com/quizora/quizora-backend/internal/repository"
	"github.com/quizora/quizora-backend/internal/router"
	"github.com/quizora/quizora-backend/internal/scoring"
	"github.com/quizora/quizora-backend/internal/secret"
	"github.com/quizora/quizora-backend/internal/service"
	"github.com/quizora/quizora-backend/internal/validator"
	"github.com/quizora/quizora-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("ai_provider", cfg.AIProvider).
		Msg("Starting Quizora Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Credential Sealing ────────────────────────────────────────────
	box, err := secret.NewBox(cfg.SealSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to derive sealing key")
	}

	// ─── AI Collaborator ───────────────────────────────────────────────
	collaborator, err := ai.NewCollaborator(ctx, cfg.AIProvider, ai.GeminiConfig{
		APIKey: cfg.GeminiKey,
		Model:  cfg.GeminiModel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AI collaborator")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	sessionRepo := repository.NewRedisSessionRepository(rdb)
	creditRepo := repository.NewRedisCreditRepository(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	publisher := events.NewPublisher(rdb, log)
	clientService := service.NewClientService(cfg)
	sessionService := service.NewSessionService(sessionRepo, ident.TimeRandom{}, publisher, log)
	creditService := service.NewCreditService(creditRepo, box, publisher, cfg.InitialCredits, log)
	generationService := service.NewGenerationService(
		creditService,
		sessionService,
		collaborator,
		scoring.FirstDigits{},
		cfg.TextTimeout,
		cfg.FileTimeout,
		log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Client:   handler.NewClientHandler(clientService),
		Generate: handler.NewGenerateHandler(generationService, cfg.MaxUploadBytes),
		Session:  handler.NewSessionHandler(sessionService, generationService),
		Credit:   handler.NewCreditHandler(creditService, cfg),
		WS:       handler.NewWSHandler(publisher, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	janitor := worker.NewJanitorWorker(sessionService, cfg.SessionRetention, cfg.JanitorInterval, log)
	go janitor.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(clientService, handlers, cfg)

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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
