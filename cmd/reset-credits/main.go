package main

import (
	"context"
	"crypto/subtle"
	"flag"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/quizora/quizora-backend/internal/config"
	"github.com/quizora/quizora-backend/internal/database"
	"github.com/quizora/quizora-backend/internal/logger"
	"github.com/quizora/quizora-backend/internal/repository"
	"github.com/quizora/quizora-backend/internal/secret"
	"github.com/quizora/quizora-backend/internal/service"
)

// Ops tool: restores a client's credit allotment directly against the store.
// Prompts for the ops secret so the value never lands in shell history.
func main() {
	clientID := flag.String("client", "", "client ID whose credits to reset")
	flag.Parse()

	if *clientID == "" {
		fmt.Fprintln(os.Stderr, "Usage: reset-credits -client <client_id>")
		os.Exit(1)
	}

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.OpsSecret == "" {
		fmt.Fprintln(os.Stderr, "Error: OPS_SECRET is not configured")
		os.Exit(1)
	}

	fmt.Print("Ops secret: ")
	byteSecret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading secret")
		os.Exit(1)
	}
	if subtle.ConstantTimeCompare(byteSecret, []byte(cfg.OpsSecret)) != 1 {
		fmt.Fprintln(os.Stderr, "Error: ops secret mismatch")
		os.Exit(1)
	}

	ctx := context.Background()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	box, err := secret.NewBox(cfg.SealSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to derive sealing key")
	}

	creditRepo := repository.NewRedisCreditRepository(rdb)
	creditService := service.NewCreditService(creditRepo, box, nil, cfg.InitialCredits, log)

	if err := creditService.ResetCredits(ctx, *clientID); err != nil {
		log.Fatal().Err(err).Str("client_id", *clientID).Msg("Failed to reset credits")
	}

	state, err := creditService.State(ctx, *clientID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read credits back")
	}

	fmt.Printf("\nSuccess! Client %s now has %d credits\n", *clientID, state.CreditsRemaining)
}
