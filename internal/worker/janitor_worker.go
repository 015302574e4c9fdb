package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizora/quizora-backend/internal/service"
)

// JanitorWorker periodically prunes sessions that have not been touched
// within the retention window. One sweep walks every client with persisted
// sessions; per-client failures are logged and skipped so one bad record
// cannot stall the sweep.
type JanitorWorker struct {
	sessions  *service.SessionService
	retention time.Duration
	interval  time.Duration
	log       zerolog.Logger
}

// NewJanitorWorker creates a new JanitorWorker.
func NewJanitorWorker(sessions *service.SessionService, retention, interval time.Duration, log zerolog.Logger) *JanitorWorker {
	return &JanitorWorker{
		sessions:  sessions,
		retention: retention,
		interval:  interval,
		log:       log.With().Str("component", "janitor_worker").Logger(),
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (w *JanitorWorker) Start(ctx context.Context) {
	w.log.Info().
		Dur("retention", w.retention).
		Dur("interval", w.interval).
		Msg("JanitorWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("JanitorWorker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *JanitorWorker) sweep(ctx context.Context) {
	clientIDs, err := w.sessions.ClientIDs(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("Client scan failed")
		return
	}

	totalPruned := 0
	for _, clientID := range clientIDs {
		pruned, err := w.sessions.PruneIdle(ctx, clientID, w.retention)
		if err != nil {
			w.log.Warn().Err(err).Str("client_id", clientID).Msg("Prune failed")
			continue
		}
		totalPruned += pruned
	}

	if totalPruned > 0 {
		w.log.Info().
			Int("clients", len(clientIDs)).
			Int("pruned", totalPruned).
			Msg("Sweep complete")
	}
}
