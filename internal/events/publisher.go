// Package events fans store-change notifications out to a client's open
// tabs via Redis pub/sub. Delivery is best-effort: a dropped event only
// delays a UI refresh, so publish failures are logged, never propagated.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizora/quizora-backend/internal/config"
)

// Event types pushed over the client channel.
const (
	TypeSessionCreated   = "session_created"
	TypeSessionUpdated   = "session_updated"
	TypeSessionDeleted   = "session_deleted"
	TypeAnalysisAttached = "analysis_attached"
	TypeCreditsChanged   = "credits_changed"
)

// Event is one store-change notification.
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher publishes events on a per-client Redis channel.
type Publisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewPublisher creates a new Publisher.
func NewPublisher(rdb *redis.Client, log zerolog.Logger) *Publisher {
	return &Publisher{
		rdb: rdb,
		log: log.With().Str("component", "events").Logger(),
	}
}

// Publish sends an event to the client's channel. Best-effort.
func (p *Publisher) Publish(ctx context.Context, clientID string, ev Event) {
	if p == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		p.log.Error().Err(err).Str("type", ev.Type).Msg("Encode event failed")
		return
	}
	if err := p.rdb.Publish(ctx, config.CacheKey.ClientEventsChannel(clientID), raw).Err(); err != nil {
		p.log.Warn().Err(err).Str("type", ev.Type).Msg("Publish event failed")
	}
}

// Subscribe opens a subscription on the client's channel. The caller owns
// the returned PubSub and must Close it.
func (p *Publisher) Subscribe(ctx context.Context, clientID string) *redis.PubSub {
	return p.rdb.Subscribe(ctx, config.CacheKey.ClientEventsChannel(clientID))
}
