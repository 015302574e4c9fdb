package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/quizora/quizora-backend/internal/config"
	"github.com/quizora/quizora-backend/internal/model"
)

// CreditRepository persists per-client credit records. Load returns
// (nil, nil) when the client has no record yet (fresh allotment applies).
// The session and credit records hydrate independently; neither assumes
// the other has been loaded.
type CreditRepository interface {
	Load(ctx context.Context, clientID string) (*model.CreditRecord, error)
	Save(ctx context.Context, clientID string, rec *model.CreditRecord) error
}

// RedisCreditRepository stores each client's credit record as one JSON value.
type RedisCreditRepository struct {
	rdb *redis.Client
}

// NewRedisCreditRepository creates a new RedisCreditRepository.
func NewRedisCreditRepository(rdb *redis.Client) *RedisCreditRepository {
	return &RedisCreditRepository{rdb: rdb}
}

func (r *RedisCreditRepository) Load(ctx context.Context, clientID string) (*model.CreditRecord, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.ClientCreditsKey(clientID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credit record: %w", err)
	}

	var rec model.CreditRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode credit record: %w", err)
	}
	return &rec, nil
}

func (r *RedisCreditRepository) Save(ctx context.Context, clientID string, rec *model.CreditRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode credit record: %w", err)
	}
	if err := r.rdb.Set(ctx, config.CacheKey.ClientCreditsKey(clientID), raw, 0).Err(); err != nil {
		return fmt.Errorf("save credit record: %w", err)
	}
	return nil
}
