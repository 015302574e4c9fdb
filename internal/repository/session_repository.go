package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/quizora/quizora-backend/internal/config"
	"github.com/quizora/quizora-backend/internal/model"
)

// SessionRepository persists per-client session records in a durable
// key-value store. Load returns (nil, nil) for a client with no record yet;
// callers must distinguish "not yet persisted" from a load failure, because
// only the former may be treated as an empty collection.
type SessionRepository interface {
	Load(ctx context.Context, clientID string) (*model.SessionRecord, error)
	Save(ctx context.Context, clientID string, rec *model.SessionRecord) error
	// ClientIDs lists every client with a persisted session record.
	ClientIDs(ctx context.Context) ([]string, error)
}

// RedisSessionRepository stores each client's record as one JSON value.
type RedisSessionRepository struct {
	rdb *redis.Client
}

// NewRedisSessionRepository creates a new RedisSessionRepository.
func NewRedisSessionRepository(rdb *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb}
}

func (r *RedisSessionRepository) Load(ctx context.Context, clientID string) (*model.SessionRecord, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.ClientSessionsKey(clientID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session record: %w", err)
	}

	var rec model.SessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}
	return &rec, nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, clientID string, rec *model.SessionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if err := r.rdb.Set(ctx, config.CacheKey.ClientSessionsKey(clientID), raw, 0).Err(); err != nil {
		return fmt.Errorf("save session record: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) ClientIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.rdb.Scan(ctx, 0, config.CacheKey.ClientSessionsPattern(), 100).Iterator()
	for iter.Next(ctx) {
		if id, ok := clientIDFromKey(iter.Val()); ok {
			ids = append(ids, id)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan session records: %w", err)
	}
	return ids, nil
}

// clientIDFromKey extracts the client ID from "client:{id}:sessions".
func clientIDFromKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, "client:")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, ":sessions")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
