package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/quizora/quizora-backend/internal/model"
)

// MemorySessionRepository is an in-memory SessionRepository for tests and
// single-process development. Records are stored as JSON so loads return
// independent copies, matching the Redis implementation's semantics.
type MemorySessionRepository struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{records: make(map[string][]byte)}
}

func (m *MemorySessionRepository) Load(_ context.Context, clientID string) (*model.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.records[clientID]
	if !ok {
		return nil, nil
	}
	var rec model.SessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *MemorySessionRepository) Save(_ context.Context, clientID string, rec *model.SessionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[clientID] = raw
	return nil
}

func (m *MemorySessionRepository) ClientIDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	return ids, nil
}

// MemoryCreditRepository is an in-memory CreditRepository for tests and
// single-process development.
type MemoryCreditRepository struct {
	mu      sync.RWMutex
	records map[string]model.CreditRecord
}

func NewMemoryCreditRepository() *MemoryCreditRepository {
	return &MemoryCreditRepository{records: make(map[string]model.CreditRecord)}
}

func (m *MemoryCreditRepository) Load(_ context.Context, clientID string) (*model.CreditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[clientID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryCreditRepository) Save(_ context.Context, clientID string, rec *model.CreditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[clientID] = *rec
	return nil
}
