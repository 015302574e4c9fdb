package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizora/quizora-backend/internal/events"
	"github.com/quizora/quizora-backend/internal/ident"
	"github.com/quizora/quizora-backend/internal/model"
	"github.com/quizora/quizora-backend/internal/normalizer"
	"github.com/quizora/quizora-backend/internal/repository"
)

// SessionService owns every client's quiz-session collection and the
// per-client "current session" pointer.
//
// Two policies shape its contract:
//   - Tolerant lookups: operations against a missing session ID are silent
//     no-ops returning a nil sentinel, never an error. Stale IDs (for example
//     from a shared link to a session that only ever lived in another
//     client's storage) are expected traffic.
//   - Hydration before authority: a client's record is loaded from the
//     repository on first touch. If that load fails, the failure propagates;
//     a miss against unhydrated state must never read as "deleted".
//
// The current session is a denormalized copy of one collection entry. Every
// mutation runs through updateSession, which refreshes the copy in the same
// step, so the two can never be observed divergent.
type SessionService struct {
	repo   repository.SessionRepository
	ids    ident.Generator
	events *events.Publisher
	log    zerolog.Logger
	now    func() time.Time

	mu     sync.Mutex
	states map[string]*clientState
}

type clientState struct {
	mu      sync.Mutex
	record  model.SessionRecord
	current *model.QuizSession
}

// DefaultRecentLimit is used when GetRecentSessions is called with limit <= 0.
const DefaultRecentLimit = 5

// NewSessionService creates a new SessionService. pub may be nil (tests).
func NewSessionService(repo repository.SessionRepository, ids ident.Generator, pub *events.Publisher, log zerolog.Logger) *SessionService {
	return &SessionService{
		repo:   repo,
		ids:    ids,
		events: pub,
		log:    log.With().Str("component", "session_service").Logger(),
		now:    time.Now,
		states: make(map[string]*clientState),
	}
}

// state returns the client's hydrated state, loading it from the repository
// on first touch. The returned state is locked; the caller must unlock it.
func (s *SessionService) state(ctx context.Context, clientID string) (*clientState, error) {
	s.mu.Lock()
	st, ok := s.states[clientID]
	if !ok {
		st = &clientState{}
		s.states[clientID] = st
	}
	s.mu.Unlock()

	st.mu.Lock()
	if st.record.Sessions == nil {
		rec, err := s.repo.Load(ctx, clientID)
		if err != nil {
			st.mu.Unlock()
			return nil, fmt.Errorf("hydrate sessions for client %s: %w", clientID, err)
		}
		if rec == nil {
			rec = &model.SessionRecord{}
		}
		if rec.Sessions == nil {
			rec.Sessions = []model.QuizSession{}
		}
		st.record = *rec
		st.current = nil
		if rec.CurrentSessionID != nil {
			if sess := findSession(st.record.Sessions, *rec.CurrentSessionID); sess != nil {
				st.current = sess.Clone()
			}
		}
	}
	return st, nil
}

func (s *SessionService) persist(ctx context.Context, clientID string, st *clientState) error {
	if err := s.repo.Save(ctx, clientID, &st.record); err != nil {
		return fmt.Errorf("persist sessions for client %s: %w", clientID, err)
	}
	return nil
}

// CreateSession normalizes the raw result, builds a session with empty
// answers, prepends it to the collection (most-recent-first insertion order),
// selects it as current and returns its ID.
func (s *SessionService) CreateSession(ctx context.Context, clientID, displayName, topic string, raw model.RawGenerationResult, cfg model.GenerationConfig) (string, error) {
	st, err := s.state(ctx, clientID)
	if err != nil {
		return "", err
	}
	defer st.mu.Unlock()

	now := s.now()
	session := model.QuizSession{
		ID:             s.ids.NewID(),
		DisplayName:    displayName,
		Topic:          topic,
		Config:         cfg,
		Questions:      normalizer.Normalize(raw),
		Answers:        make(map[string]model.UserAnswer),
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	st.record.Sessions = append([]model.QuizSession{session}, st.record.Sessions...)
	id := session.ID
	st.record.CurrentSessionID = &id
	st.current = session.Clone()

	if err := s.persist(ctx, clientID, st); err != nil {
		return "", err
	}

	s.publish(ctx, clientID, events.TypeSessionCreated, id)
	s.log.Info().
		Str("client_id", clientID).
		Str("session_id", id).
		Int("questions", len(session.Questions)).
		Msg("Session created")
	return id, nil
}

// RecordAnswer records an answer against the current session. Recording a
// second answer for the same question replaces the first. With no current
// session this is a silent no-op.
func (s *SessionService) RecordAnswer(ctx context.Context, clientID, questionID, value string) error {
	st, err := s.state(ctx, clientID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	if st.record.CurrentSessionID == nil {
		s.log.Debug().Str("client_id", clientID).Msg("Answer ignored: no current session")
		return nil
	}

	now := s.now()
	ok := st.updateSession(*st.record.CurrentSessionID, func(sess *model.QuizSession) {
		sess.Answers[questionID] = model.UserAnswer{
			QuestionID: questionID,
			Value:      value,
			RecordedAt: now,
		}
		sess.LastAccessedAt = now
	})
	if !ok {
		return nil
	}

	if err := s.persist(ctx, clientID, st); err != nil {
		return err
	}
	s.publish(ctx, clientID, events.TypeSessionUpdated, *st.record.CurrentSessionID)
	return nil
}

// ClearAnswers empties the session's answers, clears completion and discards
// any attached analysis. Idempotent; a missing ID is a no-op.
func (s *SessionService) ClearAnswers(ctx context.Context, clientID, sessionID string) error {
	st, err := s.state(ctx, clientID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	now := s.now()
	ok := st.updateSession(sessionID, func(sess *model.QuizSession) {
		sess.Answers = make(map[string]model.UserAnswer)
		sess.Completed = false
		sess.Analysis = nil
		sess.LastAccessedAt = now
	})
	if !ok {
		return nil
	}

	if err := s.persist(ctx, clientID, st); err != nil {
		return err
	}
	s.publish(ctx, clientID, events.TypeSessionUpdated, sessionID)
	return nil
}

// ResetSession is an alias for ClearAnswers.
func (s *SessionService) ResetSession(ctx context.Context, clientID, sessionID string) error {
	return s.ClearAnswers(ctx, clientID, sessionID)
}

// MarkCompleted sets completed=true. Idempotent; does not require all
// questions answered.
func (s *SessionService) MarkCompleted(ctx context.Context, clientID, sessionID string) error {
	st, err := s.state(ctx, clientID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	now := s.now()
	ok := st.updateSession(sessionID, func(sess *model.QuizSession) {
		sess.Completed = true
		sess.LastAccessedAt = now
	})
	if !ok {
		return nil
	}

	if err := s.persist(ctx, clientID, st); err != nil {
		return err
	}
	s.publish(ctx, clientID, events.TypeSessionUpdated, sessionID)
	return nil
}

// AttachAnalysis sets the analysis and, as a side effect, marks the session
// completed. Re-running analysis overwrites the previous one.
func (s *SessionService) AttachAnalysis(ctx context.Context, clientID, sessionID string, analysis model.SessionAnalysis) error {
	st, err := s.state(ctx, clientID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	now := s.now()
	ok := st.updateSession(sessionID, func(sess *model.QuizSession) {
		a := analysis
		sess.Analysis = &a
		sess.Completed = true
		sess.LastAccessedAt = now
	})
	if !ok {
		return nil
	}

	if err := s.persist(ctx, clientID, st); err != nil {
		return err
	}
	s.publish(ctx, clientID, events.TypeAnalysisAttached, sessionID)
	return nil
}

// DeleteSession removes the session from the collection. If it was current,
// the current pointer is cleared, not reassigned. A missing ID is a no-op.
func (s *SessionService) DeleteSession(ctx context.Context, clientID, sessionID string) error {
	st, err := s.state(ctx, clientID)
	if err != nil {
		return err
	}
	defer st.mu.Unlock()

	idx := -1
	for i := range st.record.Sessions {
		if st.record.Sessions[i].ID == sessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	st.record.Sessions = append(st.record.Sessions[:idx], st.record.Sessions[idx+1:]...)
	if st.record.CurrentSessionID != nil && *st.record.CurrentSessionID == sessionID {
		st.record.CurrentSessionID = nil
		st.current = nil
	}

	if err := s.persist(ctx, clientID, st); err != nil {
		return err
	}
	s.publish(ctx, clientID, events.TypeSessionDeleted, sessionID)
	return nil
}

// SelectSession makes the session current, refreshes its lastAccessedAt and
// writes the refreshed copy back. Returns nil when the ID is unknown.
func (s *SessionService) SelectSession(ctx context.Context, clientID, sessionID string) (*model.QuizSession, error) {
	st, err := s.state(ctx, clientID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	if findSession(st.record.Sessions, sessionID) == nil {
		return nil, nil
	}

	id := sessionID
	st.record.CurrentSessionID = &id

	now := s.now()
	st.updateSession(sessionID, func(sess *model.QuizSession) {
		sess.LastAccessedAt = now
	})

	if err := s.persist(ctx, clientID, st); err != nil {
		return nil, err
	}
	return st.current.Clone(), nil
}

// GetSessionByID returns a copy of the session, refreshing its
// lastAccessedAt (reads touch recency). Returns nil when unknown, but only
// after a successful hydration, so a stale link never reads as deleted while
// the store is unavailable.
func (s *SessionService) GetSessionByID(ctx context.Context, clientID, sessionID string) (*model.QuizSession, error) {
	st, err := s.state(ctx, clientID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	now := s.now()
	if !st.updateSession(sessionID, func(sess *model.QuizSession) {
		sess.LastAccessedAt = now
	}) {
		return nil, nil
	}

	if err := s.persist(ctx, clientID, st); err != nil {
		return nil, err
	}
	return findSession(st.record.Sessions, sessionID).Clone(), nil
}

// CurrentSession returns a copy of the current session, or nil.
func (s *SessionService) CurrentSession(ctx context.Context, clientID string) (*model.QuizSession, error) {
	st, err := s.state(ctx, clientID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	return st.current.Clone(), nil
}

// ListSessions returns a copy of the full collection in insertion order
// (most recent first).
func (s *SessionService) ListSessions(ctx context.Context, clientID string) ([]model.QuizSession, error) {
	st, err := s.state(ctx, clientID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	return cloneSessions(st.record.Sessions), nil
}

// GetRecentSessions returns sessions by lastAccessedAt descending, truncated
// to limit (default 5). The sort is stable, so insertion order breaks ties.
func (s *SessionService) GetRecentSessions(ctx context.Context, clientID string, limit int) ([]model.QuizSession, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	st, err := s.state(ctx, clientID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	out := cloneSessions(st.record.Sessions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastAccessedAt.After(out[j].LastAccessedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetCompletedSessions returns sessions with completed=true.
func (s *SessionService) GetCompletedSessions(ctx context.Context, clientID string) ([]model.QuizSession, error) {
	return s.filterSessions(ctx, clientID, true)
}

// GetIncompleteSessions returns sessions with completed=false.
func (s *SessionService) GetIncompleteSessions(ctx context.Context, clientID string) ([]model.QuizSession, error) {
	return s.filterSessions(ctx, clientID, false)
}

func (s *SessionService) filterSessions(ctx context.Context, clientID string, completed bool) ([]model.QuizSession, error) {
	st, err := s.state(ctx, clientID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	var out []model.QuizSession
	for i := range st.record.Sessions {
		if st.record.Sessions[i].Completed == completed {
			out = append(out, *st.record.Sessions[i].Clone())
		}
	}
	return out, nil
}

// PruneIdle drops sessions whose lastAccessedAt is older than the retention
// window and returns how many were removed. Used by the janitor worker.
func (s *SessionService) PruneIdle(ctx context.Context, clientID string, retention time.Duration) (int, error) {
	st, err := s.state(ctx, clientID)
	if err != nil {
		return 0, err
	}
	defer st.mu.Unlock()

	cutoff := s.now().Add(-retention)
	kept := st.record.Sessions[:0]
	pruned := 0
	for i := range st.record.Sessions {
		if st.record.Sessions[i].LastAccessedAt.Before(cutoff) {
			if st.record.CurrentSessionID != nil && *st.record.CurrentSessionID == st.record.Sessions[i].ID {
				st.record.CurrentSessionID = nil
				st.current = nil
			}
			pruned++
			continue
		}
		kept = append(kept, st.record.Sessions[i])
	}
	if pruned == 0 {
		return 0, nil
	}

	st.record.Sessions = append([]model.QuizSession{}, kept...)
	if err := s.persist(ctx, clientID, st); err != nil {
		return 0, err
	}
	return pruned, nil
}

// ClientIDs lists every client with persisted sessions (janitor scan).
func (s *SessionService) ClientIDs(ctx context.Context) ([]string, error) {
	return s.repo.ClientIDs(ctx)
}

func (s *SessionService) publish(ctx context.Context, clientID, eventType, sessionID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, clientID, events.Event{Type: eventType, SessionID: sessionID})
}

// updateSession applies mut to the collection entry with the given ID and,
// when that entry is the current session, refreshes the denormalized copy in
// the same step. Returns false when the ID is not in the collection.
func (st *clientState) updateSession(id string, mut func(*model.QuizSession)) bool {
	for i := range st.record.Sessions {
		if st.record.Sessions[i].ID == id {
			mut(&st.record.Sessions[i])
			if st.record.CurrentSessionID != nil && *st.record.CurrentSessionID == id {
				st.current = st.record.Sessions[i].Clone()
			}
			return true
		}
	}
	return false
}

func findSession(sessions []model.QuizSession, id string) *model.QuizSession {
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i]
		}
	}
	return nil
}

func cloneSessions(sessions []model.QuizSession) []model.QuizSession {
	out := make([]model.QuizSession, len(sessions))
	for i := range sessions {
		out[i] = *sessions[i].Clone()
	}
	return out
}
