package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizora/quizora-backend/internal/ident"
	"github.com/quizora/quizora-backend/internal/model"
	"github.com/quizora/quizora-backend/internal/repository"
)

func newTestSessionService() (*SessionService, *repository.MemorySessionRepository) {
	repo := repository.NewMemorySessionRepository()
	svc := NewSessionService(repo, ident.TimeRandom{}, nil, zerolog.Nop())
	return svc, repo
}

func testRawResult() model.RawGenerationResult {
	return model.RawGenerationResult{
		MCQs: []model.RawMCQ{
			{Question: "Pick one", Options: []string{"a", "b"}, Answer: "a"},
		},
		ShortAnswers: []model.RawOpenAnswer{
			{Question: "Explain briefly", SampleAnswer: "because"},
		},
	}
}

func mustCreate(t *testing.T, svc *SessionService, clientID string) string {
	t.Helper()
	id, err := svc.CreateSession(context.Background(), clientID, "Test quiz", "testing", testRawResult(), model.GenerationConfig{MCQs: 1, ShortAnswers: 1})
	require.NoError(t, err)
	return id
}

func TestCreateSessionSelectsItAsCurrent(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	id := mustCreate(t, svc, "c1")

	current, err := svc.CurrentSession(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, id, current.ID)
	assert.Len(t, current.Questions, 2)
	assert.Empty(t, current.Answers)
	assert.False(t, current.Completed)
}

func TestCreateSessionPrepends(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	first := mustCreate(t, svc, "c1")
	second := mustCreate(t, svc, "c1")

	list, err := svc.ListSessions(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
}

func TestRecordAnswerLastWriteWins(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	id := mustCreate(t, svc, "c1")

	require.NoError(t, svc.RecordAnswer(ctx, "c1", "mcq_0", "a"))
	require.NoError(t, svc.RecordAnswer(ctx, "c1", "mcq_0", "b"))

	session, err := svc.GetSessionByID(ctx, "c1", id)
	require.NoError(t, err)
	require.Len(t, session.Answers, 1)
	assert.Equal(t, "b", session.Answers["mcq_0"].Value)
}

func TestRecordAnswerWithoutCurrentSessionIsNoOp(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	// Never errors, never creates anything.
	require.NoError(t, svc.RecordAnswer(ctx, "c1", "mcq_0", "a"))

	list, err := svc.ListSessions(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCurrentCopyTracksCollectionEntry(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	id := mustCreate(t, svc, "c1")
	require.NoError(t, svc.RecordAnswer(ctx, "c1", "short_0", "my answer"))

	current, err := svc.CurrentSession(ctx, "c1")
	require.NoError(t, err)
	stored, err := svc.GetSessionByID(ctx, "c1", id)
	require.NoError(t, err)

	// The current view and the collection entry must agree on everything
	// except the recency touched by the read itself.
	current.LastAccessedAt = stored.LastAccessedAt
	assert.Equal(t, stored, current)
}

func TestCurrentCopyDoesNotAliasCollection(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	id := mustCreate(t, svc, "c1")

	current, err := svc.CurrentSession(ctx, "c1")
	require.NoError(t, err)
	current.Answers["mcq_0"] = model.UserAnswer{QuestionID: "mcq_0", Value: "tampered"}
	current.Questions[0].Prompt = "tampered"

	stored, err := svc.GetSessionByID(ctx, "c1", id)
	require.NoError(t, err)
	assert.Empty(t, stored.Answers)
	assert.Equal(t, "Pick one", stored.Questions[0].Prompt)
}

func TestClearAnswersResetsEverything(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	id := mustCreate(t, svc, "c1")
	require.NoError(t, svc.RecordAnswer(ctx, "c1", "mcq_0", "a"))
	require.NoError(t, svc.AttachAnalysis(ctx, "c1", id, model.SessionAnalysis{Score: 1, TotalQuestions: 2}))

	require.NoError(t, svc.ClearAnswers(ctx, "c1", id))

	session, err := svc.GetSessionByID(ctx, "c1", id)
	require.NoError(t, err)
	assert.Empty(t, session.Answers)
	assert.False(t, session.Completed)
	assert.Nil(t, session.Analysis)

	// Idempotent on an already-clean session and on unknown IDs.
	require.NoError(t, svc.ClearAnswers(ctx, "c1", id))
	require.NoError(t, svc.ClearAnswers(ctx, "c1", "no-such-id"))
}

func TestAttachAnalysisMarksCompleted(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	id := mustCreate(t, svc, "c1")
	require.NoError(t, svc.AttachAnalysis(ctx, "c1", id, model.SessionAnalysis{
		RawFeedback: "1 correct", Score: 1, TotalQuestions: 2, Percentage: 50,
	}))

	session, err := svc.GetSessionByID(ctx, "c1", id)
	require.NoError(t, err)
	assert.True(t, session.Completed)
	require.NotNil(t, session.Analysis)
	assert.Equal(t, 1, session.Analysis.Score)
}

func TestMarkCompletedIsIdempotent(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	id := mustCreate(t, svc, "c1")
	require.NoError(t, svc.MarkCompleted(ctx, "c1", id))
	require.NoError(t, svc.MarkCompleted(ctx, "c1", id))
	require.NoError(t, svc.MarkCompleted(ctx, "c1", "no-such-id"))

	session, err := svc.GetSessionByID(ctx, "c1", id)
	require.NoError(t, err)
	assert.True(t, session.Completed)
}

func TestDeleteSessionClearsCurrentPointer(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	older := mustCreate(t, svc, "c1")
	newer := mustCreate(t, svc, "c1")

	require.NoError(t, svc.DeleteSession(ctx, "c1", newer))

	// The pointer is cleared, not reassigned to the survivor.
	current, err := svc.CurrentSession(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, current)

	list, err := svc.ListSessions(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, older, list[0].ID)

	// Unknown IDs are tolerated.
	require.NoError(t, svc.DeleteSession(ctx, "c1", "no-such-id"))
}

func TestDeleteNonCurrentKeepsCurrent(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	older := mustCreate(t, svc, "c1")
	newer := mustCreate(t, svc, "c1")

	require.NoError(t, svc.DeleteSession(ctx, "c1", older))

	current, err := svc.CurrentSession(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, newer, current.ID)
}

func TestSelectSession(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	first := mustCreate(t, svc, "c1")
	mustCreate(t, svc, "c1")

	selected, err := svc.SelectSession(ctx, "c1", first)
	require.NoError(t, err)
	require.NotNil(t, selected)
	assert.Equal(t, first, selected.ID)

	current, err := svc.CurrentSession(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, first, current.ID)

	missing, err := svc.SelectSession(ctx, "c1", "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetSessionByIDUnknownIsNilNotError(t *testing.T) {
	svc, _ := newTestSessionService()

	session, err := svc.GetSessionByID(context.Background(), "c1", "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestGetRecentSessionsOrdersByAccess(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	svc.now = func() time.Time { return clock }

	a := mustCreate(t, svc, "c1")
	clock = base.Add(time.Minute)
	b := mustCreate(t, svc, "c1")
	clock = base.Add(2 * time.Minute)
	c := mustCreate(t, svc, "c1")

	// Touch the oldest so it becomes the most recent.
	clock = base.Add(3 * time.Minute)
	_, err := svc.SelectSession(ctx, "c1", a)
	require.NoError(t, err)

	recent, err := svc.GetRecentSessions(ctx, "c1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, a, recent[0].ID)
	assert.Equal(t, c, recent[1].ID)

	all, err := svc.GetRecentSessions(ctx, "c1", 0) // default limit
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, b, all[2].ID)
}

func TestCompletedAndIncompleteFilters(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	done := mustCreate(t, svc, "c1")
	open := mustCreate(t, svc, "c1")
	require.NoError(t, svc.MarkCompleted(ctx, "c1", done))

	completed, err := svc.GetCompletedSessions(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, done, completed[0].ID)

	incomplete, err := svc.GetIncompleteSessions(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, incomplete, 1)
	assert.Equal(t, open, incomplete[0].ID)
}

func TestHydrationFromRepository(t *testing.T) {
	svc, repo := newTestSessionService()
	ctx := context.Background()

	id := mustCreate(t, svc, "c1")
	require.NoError(t, svc.RecordAnswer(ctx, "c1", "mcq_0", "a"))

	// A fresh service over the same repository sees the persisted state,
	// including the restored current pointer.
	fresh := NewSessionService(repo, ident.TimeRandom{}, nil, zerolog.Nop())
	current, err := fresh.CurrentSession(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, id, current.ID)
	assert.Equal(t, "a", current.Answers["mcq_0"].Value)
}

func TestClientsAreIsolated(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	mustCreate(t, svc, "c1")

	list, err := svc.ListSessions(ctx, "c2")
	require.NoError(t, err)
	assert.Empty(t, list)

	current, err := svc.CurrentSession(ctx, "c2")
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestPruneIdle(t *testing.T) {
	svc, _ := newTestSessionService()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	svc.now = func() time.Time { return clock }

	stale := mustCreate(t, svc, "c1")
	clock = base.Add(40 * 24 * time.Hour)
	fresh := mustCreate(t, svc, "c1")

	pruned, err := svc.PruneIdle(ctx, "c1", 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	list, err := svc.ListSessions(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fresh, list[0].ID)
	assert.NotEqual(t, stale, list[0].ID)

	// Nothing left to prune.
	pruned, err = svc.PruneIdle(ctx, "c1", 30*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, pruned)
}
