package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizora/quizora-backend/internal/ai"
	"github.com/quizora/quizora-backend/internal/fault"
	"github.com/quizora/quizora-backend/internal/ident"
	"github.com/quizora/quizora-backend/internal/model"
	"github.com/quizora/quizora-backend/internal/repository"
	"github.com/quizora/quizora-backend/internal/scoring"
	"github.com/quizora/quizora-backend/internal/secret"
)

type gateFixture struct {
	gate     *GenerationService
	credits  *CreditService
	sessions *SessionService
	mock     *ai.Mock
}

func newGateFixture(t *testing.T, initialCredits int) *gateFixture {
	t.Helper()
	box, err := secret.NewBox("unit-test-secret")
	require.NoError(t, err)

	credits := NewCreditService(repository.NewMemoryCreditRepository(), box, nil, initialCredits, zerolog.Nop())
	sessions := NewSessionService(repository.NewMemorySessionRepository(), ident.TimeRandom{}, nil, zerolog.Nop())
	mock := ai.NewMock()
	mock.QuestionSet = &model.RawGenerationResult{
		MCQs: []model.RawMCQ{
			{Question: "Pick one", Options: []string{"a", "b"}, Answer: "a"},
		},
		ShortAnswers: []model.RawOpenAnswer{
			{Question: "Explain briefly", SampleAnswer: "because"},
		},
	}
	mock.Feedback = "1 out of 2 correct. Solid reasoning on the first answer."

	gate := NewGenerationService(credits, sessions, mock, scoring.FirstDigits{},
		time.Second, 2*time.Second, zerolog.Nop())
	return &gateFixture{gate: gate, credits: credits, sessions: sessions, mock: mock}
}

func validConfig() model.GenerationConfig {
	return model.GenerationConfig{MCQs: 1, ShortAnswers: 1}
}

func TestGenerateQuizSuccess(t *testing.T) {
	fx := newGateFixture(t, 4)
	ctx := context.Background()

	session, f := fx.gate.GenerateQuiz(ctx, "c1", GenerateInput{
		Topic:  "testing",
		Config: validConfig(),
	})
	require.Nil(t, f)
	require.NotNil(t, session)
	assert.Len(t, session.Questions, 2)
	assert.Equal(t, "testing", session.Topic)
	assert.Equal(t, 1, fx.mock.GenerateCalls)

	state, err := fx.credits.State(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, state.CreditsRemaining)

	// The new session is selected as current.
	current, err := fx.sessions.CurrentSession(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, session.ID, current.ID)
}

func TestGenerateQuizRejectsInvalidConfig(t *testing.T) {
	fx := newGateFixture(t, 4)

	_, f := fx.gate.GenerateQuiz(context.Background(), "c1", GenerateInput{
		Topic:  "testing",
		Config: model.GenerationConfig{MCQs: 21},
	})
	require.NotNil(t, f)
	assert.Equal(t, fault.Validation, f.Kind)
	assert.Contains(t, f.Fields, "mcqs")
	assert.Zero(t, fx.mock.Calls())
}

func TestGenerateQuizRejectsAllZeroCounts(t *testing.T) {
	fx := newGateFixture(t, 4)

	_, f := fx.gate.GenerateQuiz(context.Background(), "c1", GenerateInput{
		Topic:  "testing",
		Config: model.GenerationConfig{},
	})
	require.NotNil(t, f)
	assert.Equal(t, fault.Validation, f.Kind)
	assert.Zero(t, fx.mock.Calls())
}

func TestGenerateQuizRejectsEmptyInput(t *testing.T) {
	fx := newGateFixture(t, 4)
	ctx := context.Background()

	_, f := fx.gate.GenerateQuiz(ctx, "c1", GenerateInput{Config: validConfig()})
	require.NotNil(t, f)
	assert.Equal(t, fault.NoContent, f.Kind)
	// Rejected before the gate: no call, no credit burned.
	assert.Zero(t, fx.mock.Calls())

	state, err := fx.credits.State(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 4, state.CreditsRemaining)
}

func TestGenerateQuizQuotaExhausted(t *testing.T) {
	fx := newGateFixture(t, 2)
	ctx := context.Background()
	in := GenerateInput{Topic: "testing", Config: validConfig()}

	for i := 0; i < 2; i++ {
		_, f := fx.gate.GenerateQuiz(ctx, "c1", in)
		require.Nil(t, f)
	}

	_, f := fx.gate.GenerateQuiz(ctx, "c1", in)
	require.NotNil(t, f)
	assert.Equal(t, fault.QuotaExhausted, f.Kind)
	// Short-circuits before the backend.
	assert.Equal(t, 2, fx.mock.GenerateCalls)
}

func TestGenerateQuizOverrideBypassesQuota(t *testing.T) {
	fx := newGateFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, fx.credits.SetOverrideCredential(ctx, "c1", "sk-user-key"))

	session, f := fx.gate.GenerateQuiz(ctx, "c1", GenerateInput{Topic: "testing", Config: validConfig()})
	require.Nil(t, f)
	require.NotNil(t, session)
	assert.Equal(t, 1, fx.mock.GenerateCalls)
}

func TestGenerateQuizClassifiesAPIError(t *testing.T) {
	fx := newGateFixture(t, 4)
	fx.mock.GenerateErr = &ai.APIError{StatusCode: 400, Message: "key rejected"}
	ctx := context.Background()

	_, f := fx.gate.GenerateQuiz(ctx, "c1", GenerateInput{Topic: "testing", Config: validConfig()})
	require.NotNil(t, f)
	assert.Equal(t, fault.API, f.Kind)
	assert.Equal(t, "key rejected", f.Message)

	// No partial session on failure.
	list, err := fx.sessions.ListSessions(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGenerateQuizClassifiesTimeout(t *testing.T) {
	fx := newGateFixture(t, 4)
	fx.mock.GenerateErr = context.DeadlineExceeded

	_, f := fx.gate.GenerateQuiz(context.Background(), "c1", GenerateInput{Topic: "testing", Config: validConfig()})
	require.NotNil(t, f)
	assert.Equal(t, fault.Network, f.Kind)
}

func TestGenerateQuizClassifiesInvalidPayload(t *testing.T) {
	fx := newGateFixture(t, 4)
	fx.mock.GenerateErr = &ai.InvalidPayloadError{Reason: "schema mismatch"}

	_, f := fx.gate.GenerateQuiz(context.Background(), "c1", GenerateInput{Topic: "testing", Config: validConfig()})
	require.NotNil(t, f)
	assert.Equal(t, fault.API, f.Kind)
}

func TestGenerateQuizClassifiesUnknown(t *testing.T) {
	fx := newGateFixture(t, 4)
	fx.mock.GenerateErr = errors.New("something odd")

	_, f := fx.gate.GenerateQuiz(context.Background(), "c1", GenerateInput{Topic: "testing", Config: validConfig()})
	require.NotNil(t, f)
	assert.Equal(t, fault.Unknown, f.Kind)
}

func TestGenerateQuizRejectsUnusableQuestionSet(t *testing.T) {
	fx := newGateFixture(t, 4)
	// Shape-check failures drop every entry.
	fx.mock.QuestionSet = &model.RawGenerationResult{
		MCQs: []model.RawMCQ{{Question: "no options", Answer: "x"}},
	}
	ctx := context.Background()

	_, f := fx.gate.GenerateQuiz(ctx, "c1", GenerateInput{Topic: "testing", Config: validConfig()})
	require.NotNil(t, f)
	assert.Equal(t, fault.API, f.Kind)

	list, err := fx.sessions.ListSessions(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAnalyzeSessionSuccess(t *testing.T) {
	fx := newGateFixture(t, 4)
	ctx := context.Background()

	session, f := fx.gate.GenerateQuiz(ctx, "c1", GenerateInput{Topic: "testing", Config: validConfig()})
	require.Nil(t, f)
	require.NoError(t, fx.sessions.RecordAnswer(ctx, "c1", "short_0", "my written answer"))

	analysis, f := fx.gate.AnalyzeSession(ctx, "c1", session.ID)
	require.Nil(t, f)
	require.NotNil(t, analysis)
	assert.Equal(t, 1, analysis.Score)
	assert.Equal(t, 2, analysis.TotalQuestions)
	assert.InDelta(t, 50.0, analysis.Percentage, 0.001)
	assert.Equal(t, 1, fx.mock.AnalyzeCalls)

	stored, err := fx.sessions.GetSessionByID(ctx, "c1", session.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	require.NotNil(t, stored.Analysis)
	assert.Equal(t, analysis.Score, stored.Analysis.Score)
}

func TestAnalyzeSessionConsumesCredit(t *testing.T) {
	fx := newGateFixture(t, 2)
	ctx := context.Background()

	session, f := fx.gate.GenerateQuiz(ctx, "c1", GenerateInput{Topic: "testing", Config: validConfig()})
	require.Nil(t, f)
	require.NoError(t, fx.sessions.RecordAnswer(ctx, "c1", "short_0", "answer"))

	_, f = fx.gate.AnalyzeSession(ctx, "c1", session.ID)
	require.Nil(t, f)

	state, err := fx.credits.State(ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, state.CreditsRemaining)

	// Out of credits, a rerun hits the gate.
	_, f = fx.gate.AnalyzeSession(ctx, "c1", session.ID)
	require.NotNil(t, f)
	assert.Equal(t, fault.QuotaExhausted, f.Kind)
	assert.Equal(t, 1, fx.mock.AnalyzeCalls)
}

func TestAnalyzeSessionNoWrittenAnswers(t *testing.T) {
	fx := newGateFixture(t, 4)
	ctx := context.Background()

	session, f := fx.gate.GenerateQuiz(ctx, "c1", GenerateInput{Topic: "testing", Config: validConfig()})
	require.Nil(t, f)
	// Only the MCQ is answered; analysis covers written kinds.
	require.NoError(t, fx.sessions.RecordAnswer(ctx, "c1", "mcq_0", "a"))

	_, f = fx.gate.AnalyzeSession(ctx, "c1", session.ID)
	require.NotNil(t, f)
	assert.Equal(t, fault.NoContent, f.Kind)
	assert.Zero(t, fx.mock.AnalyzeCalls)
}

func TestAnalyzeSessionUnknownID(t *testing.T) {
	fx := newGateFixture(t, 4)

	_, f := fx.gate.AnalyzeSession(context.Background(), "c1", "no-such-id")
	require.NotNil(t, f)
	assert.Equal(t, fault.Validation, f.Kind)
	assert.Zero(t, fx.mock.Calls())
}

func TestAnalyzeSessionScorelessFeedback(t *testing.T) {
	fx := newGateFixture(t, 4)
	fx.mock.Feedback = "Thoughtful work throughout, keep it up."
	ctx := context.Background()

	session, f := fx.gate.GenerateQuiz(ctx, "c1", GenerateInput{Topic: "testing", Config: validConfig()})
	require.Nil(t, f)
	require.NoError(t, fx.sessions.RecordAnswer(ctx, "c1", "short_0", "answer"))

	analysis, f := fx.gate.AnalyzeSession(ctx, "c1", session.ID)
	require.Nil(t, f)
	assert.Zero(t, analysis.Score)
	assert.Zero(t, analysis.Percentage)
}

func TestExtractFileTextNotCreditGated(t *testing.T) {
	fx := newGateFixture(t, 0)
	ctx := context.Background()

	result, f := fx.gate.ExtractFileText(ctx, ai.File{
		Name: "notes.pdf", MIMEType: "application/pdf", Data: []byte("%PDF"),
	})
	require.Nil(t, f)
	require.NotNil(t, result)
	assert.Equal(t, 1, fx.mock.ExtractCalls)

	state, err := fx.credits.State(ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, state.CreditsRemaining)
}
