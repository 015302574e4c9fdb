package service

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizora/quizora-backend/internal/ai"
	"github.com/quizora/quizora-backend/internal/fault"
	"github.com/quizora/quizora-backend/internal/model"
	"github.com/quizora/quizora-backend/internal/normalizer"
	"github.com/quizora/quizora-backend/internal/scoring"
)

// GenerationService is the request gate around every outbound AI call.
// Per request: validate before anything external, consume a credit (or ride
// the override credential), call the collaborator under the right timeout,
// classify any failure into the fault taxonomy, and only on a fully
// normalized success touch the session store. Overlapping requests are
// allowed; call sites own their own double-submit protection.
type GenerationService struct {
	credits  *CreditService
	sessions *SessionService
	ai       ai.Collaborator
	scores   scoring.Extractor
	log      zerolog.Logger

	textTimeout time.Duration
	fileTimeout time.Duration
}

// GenerateInput is one quiz-generation request.
type GenerateInput struct {
	DisplayName string
	Topic       string
	Prompt      string
	Files       []ai.File
	Config      model.GenerationConfig
}

// NewGenerationService creates a new GenerationService.
func NewGenerationService(
	credits *CreditService,
	sessions *SessionService,
	collaborator ai.Collaborator,
	scores scoring.Extractor,
	textTimeout, fileTimeout time.Duration,
	log zerolog.Logger,
) *GenerationService {
	if textTimeout <= 0 {
		textTimeout = 30 * time.Second
	}
	if fileTimeout <= 0 {
		fileTimeout = 60 * time.Second
	}
	return &GenerationService{
		credits:     credits,
		sessions:    sessions,
		ai:          collaborator,
		scores:      scores,
		log:         log.With().Str("component", "generation_service").Logger(),
		textTimeout: textTimeout,
		fileTimeout: fileTimeout,
	}
}

// GenerateQuiz runs one gated generation request. On success the session is
// created and returned; on failure no partial session exists.
func (s *GenerationService) GenerateQuiz(ctx context.Context, clientID string, in GenerateInput) (*model.QuizSession, *fault.Fault) {
	if fields := in.Config.Validate(); len(fields) > 0 {
		return nil, fault.New(fault.Validation, "generation config out of bounds").WithFields(fields)
	}
	if in.Topic == "" && in.Prompt == "" && len(in.Files) == 0 {
		return nil, fault.New(fault.NoContent, "supply a topic, a prompt, or at least one file")
	}

	apiKey, f := s.passGate(ctx, clientID)
	if f != nil {
		return nil, f
	}

	timeout := s.textTimeout
	if len(in.Files) > 0 {
		timeout = s.fileTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := s.ai.GenerateQuestions(callCtx, ai.QuizRequest{
		Topic:  in.Topic,
		Prompt: in.Prompt,
		Files:  in.Files,
		Config: in.Config,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, s.classify(err, "quiz generation failed")
	}

	if len(normalizer.Normalize(*raw)) == 0 {
		return nil, fault.New(fault.API, "generator returned no usable questions")
	}

	name := in.DisplayName
	if name == "" {
		name = in.Topic
	}
	sessionID, err := s.sessions.CreateSession(ctx, clientID, name, in.Topic, *raw, in.Config)
	if err != nil {
		return nil, fault.Wrap(fault.Unknown, "store generated session", err)
	}

	session, err := s.sessions.GetSessionByID(ctx, clientID, sessionID)
	if err != nil {
		return nil, fault.Wrap(fault.Unknown, "read back generated session", err)
	}
	return session, nil
}

// AnalyzeSession runs one gated analysis request over the session's written
// answers, attaches the result (which also completes the session) and
// returns it.
func (s *GenerationService) AnalyzeSession(ctx context.Context, clientID, sessionID string) (*model.SessionAnalysis, *fault.Fault) {
	session, err := s.sessions.GetSessionByID(ctx, clientID, sessionID)
	if err != nil {
		return nil, fault.Wrap(fault.Unknown, "load session", err)
	}
	if session == nil {
		return nil, fault.New(fault.Validation, "unknown session").
			WithFields(map[string]string{"session_id": "no session with this id"})
	}

	short, long := writtenAnswerPairs(session)
	if len(short) == 0 && len(long) == 0 {
		return nil, fault.New(fault.NoContent, "no written answers to analyze")
	}

	apiKey, f := s.passGate(ctx, clientID)
	if f != nil {
		return nil, f
	}

	callCtx, cancel := context.WithTimeout(ctx, s.textTimeout)
	defer cancel()

	feedback, err := s.ai.AnalyzeAnswers(callCtx, ai.AnalysisRequest{
		ShortAnswers: short,
		LongAnswers:  long,
		APIKey:       apiKey,
	})
	if err != nil {
		return nil, s.classify(err, "answer analysis failed")
	}

	score, found := s.scores.Extract(feedback)
	if !found {
		s.log.Warn().Str("session_id", sessionID).Msg("No score found in feedback")
	}
	total := len(session.Questions)
	analysis := model.SessionAnalysis{
		RawFeedback:    feedback,
		Score:          score,
		TotalQuestions: total,
		Percentage:     percentage(score, total),
		ComputedAt:     time.Now(),
	}

	if err := s.sessions.AttachAnalysis(ctx, clientID, sessionID, analysis); err != nil {
		return nil, fault.Wrap(fault.Unknown, "attach analysis", err)
	}
	return &analysis, nil
}

// ExtractFileText forwards one file to the extraction collaborator. Text
// extraction is upstream of generation and does not consume a credit.
func (s *GenerationService) ExtractFileText(ctx context.Context, file ai.File) (*ai.ExtractResult, *fault.Fault) {
	callCtx, cancel := context.WithTimeout(ctx, s.fileTimeout)
	defer cancel()

	result, err := s.ai.ExtractText(callCtx, file)
	if err != nil {
		return nil, s.classify(err, "text extraction failed")
	}
	return result, nil
}

// passGate consumes a credit and returns the override credential to attach,
// if any. A false consumption short-circuits to QuotaExhausted before any
// external call is made.
func (s *GenerationService) passGate(ctx context.Context, clientID string) (string, *fault.Fault) {
	apiKey, _, err := s.credits.OverrideCredential(ctx, clientID)
	if err != nil {
		return "", fault.Wrap(fault.Unknown, "read override credential", err)
	}

	ok, err := s.credits.TryConsumeCredit(ctx, clientID)
	if err != nil {
		return "", fault.Wrap(fault.Unknown, "consume credit", err)
	}
	if !ok {
		return "", fault.New(fault.QuotaExhausted, "no generation credits left; add your own API key to continue")
	}
	return apiKey, nil
}

// classify converts a collaborator error into the fault taxonomy. The gate
// is the only place exceptions from the collaborator are caught.
func (s *GenerationService) classify(err error, msg string) *fault.Fault {
	var apiErr *ai.APIError
	var payloadErr *ai.InvalidPayloadError
	var netErr net.Error

	switch {
	case errors.As(err, &apiErr):
		m := apiErr.Message
		if m == "" {
			m = msg
		}
		return fault.Wrap(fault.API, m, err)
	case errors.As(err, &payloadErr):
		return fault.Wrap(fault.API, "the AI service returned an unreadable result", err)
	case errors.Is(err, context.DeadlineExceeded):
		return fault.Wrap(fault.Network, "the AI service took too long to respond", err)
	case errors.As(err, &netErr):
		return fault.Wrap(fault.Network, "could not reach the AI service", err)
	default:
		return fault.Wrap(fault.Unknown, msg, err)
	}
}

func writtenAnswerPairs(session *model.QuizSession) (short, long []ai.AnswerPair) {
	for _, q := range session.Questions {
		answer, ok := session.Answers[q.ID]
		if !ok || answer.Value == "" {
			continue
		}
		pair := ai.AnswerPair{Question: q.Prompt, Answer: answer.Value}
		switch q.Kind {
		case model.KindShort:
			short = append(short, pair)
		case model.KindLong:
			long = append(long, pair)
		}
	}
	return short, long
}

func percentage(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}
