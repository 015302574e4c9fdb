package model

import "time"

// UserAnswer is a single response to a question. At most one live answer
// exists per question in a session; recording again replaces it.
type UserAnswer struct {
	QuestionID string    `json:"question_id"`
	Value      string    `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// SessionAnalysis is the AI-derived grading of a session. Attaching one
// always marks the session completed. Re-running analysis overwrites it.
type SessionAnalysis struct {
	RawFeedback    string    `json:"raw_feedback"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     float64   `json:"percentage"`
	ComputedAt     time.Time `json:"computed_at"`
}

// QuizSession is the aggregate root: one generated quiz plus its accumulated
// answers and optional analysis. Questions are fixed at creation.
type QuizSession struct {
	ID             string                `json:"id"`
	DisplayName    string                `json:"display_name"`
	Topic          string                `json:"topic"`
	Config         GenerationConfig      `json:"config"`
	Questions      []Question            `json:"questions"`
	Answers        map[string]UserAnswer `json:"answers"`
	Completed      bool                  `json:"completed"`
	Analysis       *SessionAnalysis      `json:"analysis,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
}

// Clone returns a deep copy. The session store hands out and caches copies
// so the denormalized current-session view can never alias collection state.
func (s *QuizSession) Clone() *QuizSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q
		if q.Options != nil {
			out.Questions[i].Options = append([]string(nil), q.Options...)
		}
	}
	out.Answers = make(map[string]UserAnswer, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	if s.Analysis != nil {
		a := *s.Analysis
		out.Analysis = &a
	}
	return &out
}

// SessionRecord is the persisted per-client layout: the full session
// collection (most-recent-first insertion order) plus the current pointer.
type SessionRecord struct {
	Sessions         []QuizSession `json:"sessions"`
	CurrentSessionID *string       `json:"current_session_id"`
}
