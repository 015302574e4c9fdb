package ai

import (
	"context"
	"sync"

	"github.com/quizora/quizora-backend/internal/model"
)

// Mock is a canned collaborator for tests and the "mock" provider in local
// development. It counts invocations so tests can assert that rejected
// requests never reach the backend.
type Mock struct {
	mu sync.Mutex

	GenerateCalls int
	AnalyzeCalls  int
	ExtractCalls  int

	QuestionSet *model.RawGenerationResult
	GenerateErr error

	Feedback   string
	AnalyzeErr error

	Extracted  *ExtractResult
	ExtractErr error
}

// NewMock returns a mock with a small default question set and feedback.
func NewMock() *Mock {
	return &Mock{
		QuestionSet: &model.RawGenerationResult{
			MCQs: []model.RawMCQ{{
				Question: "Which planet is known as the Red Planet?",
				Options:  []string{"Venus", "Mars", "Jupiter", "Mercury"},
				Answer:   "Mars",
			}},
			TrueFalse: []model.RawTrueFalse{{
				Question: "Water boils at 100°C at sea level.",
				Answer:   true,
			}},
		},
		Feedback:  "1 out of 1 correct. Well reasoned throughout.",
		Extracted: &ExtractResult{Text: "extracted text", FileType: "application/pdf"},
	}
}

func (m *Mock) GenerateQuestions(_ context.Context, _ QuizRequest) (*model.RawGenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls++
	if m.GenerateErr != nil {
		return nil, m.GenerateErr
	}
	return m.QuestionSet, nil
}

func (m *Mock) AnalyzeAnswers(_ context.Context, _ AnalysisRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnalyzeCalls++
	if m.AnalyzeErr != nil {
		return "", m.AnalyzeErr
	}
	return m.Feedback, nil
}

func (m *Mock) ExtractText(_ context.Context, _ File) (*ExtractResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtractCalls++
	if m.ExtractErr != nil {
		return nil, m.ExtractErr
	}
	return m.Extracted, nil
}

// Calls returns the total number of collaborator invocations.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GenerateCalls + m.AnalyzeCalls + m.ExtractCalls
}
