// Package ai defines the external generative-AI collaborator ports and their
// Gemini-backed implementation. The core only depends on the interfaces; the
// request gate converts every failure into its error taxonomy.
package ai

import (
	"context"

	"github.com/quizora/quizora-backend/internal/model"
)

// File is an uploaded attachment forwarded to the multimodal backend.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// QuizRequest describes one generation call. APIKey, when set, is a
// user-supplied override credential that replaces the server's key.
type QuizRequest struct {
	Topic  string
	Prompt string
	Files  []File
	Config model.GenerationConfig
	APIKey string
}

// AnswerPair couples a question prompt with the user's written answer.
type AnswerPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnalysisRequest describes one feedback call over written answers.
type AnalysisRequest struct {
	ShortAnswers []AnswerPair
	LongAnswers  []AnswerPair
	APIKey       string
}

// ExtractResult is the outcome of text extraction from one file.
type ExtractResult struct {
	Text     string `json:"text"`
	FileType string `json:"file_type"`
}

// Generator produces a raw question set from a topic/prompt and optional files.
type Generator interface {
	GenerateQuestions(ctx context.Context, req QuizRequest) (*model.RawGenerationResult, error)
}

// Analyzer grades written answers and returns free-text feedback expected to
// contain a numeric score early in the string.
type Analyzer interface {
	AnalyzeAnswers(ctx context.Context, req AnalysisRequest) (string, error)
}

// Extractor pulls text out of an uploaded file (images, PDFs, plain text).
type Extractor interface {
	ExtractText(ctx context.Context, file File) (*ExtractResult, error)
}
