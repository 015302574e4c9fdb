package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/quizora/quizora-backend/internal/model"
)

// GeminiConfig configures the Gemini-backed collaborator.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Gemini implements Generator, Analyzer and Extractor against the Google
// Gemini API. A request carrying an override credential is served through a
// short-lived client built around the user's key instead of the server's.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates the Gemini collaborator with the server's API key.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := newGenaiClient(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: cfg.Model}, nil
}

func newGenaiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return client, nil
}

// clientFor returns the shared client, or a per-request one when the caller
// supplied an override credential.
func (g *Gemini) clientFor(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return g.client, nil
	}
	return newGenaiClient(ctx, apiKey)
}

func (g *Gemini) GenerateQuestions(ctx context.Context, req QuizRequest) (*model.RawGenerationResult, error) {
	client, err := g.clientFor(ctx, req.APIKey)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   buildGenaiSchema(questionSetSchema),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: generateSystemPrompt}},
		},
	}

	parts := []*genai.Part{{Text: buildGeneratePrompt(req)}}
	for _, f := range req.Files {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: f.MIMEType, Data: f.Data},
		})
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	result, err := client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, mapGenaiError(err)
	}

	raw := []byte(result.Text())
	if err := validatePayload(raw); err != nil {
		return nil, err
	}

	var out model.RawGenerationResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &InvalidPayloadError{Reason: "decode question set", cause: err}
	}
	return &out, nil
}

func (g *Gemini) AnalyzeAnswers(ctx context.Context, req AnalysisRequest) (string, error) {
	client, err := g.clientFor(ctx, req.APIKey)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: analyzeSystemPrompt}},
		},
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: buildAnalyzePrompt(req)}},
	}}

	result, err := client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", mapGenaiError(err)
	}

	feedback := result.Text()
	if strings.TrimSpace(feedback) == "" {
		return "", &InvalidPayloadError{Reason: "empty feedback"}
	}
	return feedback, nil
}

func (g *Gemini) ExtractText(ctx context.Context, file File) (*ExtractResult, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: extractPrompt},
			{InlineData: &genai.Blob{MIMEType: file.MIMEType, Data: file.Data}},
		},
	}}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, mapGenaiError(err)
	}

	return &ExtractResult{
		Text:     result.Text(),
		FileType: file.MIMEType,
	}, nil
}

const (
	generateSystemPrompt = "You are a quiz author. Produce clear, factually accurate " +
		"assessment questions strictly in the requested JSON shape. Produce exactly " +
		"the requested number of questions per kind and omit kinds requested as zero."

	analyzeSystemPrompt = "You are a strict but encouraging grader. Begin your reply " +
		"with the number of answers that are correct, then give per-answer feedback."

	extractPrompt = "Extract all readable text from this document verbatim. " +
		"Return only the extracted text, no commentary."
)

func buildGeneratePrompt(req QuizRequest) string {
	var b strings.Builder
	if req.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	}
	if req.Prompt != "" {
		fmt.Fprintf(&b, "Source material:\n%s\n", req.Prompt)
	}
	if len(req.Files) > 0 {
		b.WriteString("Base the questions on the attached file(s).\n")
	}
	b.WriteString("\nGenerate:\n")
	fmt.Fprintf(&b, "- %d multiple-choice questions (mcqs)\n", req.Config.MCQs)
	fmt.Fprintf(&b, "- %d fill-in-the-blank questions (fill_blanks)\n", req.Config.FillBlanks)
	fmt.Fprintf(&b, "- %d true/false questions (true_false)\n", req.Config.TrueFalse)
	fmt.Fprintf(&b, "- %d short-answer questions (short_answers)\n", req.Config.ShortAnswers)
	fmt.Fprintf(&b, "- %d long-answer questions (long_answers)\n", req.Config.LongAnswers)
	return b.String()
}

func buildAnalyzePrompt(req AnalysisRequest) string {
	var b strings.Builder
	total := len(req.ShortAnswers) + len(req.LongAnswers)
	fmt.Fprintf(&b, "Grade these %d written answers. Start your reply with the score as a plain number.\n", total)
	if len(req.ShortAnswers) > 0 {
		b.WriteString("\nShort answers:\n")
		writePairs(&b, req.ShortAnswers)
	}
	if len(req.LongAnswers) > 0 {
		b.WriteString("\nLong answers:\n")
		writePairs(&b, req.LongAnswers)
	}
	return b.String()
}

func writePairs(b *strings.Builder, pairs []AnswerPair) {
	for i, p := range pairs {
		fmt.Fprintf(b, "%d. Q: %s\n   A: %s\n", i+1, p.Question, p.Answer)
	}
}

func mapGenaiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	// Context and transport errors pass through; the gate classifies them.
	return err
}
