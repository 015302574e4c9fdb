package ai

import (
	"context"
	"fmt"
)

// Collaborator bundles the three external AI ports behind one value.
type Collaborator interface {
	Generator
	Analyzer
	Extractor
}

// NewCollaborator creates the configured AI collaborator.
// Supported providers: "gemini", "mock".
func NewCollaborator(ctx context.Context, provider string, cfg GeminiConfig) (Collaborator, error) {
	switch provider {
	case "gemini":
		return NewGemini(ctx, cfg)
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", provider)
	}
}
