package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// JSONRequest asks a language model for a single JSON object matching
// Schema. Name labels the schema for providers that want one.
type JSONRequest struct {
	Name   string
	System string
	User   string
	Schema jsonschema.Definition
}

// LLMJSONClient returns the raw JSON text of one completion. Callers own
// validation of the shape.
type LLMJSONClient interface {
	GenerateJSON(ctx context.Context, req JSONRequest) (string, error)
	Provider() string
}

// NewLLMJSONClient picks the client for provider ("openai" or "gemini").
func NewLLMJSONClient(ctx context.Context, provider, apiKey, model string) (LLMJSONClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing api key for %s", ErrInvalidInput, provider)
	}
	switch strings.ToLower(provider) {
	case "openai":
		return NewOpenAIJSONClient(apiKey, model), nil
	case "gemini":
		return NewGeminiJSONClient(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %s", ErrInvalidInput, provider)
	}
}
