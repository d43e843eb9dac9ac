package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

type GeminiJSONClient struct {
	client *genai.Client
	model  string
}

func NewGeminiJSONClient(ctx context.Context, apiKey, model string) (*GeminiJSONClient, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiJSONClient{client: client, model: model}, nil
}

func (c *GeminiJSONClient) Provider() string { return "gemini" }

func (c *GeminiJSONClient) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = toGenaiSchema(req.Schema)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	m.SetTemperature(0.4)
	m.SetTopP(0.8)

	resp, err := m.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", ErrUnexpectedBehaviorOfAI, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini returned no content", ErrUnexpectedBehaviorOfAI)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	content := CleanJSONResponse(b.String())
	if !json.Valid([]byte(content)) {
		return "", fmt.Errorf("%w: gemini returned invalid json", ErrUnexpectedBehaviorOfAI)
	}
	return content, nil
}

func (c *GeminiJSONClient) Close() error {
	return c.client.Close()
}

func toGenaiSchema(d jsonschema.Definition) *genai.Schema {
	s := &genai.Schema{Description: d.Description, Enum: d.Enum, Required: d.Required}
	switch d.Type {
	case jsonschema.Object:
		s.Type = genai.TypeObject
	case jsonschema.Array:
		s.Type = genai.TypeArray
	case jsonschema.Integer:
		s.Type = genai.TypeInteger
	case jsonschema.Number:
		s.Type = genai.TypeNumber
	case jsonschema.Boolean:
		s.Type = genai.TypeBoolean
	default:
		s.Type = genai.TypeString
	}
	if d.Items != nil {
		s.Items = toGenaiSchema(*d.Items)
	}
	if len(d.Properties) > 0 {
		s.Properties = make(map[string]*genai.Schema, len(d.Properties))
		for k, v := range d.Properties {
			s.Properties[k] = toGenaiSchema(v)
		}
	}
	return s
}
