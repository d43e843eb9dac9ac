package utils

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAIJSONClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIJSONClient(apiKey, model string) *OpenAIJSONClient {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIJSONClient{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAIJSONClient) Provider() string { return "openai" }

// GenerateJSON uses strict json_schema output so the reply is a single
// object with exactly the declared keys.
func (c *OpenAIJSONClient) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	schema := req.Schema
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: 0.4,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Name,
				Schema: &schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", ErrUnexpectedBehaviorOfAI, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", ErrUnexpectedBehaviorOfAI)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: openai returned empty output", ErrUnexpectedBehaviorOfAI)
	}
	return content, nil
}
