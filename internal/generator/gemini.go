package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API, the model family the quiz prompts
// were tuned on.
type GeminiClient struct {
	client *genai.Client
	model  string
	opts   clientOptions
}

func NewGeminiClient(ctx context.Context, apiKey, model string, opts clientOptions) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model, opts: opts}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	temp := float32(c.opts.Temperature)
	topP := float32(0.95)
	topK := float32(40)
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(c.opts.MaxTokens),
		Temperature:      &temp,
		TopP:             &topP,
		TopK:             &topK,
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: userPrompt}},
	}}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("no text content in Gemini response")
	}

	resp := &LLMResponse{Content: text}
	if result.UsageMetadata != nil {
		resp.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		resp.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	return resp, nil
}

// The SDK returns APIError by value.
func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		quota := apiErr.Status == "RESOURCE_EXHAUSTED" || strings.Contains(strings.ToLower(apiErr.Message), "quota")
		return classifyStatus(apiErr.Code, quota, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ErrProviderUnavailable{Err: err}
}
