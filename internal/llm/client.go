// Package llm turns raw statement text into structured transactions
// using a generative model.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/finreview/statement-pipeline/internal/statement"
)

//go:generate mockgen -source=client.go -destination=mock_model.go -package=llm

const (
	// DefaultModel is used when the caller does not pick one.
	DefaultModel = "gemini-2.0-flash"

	defaultTimeout     = 60 * time.Second
	defaultTemperature = float32(0.1)
	maxOutputTokens    = int32(8192)
)

// ModelClient is the minimal surface the parser needs from a
// generative model.
type ModelClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Gemini API through the official SDK.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient creates a client for the given model. An empty model
// selects DefaultModel.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		// API version v1 is what docs use for current Gemini models.
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: defaultTimeout,
	}, nil
}

// Generate sends the prompt and returns the model's text response.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(defaultTemperature),
		MaxOutputTokens:  maxOutputTokens,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", statement.WrapError(statement.ErrModelUnavailable, "model request failed", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", statement.NewError(statement.ErrModelBlocked,
			fmt.Sprintf("model blocked the request: %s", resp.PromptFeedback.BlockReason))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", statement.NewError(statement.ErrEmptyResponse, "model returned an empty response")
	}
	return text, nil
}
