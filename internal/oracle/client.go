// Package oracle provides the bridge between form questions and the external
// language-model oracle, plus the numeric answer extraction pipeline.
package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ModelTier represents the complexity/capability level of a model.
type ModelTier string

const (
	// TierLite is for simple tasks: topic routing, option picking.
	TierLite ModelTier = "lite"
	// TierStandard is for moderate generation: free-text answers.
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form generation: cover letters.
	TierAdvanced ModelTier = "advanced"
)

// Reply is one oracle completion with its token accounting.
type Reply struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Client is an abstraction over LLM providers. Implementations must return
// within the deadline of the supplied context or fail.
type Client interface {
	Complete(ctx context.Context, prompt string, tier ModelTier) (Reply, error)
	Close() error
}

// ClientConfig holds the model names per tier.
type ClientConfig struct {
	Models map[ModelTier]string
}

// DefaultClientConfig returns the default Gemini model mapping.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// Model returns the model name for a tier, falling back down the tiers.
func (c *ClientConfig) Model(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *ClientConfig
}

// NewGeminiClient creates a Gemini-backed oracle client.
func NewGeminiClient(ctx context.Context, config *ClientConfig, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultClientConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, config: config}, nil
}

// Complete sends one prompt and returns the text reply with token usage.
func (c *GeminiClient) Complete(ctx context.Context, prompt string, tier ModelTier) (Reply, error) {
	modelName := c.config.Model(tier)
	if modelName == "" {
		return Reply{}, fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Reply{}, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return Reply{}, err
	}

	reply := Reply{Text: text, Model: modelName}
	if resp.UsageMetadata != nil {
		reply.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		reply.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return reply, nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
