package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiClient generates text with Google Gemini. The SDK exposes no option to
// turn off its transport retries, so every call is bounded by timeout instead.
type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	timeout   time.Duration
}

// NewGeminiClient creates a new Gemini-backed provider.
func NewGeminiClient(ctx context.Context, opts Options) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	modelName := opts.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetMaxOutputTokens(int32(opts.maxTokens()))

	return &GeminiClient{client: client, model: model, modelName: modelName, timeout: opts.Timeout}, nil
}

// Name returns the provider name
func (c *GeminiClient) Name() string { return ProviderGemini }

// Close closes the underlying gRPC/HTTP client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// GenerateText sends prompt and concatenates the text parts of every candidate.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := callContext(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	var fragments []string
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				fragments = append(fragments, string(text))
			}
		}
	}
	return joinFragments(fragments)
}
