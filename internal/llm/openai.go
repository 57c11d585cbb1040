package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4-1106-preview"

// OpenAIClient generates text with the OpenAI chat completions API.
type OpenAIClient struct {
	client    openai.Client
	model     string
	maxTokens int
}

// NewOpenAIClient creates a new OpenAI-backed provider. Retries are disabled so
// a failed call surfaces once to the caller.
func NewOpenAIClient(opts Options) *OpenAIClient {
	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")+"/"))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	return &OpenAIClient{
		client:    openai.NewClient(reqOpts...),
		model:     model,
		maxTokens: opts.maxTokens(),
	}
}

// Name returns the provider name
func (c *OpenAIClient) Name() string { return ProviderOpenAI }

// Close releases nothing; the HTTP transport is shared.
func (c *OpenAIClient) Close() error { return nil }

// GenerateText sends prompt as a single user message and concatenates the
// content of every returned choice.
func (c *OpenAIClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(int64(c.maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	fragments := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		fragments = append(fragments, choice.Message.Content)
	}
	return joinFragments(fragments)
}
