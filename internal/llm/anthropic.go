package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-3-5-sonnet-latest"

// AnthropicClient generates text with the Anthropic messages API.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicClient creates a new Anthropic-backed provider.
func NewAnthropicClient(opts Options) *AnthropicClient {
	model := opts.Model
	if model == "" {
		model = DefaultAnthropicModel
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

	return &AnthropicClient{
		client:    anthropic.NewClient(reqOpts...),
		model:     model,
		maxTokens: opts.maxTokens(),
	}
}

// Name returns the provider name
func (c *AnthropicClient) Name() string { return ProviderAnthropic }

// Close is a no-op.
func (c *AnthropicClient) Close() error { return nil }

// GenerateText sends prompt as a single user message and concatenates every
// text block of the reply.
func (c *AnthropicClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}

	fragments := make([]string, 0, len(resp.Content))
	for _, block := range resp.Content {
		if block.Type == "text" {
			fragments = append(fragments, block.Text)
		}
	}
	return joinFragments(fragments)
}
