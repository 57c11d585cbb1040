package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"riskdigest/internal/config"
)

const (
	// ProviderOpenAI selects OpenAI chat completions.
	ProviderOpenAI = "openai"
	// ProviderAnthropic selects Anthropic messages.
	ProviderAnthropic = "anthropic"
	// ProviderGemini selects Google Gemini.
	ProviderGemini = "gemini"

	// DefaultMaxTokens caps the length of every completion.
	DefaultMaxTokens = 4096
)

// Provider is a single-turn text completion backend. GenerateText sends the
// prompt as one user message and returns every returned completion fragment
// concatenated in order.
type Provider interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Name() string
	Close() error
}

// Options are the settings shared by all providers.
type Options struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// callContext bounds a single model call by timeout when it is positive.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (o Options) maxTokens() int {
	if o.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return o.MaxTokens
}

// NewProvider builds the provider selected in the AI configuration, wrapped in
// a rate limiter when requests_per_minute is set.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	ai := cfg.AI
	timeout := cfg.AITimeout()

	var (
		provider Provider
		err      error
	)
	switch ai.Provider {
	case ProviderOpenAI, "":
		provider = NewOpenAIClient(Options{
			APIKey:    ai.OpenAI.APIKey,
			Model:     ai.OpenAI.Model,
			BaseURL:   ai.OpenAI.BaseURL,
			MaxTokens: ai.MaxTokens,
			Timeout:   timeout,
		})
	case ProviderAnthropic:
		provider = NewAnthropicClient(Options{
			APIKey:    ai.Anthropic.APIKey,
			Model:     ai.Anthropic.Model,
			MaxTokens: ai.MaxTokens,
			Timeout:   timeout,
		})
	case ProviderGemini:
		provider, err = NewGeminiClient(ctx, Options{
			APIKey:    ai.Gemini.APIKey,
			Model:     ai.Gemini.Model,
			MaxTokens: ai.MaxTokens,
			Timeout:   timeout,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", ai.Provider)
	}

	if ai.RequestsPerMinute > 0 {
		provider = NewLimitedClient(provider, ai.RequestsPerMinute)
	}
	return provider, nil
}

// joinFragments concatenates completion fragments and rejects an empty result.
func joinFragments(fragments []string) (string, error) {
	text := strings.Join(fragments, "")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
