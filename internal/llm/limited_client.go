package llm

import (
	"context"
	"fmt"
	"time"

	"riskdigest/internal/logger"

	"golang.org/x/time/rate"
)

// LimitedClient wraps a Provider and spaces out requests to stay under a
// requests-per-minute budget.
type LimitedClient struct {
	provider Provider
	limiter  *rate.Limiter
}

// NewLimitedClient wraps provider with a limiter allowing rpm requests per minute.
func NewLimitedClient(provider Provider, rpm int) *LimitedClient {
	interval := time.Minute / time.Duration(rpm)
	return &LimitedClient{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// GenerateText waits for a token before delegating.
func (c *LimitedClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	if waited := time.Since(start); waited > time.Second {
		logger.Debug("Rate limited LLM request", "provider", c.provider.Name(), "waited", waited)
	}
	return c.provider.GenerateText(ctx, prompt)
}

// Name returns the wrapped provider name
func (c *LimitedClient) Name() string { return c.provider.Name() }

// Close closes the wrapped provider
func (c *LimitedClient) Close() error { return c.provider.Close() }
