package cost

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// ModelPricing represents the list price of a completion model
type ModelPricing struct {
	Model                 string
	InputCostPer1MTokens  float64 // Cost per 1M input tokens in USD
	OutputCostPer1MTokens float64 // Cost per 1M output tokens in USD
	EstimatedOutputTokens int     // Typical length of a full ten-section report
}

// PricingTable contains list prices for the default model of each provider
var PricingTable = map[string]ModelPricing{
	"gpt-4-1106-preview": {
		Model:                 "gpt-4-1106-preview",
		InputCostPer1MTokens:  10.00,
		OutputCostPer1MTokens: 30.00,
		EstimatedOutputTokens: 900,
	},
	"gpt-4o": {
		Model:                 "gpt-4o",
		InputCostPer1MTokens:  2.50,
		OutputCostPer1MTokens: 10.00,
		EstimatedOutputTokens: 900,
	},
	"claude-3-5-sonnet-latest": {
		Model:                 "claude-3-5-sonnet-latest",
		InputCostPer1MTokens:  3.00,
		OutputCostPer1MTokens: 15.00,
		EstimatedOutputTokens: 900,
	},
	"gemini-1.5-flash": {
		Model:                 "gemini-1.5-flash",
		InputCostPer1MTokens:  0.075,
		OutputCostPer1MTokens: 0.30,
		EstimatedOutputTokens: 900,
	},
}

// defaultOutputTokens is used for models missing from the pricing table.
const defaultOutputTokens = 900

// EstimateTokenCount provides a rough estimation of token count for text
// This is a simplified approximation: 1 token per 3.5 characters, rounded up
func EstimateTokenCount(text string) int {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")

	charCount := utf8.RuneCountInString(text)

	return int(math.Ceil(float64(charCount) / 3.5))
}

// Prompt is a single model request to estimate
type Prompt struct {
	Title string
	Text  string
}

// RequestEstimate is the estimated usage of one model request
type RequestEstimate struct {
	Title        string
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// RunEstimate is the estimated usage of a batch of requests
type RunEstimate struct {
	Model             string
	PricingKnown      bool
	Requests          []RequestEstimate
	TotalInputTokens  int
	TotalOutputTokens int
	TotalCost         float64
}

// EstimateRequests estimates tokens and cost of sending every prompt to model,
// assuming each answer is a full report. Costs are zero when the model has no
// pricing entry.
func EstimateRequests(model string, prompts []Prompt) *RunEstimate {
	pricing, known := PricingTable[model]
	outputTokens := defaultOutputTokens
	if known {
		outputTokens = pricing.EstimatedOutputTokens
	}

	estimate := &RunEstimate{
		Model:        model,
		PricingKnown: known,
		Requests:     make([]RequestEstimate, 0, len(prompts)),
	}

	for _, p := range prompts {
		req := RequestEstimate{
			Title:        p.Title,
			InputTokens:  EstimateTokenCount(p.Text),
			OutputTokens: outputTokens,
		}
		req.Cost = float64(req.InputTokens)*pricing.InputCostPer1MTokens/1000000 +
			float64(req.OutputTokens)*pricing.OutputCostPer1MTokens/1000000

		estimate.Requests = append(estimate.Requests, req)
		estimate.TotalInputTokens += req.InputTokens
		estimate.TotalOutputTokens += req.OutputTokens
		estimate.TotalCost += req.Cost
	}

	return estimate
}

// FormatEstimate formats the estimate for display
func (e *RunEstimate) FormatEstimate() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("💰 Worst-case assessment cost for %s\n", e.Model))
	sb.WriteString(fmt.Sprintf("   Requests: %d\n", len(e.Requests)))
	sb.WriteString(fmt.Sprintf("   Input tokens: ~%d\n", e.TotalInputTokens))
	sb.WriteString(fmt.Sprintf("   Output tokens: ~%d\n", e.TotalOutputTokens))
	if e.PricingKnown {
		sb.WriteString(fmt.Sprintf("   Estimated cost: $%.4f\n", e.TotalCost))
	} else {
		sb.WriteString("   Estimated cost: unknown (no pricing for this model)\n")
	}

	return sb.String()
}
