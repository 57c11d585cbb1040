package narrative

import (
	"context"
	"fmt"
	"strings"

	"riskdigest/internal/core"
	"riskdigest/internal/logger"
)

// TitlesPlaceholder is replaced with the report titles in the intro prompt.
const TitlesPlaceholder = "[]"

const introTemplate = `Write a paragraph introducing a weekly blog post that contains financial risk reports about the following titles, don't elaborate on these titles:
[]

The reports are created automatically on a weekly basis using Webz.io news api and ChatGPT. The report is generated by calling the Webz.io news API for negative sentiment news articles categorized as "Economy, Business and Finance". The matching news articles are then run through a ChatGPT prompt to analyze if there is a financial risk in the article. If so it create a structured financial risk report. The following weekly post includes up to %d reports.
`

const titlePrefix = "Title:"

// LLMClient defines the interface for LLM operations needed by the narrative generator
type LLMClient interface {
	// GenerateText generates text from a prompt
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// DefaultReportCap is the report count quoted in the intro prompt when none is set.
const DefaultReportCap = 5

// Generator writes the digest introduction and title
type Generator struct {
	llmClient LLMClient
	reportCap int
}

// NewGenerator creates a new narrative generator. reportCap is the most reports
// a digest holds and is quoted in the intro prompt.
func NewGenerator(llmClient LLMClient, reportCap int) *Generator {
	if reportCap <= 0 {
		reportCap = DefaultReportCap
	}
	return &Generator{
		llmClient: llmClient,
		reportCap: reportCap,
	}
}

// Intro generates the introductory paragraph for the given reports. A model
// failure is logged and yields an empty intro.
func (g *Generator) Intro(ctx context.Context, reports []core.Report) string {
	prompt := InsertTitles(fmt.Sprintf(introTemplate, g.reportCap), reports)

	intro, err := g.llmClient.GenerateText(ctx, prompt)
	if err != nil {
		logger.Error("An error occurred generating the intro", err, "reports", len(reports))
		return ""
	}
	return intro
}

// Title generates a digest title using the intro as context. A model failure
// is logged and yields an empty title.
func (g *Generator) Title(ctx context.Context, intro string) string {
	prompt := "Create a title using the following text as a context:\n" + intro

	title, err := g.llmClient.GenerateText(ctx, prompt)
	if err != nil {
		logger.Error("An error occurred generating the title", err)
		return ""
	}
	return CleanTitle(title)
}

// InsertTitles replaces every placeholder in text with the newline-joined
// report titles.
func InsertTitles(text string, reports []core.Report) string {
	return strings.ReplaceAll(text, TitlesPlaceholder, strings.Join(core.ReportTitles(reports), "\n"))
}

// CleanTitle strips surrounding quotes and a leading "Title:" label that models
// tend to add.
func CleanTitle(raw string) string {
	title := strings.Trim(strings.TrimSpace(raw), `"`)
	if rest, ok := strings.CutPrefix(title, titlePrefix); ok {
		title = strings.Trim(strings.TrimSpace(rest), `"`)
	}
	return strings.TrimSpace(title)
}
