package risk

import (
	"context"

	"riskdigest/internal/core"
	"riskdigest/internal/logger"

	"golang.org/x/sync/errgroup"
)

// DefaultReportCap is the maximum number of reports in one digest.
const DefaultReportCap = 5

// LLMClient defines the interface for LLM operations needed by the assessor
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Assessor asks a language model whether each article describes a financial
// risk and keeps the structured reports it produces.
type Assessor struct {
	llmClient   LLMClient
	concurrency int
}

// NewAssessor creates a new risk assessor. A concurrency below 2 assesses
// articles one at a time.
func NewAssessor(llmClient LLMClient, concurrency int) *Assessor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Assessor{llmClient: llmClient, concurrency: concurrency}
}

type outcome struct {
	text string
	err  error
}

// Assess returns the reports of the first reportCap qualifying articles, in
// article order. Articles are processed in windows no larger than the number of
// reports still missing, and processing stops as soon as the cap is reached.
// Model failures are logged and the article is skipped.
func (a *Assessor) Assess(ctx context.Context, articles []core.Article, reportCap int) []core.Report {
	reports := make([]core.Report, 0, max(reportCap, 0))

	for start := 0; start < len(articles) && len(reports) < reportCap; {
		if err := ctx.Err(); err != nil {
			logger.Warn("Risk assessment interrupted", "error", err, "reports", len(reports))
			break
		}

		end := min(start+min(a.concurrency, reportCap-len(reports)), len(articles))
		window := articles[start:end]
		outcomes := a.assessWindow(ctx, window)

		for i, article := range window {
			result := outcomes[i]
			if result.err != nil {
				logger.Error("An error occurred assessing article", result.err, "title", article.Title)
				continue
			}
			if !IsStructuredReport(result.text) {
				logger.Info("Can't produce report", "title", article.Title)
				continue
			}

			reports = append(reports, core.Report{
				Text:      result.text,
				Link:      article.Link,
				Title:     article.Title,
				Published: article.Published,
			})
			logger.Info("Created a report", "title", article.Title, "count", len(reports))

			if len(reports) == reportCap {
				break
			}
		}
		start = end
	}

	return reports
}

func (a *Assessor) assessWindow(ctx context.Context, window []core.Article) []outcome {
	outcomes := make([]outcome, len(window))

	if len(window) == 1 {
		outcomes[0] = a.assessOne(ctx, window[0])
		return outcomes
	}

	var g errgroup.Group
	for i := range window {
		g.Go(func() error {
			outcomes[i] = a.assessOne(ctx, window[i])
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (a *Assessor) assessOne(ctx context.Context, article core.Article) outcome {
	logger.Info("Creating report", "title", article.Title)
	text, err := a.llmClient.GenerateText(ctx, BuildPrompt(article))
	return outcome{text: text, err: err}
}
