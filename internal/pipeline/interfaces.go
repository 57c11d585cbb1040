package pipeline

import (
	"context"

	"riskdigest/internal/core"
)

// ArticleRetriever fetches candidate articles from the news search API
type ArticleRetriever interface {
	// Fetch collects at least target articles when available
	Fetch(ctx context.Context, query string, target int) ([]core.Article, error)
}

// Deduplicator drops near-duplicate articles, keeping the first seen
type Deduplicator interface {
	Dedupe(articles []core.Article) []core.Article
}

// RiskAssessor turns qualifying articles into structured risk reports
type RiskAssessor interface {
	// Assess returns at most reportCap reports, in article order
	Assess(ctx context.Context, articles []core.Article, reportCap int) []core.Report
}

// NarrativeGenerator writes the digest introduction and title
type NarrativeGenerator interface {
	Intro(ctx context.Context, reports []core.Report) string
	Title(ctx context.Context, intro string) string
}

// CoverGenerator produces the cover image URL, or "" when unavailable
type CoverGenerator interface {
	Generate(ctx context.Context) string
}

// DocumentRenderer writes the assembled digest and returns the output path
type DocumentRenderer interface {
	Render(ctx context.Context, digest *core.Digest) (string, error)
}
