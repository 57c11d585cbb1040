package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"riskdigest/internal/core"
	"riskdigest/internal/logger"
	"riskdigest/internal/render"

	"github.com/google/uuid"
)

// Pipeline orchestrates one digest run: cover image, retrieval, deduplication,
// risk assessment, narrative and document assembly.
type Pipeline struct {
	retriever ArticleRetriever
	deduper   Deduplicator
	assessor  RiskAssessor
	narrative NarrativeGenerator
	cover     CoverGenerator // Optional
	renderer  DocumentRenderer

	config *Config
	out    io.Writer
	closer io.Closer
}

// Config holds pipeline configuration
type Config struct {
	Query        string
	TargetCount  int
	ReportCap    int
	ManifestPath string // Optional YAML dump of the digest
}

// DefaultConfig returns the configuration of the weekly digest
func DefaultConfig() *Config {
	return &Config{
		TargetCount: 100,
		ReportCap:   5,
	}
}

// NewPipeline creates a new pipeline with all dependencies. cover may be nil.
func NewPipeline(
	retriever ArticleRetriever,
	deduper Deduplicator,
	assessor RiskAssessor,
	narrative NarrativeGenerator,
	cover CoverGenerator,
	renderer DocumentRenderer,
	config *Config,
) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}

	return &Pipeline{
		retriever: retriever,
		deduper:   deduper,
		assessor:  assessor,
		narrative: narrative,
		cover:     cover,
		renderer:  renderer,
		config:    config,
		out:       os.Stdout,
	}
}

// SetOutput redirects progress output, which goes to stdout by default
func (p *Pipeline) SetOutput(w io.Writer) {
	p.out = w
}

// Close releases resources held by the pipeline's clients
func (p *Pipeline) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// Result contains the output of a run
type Result struct {
	Digest       *core.Digest
	DocumentPath string
	ManifestPath string
	Stats        Stats
}

// Stats tracks pipeline execution metrics
type Stats struct {
	FetchedArticles int
	UniqueArticles  int
	Reports         int
	HasImage        bool
	ProcessingTime  time.Duration
	StartTime       time.Time
	EndTime         time.Time
}

// Run executes the full pipeline. Only retrieval and document writing can fail
// a run; every model or image failure degrades the digest instead.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	stats := Stats{StartTime: time.Now()}
	digest := &core.Digest{ID: uuid.NewString()}
	runLog := logger.Get().With("digest_id", digest.ID)

	// Step 1: Cover image
	if p.cover != nil {
		fmt.Fprintf(p.out, "🎨 Step 1/6: Generating cover image...\n")
		digest.ImageURL = p.cover.Generate(ctx)
		if digest.HasImage() {
			fmt.Fprintf(p.out, "   ✓ Cover image ready\n\n")
		} else {
			fmt.Fprintf(p.out, "   ⚠️  No cover image, continuing without one\n\n")
		}
	} else {
		fmt.Fprintf(p.out, "🎨 Step 1/6: Cover image disabled\n\n")
	}
	stats.HasImage = digest.HasImage()

	// Step 2: Retrieve articles
	fmt.Fprintf(p.out, "🔍 Step 2/6: Fetching posts from Webz.io...\n")
	fetched, err := p.retriever.Fetch(ctx, p.config.Query, p.config.TargetCount)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch articles: %w", err)
	}
	stats.FetchedArticles = len(fetched)
	fmt.Fprintf(p.out, "   ✓ Fetched %d posts\n\n", stats.FetchedArticles)

	// Step 3: Deduplicate
	fmt.Fprintf(p.out, "🧹 Step 3/6: Removing near-duplicate articles...\n")
	unique := p.deduper.Dedupe(fetched)
	stats.UniqueArticles = len(unique)
	fmt.Fprintf(p.out, "   ✓ Kept %d unique articles (%d duplicates removed)\n\n", stats.UniqueArticles, stats.FetchedArticles-stats.UniqueArticles)

	// Step 4: Risk reports
	fmt.Fprintf(p.out, "📊 Step 4/6: Generating risk reports (up to %d)...\n", p.config.ReportCap)
	digest.Reports = p.assessor.Assess(ctx, unique, p.config.ReportCap)
	stats.Reports = len(digest.Reports)
	if stats.Reports == 0 {
		runLog.Warn("No article produced a risk report", "articles", stats.UniqueArticles)
	}
	fmt.Fprintf(p.out, "   ✓ Created %d reports\n\n", stats.Reports)

	// Step 5: Intro and title
	fmt.Fprintf(p.out, "✍️  Step 5/6: Writing introduction and title...\n")
	digest.Introduction = p.narrative.Intro(ctx, digest.Reports)
	digest.Title = p.narrative.Title(ctx, digest.Introduction)
	fmt.Fprintf(p.out, "   ✓ Title: %s\n\n", digest.Title)

	// Step 6: Document
	fmt.Fprintf(p.out, "💾 Step 6/6: Saving to word document...\n")
	digest.GeneratedAt = time.Now().UTC()
	docPath, err := p.renderer.Render(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	fmt.Fprintf(p.out, "   ✓ Saved %s\n\n", docPath)

	result := &Result{Digest: digest, DocumentPath: docPath}

	if p.config.ManifestPath != "" {
		manifestPath, err := render.WriteManifest(digest, p.config.ManifestPath)
		if err != nil {
			// Non-fatal: the document is already written
			runLog.Error("Failed to write manifest", "error", err)
		} else {
			result.ManifestPath = manifestPath
		}
	}

	stats.EndTime = time.Now()
	stats.ProcessingTime = stats.EndTime.Sub(stats.StartTime)
	result.Stats = stats

	runLog.Info("Digest run complete",
		"reports", stats.Reports,
		"fetched", stats.FetchedArticles,
		"unique", stats.UniqueArticles,
		"duration", stats.ProcessingTime,
	)

	return result, nil
}
