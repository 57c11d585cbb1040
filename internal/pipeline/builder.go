package pipeline

import (
	"context"
	"fmt"

	"riskdigest/internal/articles"
	"riskdigest/internal/config"
	"riskdigest/internal/llm"
	"riskdigest/internal/logger"
	"riskdigest/internal/narrative"
	"riskdigest/internal/render"
	"riskdigest/internal/risk"
	"riskdigest/internal/visual"
	"riskdigest/internal/webz"
)

// Builder helps construct a fully configured Pipeline from application config
type Builder struct {
	cfg       *config.Config
	provider  llm.Provider
	skipImage bool
}

// NewBuilder creates a new pipeline builder
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// WithProvider overrides the language model provider built from config
func (b *Builder) WithProvider(provider llm.Provider) *Builder {
	b.provider = provider
	return b
}

// WithoutImage disables cover image generation
func (b *Builder) WithoutImage() *Builder {
	b.skipImage = true
	return b
}

// Build constructs a fully configured Pipeline. The caller must Close it.
func (b *Builder) Build(ctx context.Context) (*Pipeline, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	cfg := b.cfg

	provider := b.provider
	if provider == nil {
		var err error
		provider, err = llm.NewProvider(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM provider: %w", err)
		}
	}

	retriever := webz.NewClient(cfg.Search.Webz.APIKey, webz.Options{
		BaseURL:       cfg.Search.Webz.BaseURL,
		PageSize:      cfg.Search.PageSize,
		Timestamp:     cfg.Search.Timestamp,
		MaxTextLength: cfg.Pipeline.MaxTextLength,
		Timeout:       cfg.SearchTimeout(),
	})

	deduper := articles.NewDeduper(cfg.Pipeline.SimilarityThreshold)
	assessor := risk.NewAssessor(provider, cfg.Pipeline.Concurrency)
	generator := narrative.NewGenerator(provider, cfg.Pipeline.ReportCap)

	// A nil *CoverGenerator must not end up inside the interface
	var cover CoverGenerator
	switch {
	case b.skipImage || !cfg.Image.Enabled:
		logger.Debug("Cover image generation disabled")
	case !cfg.HasImageCredentials():
		logger.Warn("No OpenAI API key configured, skipping cover image")
	default:
		client := visual.NewDALLEClient(cfg.AI.OpenAI.APIKey, cfg.Image.Model, cfg.AI.OpenAI.BaseURL, cfg.ImageTimeout())
		cover = visual.NewCoverGenerator(client, cfg.Image.Prompt, cfg.Image.Width, cfg.Image.Height)
	}

	renderer := render.NewDocxRenderer(render.Options{
		Path:       cfg.Output.Path,
		Font:       cfg.Output.Font,
		TitleSize:  cfg.Output.TitleSize,
		ImageWidth: cfg.Output.ImageWidth,
	}, visual.NewDownloader(cfg.ImageTimeout()))

	p := NewPipeline(retriever, deduper, assessor, generator, cover, renderer, &Config{
		Query:        cfg.Search.Query,
		TargetCount:  cfg.Search.TargetCount,
		ReportCap:    cfg.Pipeline.ReportCap,
		ManifestPath: cfg.Output.Manifest,
	})
	p.closer = provider

	return p, nil
}
