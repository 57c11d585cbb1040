package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"riskdigest/internal/articles"
	"riskdigest/internal/config"
	"riskdigest/internal/core"
	"riskdigest/internal/cost"
	"riskdigest/internal/risk"
	"riskdigest/internal/webz"

	"github.com/spf13/cobra"
)

type previewOptions struct {
	query     string
	target    int
	threshold float64
}

// NewPreviewCmd creates the preview command
func NewPreviewCmd() *cobra.Command {
	var opts previewOptions

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "List the unique articles a run would assess",
		Long: `Fetch posts from Webz.io and remove near-duplicates without calling any
language model, then estimate what assessing every unique article would cost.
Useful to tune the search query and similarity threshold.

Examples:
  riskdigest preview --target 50
  riskdigest preview --threshold 0.6`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadForSearch(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			applyPreviewOverrides(cmd, cfg, opts)
			if err := config.ValidateSearch(cfg); err != nil {
				return err
			}
			applyLogging(cfg)
			return runPreview(cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Webz.io search query (default from config)")
	cmd.Flags().IntVar(&opts.target, "target", 0, "Number of posts to fetch")
	cmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", 0, "Similarity ratio above which articles are duplicates (0.0-1.0)")

	return cmd
}

// applyPreviewOverrides copies explicitly set flags over the loaded configuration
func applyPreviewOverrides(cmd *cobra.Command, cfg *config.Config, opts previewOptions) {
	flags := cmd.Flags()
	if flags.Changed("query") {
		cfg.Search.Query = opts.query
	}
	if flags.Changed("target") {
		cfg.Search.TargetCount = opts.target
	}
	if flags.Changed("threshold") {
		cfg.Pipeline.SimilarityThreshold = opts.threshold
	}
}

func runPreview(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := webz.NewClient(cfg.Search.Webz.APIKey, webz.Options{
		BaseURL:       cfg.Search.Webz.BaseURL,
		PageSize:      cfg.Search.PageSize,
		Timestamp:     cfg.Search.Timestamp,
		MaxTextLength: cfg.Pipeline.MaxTextLength,
		Timeout:       cfg.SearchTimeout(),
	})

	fetched, err := client.Fetch(ctx, cfg.Search.Query, cfg.Search.TargetCount)
	if err != nil {
		return fmt.Errorf("failed to fetch articles: %w", err)
	}
	unique := articles.Dedupe(fetched, cfg.Pipeline.SimilarityThreshold)

	fmt.Println(formatPreview(fetched, unique))
	fmt.Println(estimateAssessment(cfg.ModelName(), unique).FormatEstimate())
	return nil
}

// estimateAssessment prices assessing every unique article, the upper bound of
// a run that never reaches its report cap.
func estimateAssessment(model string, unique []core.Article) *cost.RunEstimate {
	prompts := make([]cost.Prompt, 0, len(unique))
	for _, a := range unique {
		prompts = append(prompts, cost.Prompt{Title: a.Title, Text: risk.BuildPrompt(a)})
	}
	return cost.EstimateRequests(model, prompts)
}

func formatPreview(fetched, unique []core.Article) string {
	out := headerStyle.Render(fmt.Sprintf("📰 %d unique of %d fetched articles", len(unique), len(fetched))) + "\n\n"
	for i, a := range unique {
		out += fmt.Sprintf("%s %s", indexStyle.Render(fmt.Sprintf("%d.", i+1)), a.Title)
		if a.Site != "" {
			out += " " + siteStyle.Render(a.Site)
		}
		out += "\n"
	}
	return out
}
