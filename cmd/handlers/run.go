package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"riskdigest/internal/config"
	"riskdigest/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// runOptions holds command-line overrides for a digest run
type runOptions struct {
	query       string
	reports     int
	threshold   float64
	target      int
	output      string
	manifest    string
	concurrency int
	noImage     bool
}

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate the financial risk digest document",
		Long: `Run the full pipeline: generate a cover image, fetch and de-duplicate news
articles, create risk reports until the report cap is reached, write the
introduction and title, and save everything as a .docx document.

Examples:
  # Weekly digest with defaults
  riskdigest run

  # Three reports, no cover image, custom output
  riskdigest run --reports 3 --no-image --output weekly.docx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Webz.io search query (default from config)")
	cmd.Flags().IntVarP(&opts.reports, "reports", "n", 0, "Maximum number of reports in the digest")
	cmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", 0, "Similarity ratio above which articles are duplicates (0.0-1.0)")
	cmd.Flags().IntVar(&opts.target, "target", 0, "Number of posts to fetch before de-duplication")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output .docx path")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "Also write the digest as YAML to this path")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", 0, "Number of articles assessed in parallel")
	cmd.Flags().BoolVar(&opts.noImage, "no-image", false, "Skip cover image generation")

	return cmd
}

func runDigest(cmd *cobra.Command, opts runOptions) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cmd, cfg, opts)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	applyLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := pipeline.NewBuilder(cfg)
	if opts.noImage {
		builder.WithoutImage()
	}
	p, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	fmt.Printf("📰 Building financial risk digest (up to %d reports)\n\n", cfg.Pipeline.ReportCap)

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	printRunSummary(result)
	return nil
}

// applyOverrides copies explicitly set flags over the loaded configuration
func applyOverrides(cmd *cobra.Command, cfg *config.Config, opts runOptions) {
	flags := cmd.Flags()
	if flags.Changed("query") {
		cfg.Search.Query = opts.query
	}
	if flags.Changed("reports") {
		cfg.Pipeline.ReportCap = opts.reports
	}
	if flags.Changed("threshold") {
		cfg.Pipeline.SimilarityThreshold = opts.threshold
	}
	if flags.Changed("target") {
		cfg.Search.TargetCount = opts.target
	}
	if flags.Changed("output") {
		cfg.Output.Path = opts.output
	}
	if flags.Changed("manifest") {
		cfg.Output.Manifest = opts.manifest
	}
	if flags.Changed("concurrency") {
		cfg.Pipeline.Concurrency = opts.concurrency
	}
}

func printRunSummary(result *pipeline.Result) {
	digest := result.Digest

	lines := []string{
		headerStyle.Render("✅ Digest ready"),
		keyValue("Title", digest.Title),
		keyValue("Document", result.DocumentPath),
		keyValue("Reports", fmt.Sprintf("%d", len(digest.Reports))),
		keyValue("Articles", fmt.Sprintf("%d fetched, %d unique", result.Stats.FetchedArticles, result.Stats.UniqueArticles)),
		keyValue("Cover image", fmt.Sprintf("%t", result.Stats.HasImage)),
		keyValue("Duration", result.Stats.ProcessingTime.Round(time.Millisecond).String()),
	}
	if result.ManifestPath != "" {
		lines = append(lines, keyValue("Manifest", result.ManifestPath))
	}
	if len(digest.Reports) > 0 {
		var titles []string
		for i, r := range digest.Reports {
			titles = append(titles, fmt.Sprintf("%s %s", indexStyle.Render(fmt.Sprintf("%d.", i+1)), r.Title))
		}
		lines = append(lines, "", strings.Join(titles, "\n"))
	}

	fmt.Println(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}
