package render

import (
	"context"
	"fmt"

	"riskdigest/internal/core"
	"riskdigest/internal/docx"
	"riskdigest/internal/logger"
)

const (
	// DefaultFont is applied to every run of the document.
	DefaultFont = "NeueHaasUnica-Light"
	// DefaultTitleSize is the title font size in points.
	DefaultTitleSize = 24
	// DefaultImageWidth is the cover image width in inches.
	DefaultImageWidth = 6.0
	// DefaultOutputPath is where the document is written.
	DefaultOutputPath = "financial risk digest.docx"
)

// ImageDownloader fetches the bytes of the cover image
type ImageDownloader interface {
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

// Options controls document layout and destination
type Options struct {
	Path       string
	Font       string
	TitleSize  int
	ImageWidth float64
}

// DocxRenderer assembles a digest into a Word document
type DocxRenderer struct {
	opts   Options
	images ImageDownloader
}

// NewDocxRenderer creates a renderer. images may be nil when digests never
// carry a cover image.
func NewDocxRenderer(opts Options, images ImageDownloader) *DocxRenderer {
	if opts.Path == "" {
		opts.Path = DefaultOutputPath
	}
	if opts.Font == "" {
		opts.Font = DefaultFont
	}
	if opts.TitleSize <= 0 {
		opts.TitleSize = DefaultTitleSize
	}
	if opts.ImageWidth <= 0 {
		opts.ImageWidth = DefaultImageWidth
	}
	return &DocxRenderer{opts: opts, images: images}
}

// Render builds the document for digest and saves it, returning the file path.
func (r *DocxRenderer) Render(ctx context.Context, digest *core.Digest) (string, error) {
	doc := r.Build(ctx, digest)
	if err := doc.Save(r.opts.Path); err != nil {
		return "", fmt.Errorf("failed to save document %s: %w", r.opts.Path, err)
	}
	return r.opts.Path, nil
}

// Build lays out the digest: a centred title, the optional cover image, the
// introduction, then for each report a linked heading, its publication date and
// the translated report body. Runs without an explicit font get the document font.
func (r *DocxRenderer) Build(ctx context.Context, digest *core.Digest) *docx.Document {
	doc := docx.New()

	title := doc.AddParagraph("", docx.StyleTitle)
	title.Alignment = docx.AlignCenter
	titleRun := title.AddRun(digest.Title)
	titleRun.Font = r.opts.Font
	titleRun.SizePt = float64(r.opts.TitleSize)

	if digest.HasImage() {
		r.addCover(ctx, doc, digest.ImageURL)
	}

	doc.AddParagraph(digest.Introduction, "")

	for _, report := range digest.Reports {
		heading := doc.AddParagraph("", docx.StyleHeading1)
		doc.AddHyperlink(heading, report.Link, report.Title)
		doc.AddParagraph("Published on: "+report.Published, "")

		for _, block := range TranslateReportMarkup(report.Text) {
			doc.AddParagraph(block.Text, block.Style)
		}
	}

	for _, run := range doc.Runs() {
		if run.Font == "" {
			run.Font = r.opts.Font
		}
	}

	return doc
}

func (r *DocxRenderer) addCover(ctx context.Context, doc *docx.Document, imageURL string) {
	if r.images == nil {
		logger.Warn("No image downloader configured, skipping cover image")
		return
	}

	data, err := r.images.DownloadImage(ctx, imageURL)
	if err != nil {
		logger.Error("Failed to download image", err)
		return
	}
	if _, err := doc.AddPicture(data, r.opts.ImageWidth); err != nil {
		logger.Error("Failed to embed image", err)
	}
}
