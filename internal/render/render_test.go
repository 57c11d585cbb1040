package render

import (
	"archive/zip"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"riskdigest/internal/core"
	"riskdigest/internal/docx"

	"github.com/go-playground/assert/v2"
	"gopkg.in/yaml.v3"
)

const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChAI9jU8="

const sampleReport = `<HTML>
<B>1. Executive Summary:</B>
<UL>
  <LI>Deposit outflows accelerate.</LI>
  <LI>Funding costs rise.</LI>
</UL>
<p>Ignored paragraph</p>
<B>8. Risk Assessment:</B>
<UL><LI>High liquidity risk.</LI></UL>
</HTML>`

type stubDownloader struct {
	data []byte
	err  error
	urls []string
}

func (s *stubDownloader) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	s.urls = append(s.urls, imageURL)
	return s.data, s.err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(onePixelPNG)
	if err != nil {
		t.Fatalf("Invalid test image: %v", err)
	}
	return data
}

func sampleDigest() *core.Digest {
	return &core.Digest{
		ID:           "digest-1",
		Title:        "Liquidity Strains Spread",
		Introduction: "This week two reports stand out.",
		ImageURL:     "https://images.example.com/cover.png",
		Reports: []core.Report{
			{Text: sampleReport, Link: "https://example.com/bank", Title: "Regional bank faces outflows", Published: "2026-10-12T08:00:00.000+03:00"},
			{Text: "<B>1. Executive Summary:</B><UL><LI>Oil demand weakens.</LI></UL>", Link: "https://example.com/oil", Title: "Oil slumps", Published: "2026-10-13T09:00:00.000+03:00"},
		},
		GeneratedAt: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestTranslateReportMarkup(t *testing.T) {
	expected := []Block{
		{Style: docx.StyleHeading2, Text: "1. Executive Summary:"},
		{Style: docx.StyleListBullet, Text: "Deposit outflows accelerate."},
		{Style: docx.StyleListBullet, Text: "Funding costs rise."},
		{Style: docx.StyleHeading2, Text: "8. Risk Assessment:"},
		{Style: docx.StyleListBullet, Text: "High liquidity risk."},
	}

	assert.Equal(t, expected, TranslateReportMarkup(sampleReport))
}

func TestTranslateReportMarkup_EdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		expected []Block
	}{
		{"Plain text", "can't produce report.", nil},
		{"Empty", "", nil},
		{"Lowercase tags", "<b>Title</b><ul><li>Item</li></ul>", []Block{
			{Style: docx.StyleHeading2, Text: "Title"},
			{Style: docx.StyleListBullet, Text: "Item"},
		}},
		{"Orphan list item", "<li>Loose</li><b>Kept</b>", []Block{
			{Style: docx.StyleHeading2, Text: "Kept"},
		}},
		{"Empty bold skipped", "<b> </b><ul><li>x</li></ul>", []Block{
			{Style: docx.StyleListBullet, Text: "x"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TranslateReportMarkup(tt.markup))
		})
	}
}

func TestBuild_Layout(t *testing.T) {
	images := &stubDownloader{data: pngBytes(t)}
	renderer := NewDocxRenderer(Options{}, images)

	doc := renderer.Build(context.Background(), sampleDigest())
	paragraphs := doc.Paragraphs()

	assert.Equal(t, []string{"https://images.example.com/cover.png"}, images.urls)
	assert.Equal(t, 14, len(paragraphs))

	title := paragraphs[0]
	assert.Equal(t, docx.StyleTitle, title.Style)
	assert.Equal(t, docx.AlignCenter, title.Alignment)
	assert.Equal(t, "Liquidity Strains Spread", title.Text())
	assert.Equal(t, float64(DefaultTitleSize), title.Runs()[0].SizePt)

	if !paragraphs[1].HasPicture() {
		t.Error("Expected the cover image right after the title")
	}
	assert.Equal(t, "This week two reports stand out.", paragraphs[2].Text())

	heading := paragraphs[3]
	assert.Equal(t, docx.StyleHeading1, heading.Style)
	assert.Equal(t, 1, len(heading.Hyperlinks()))
	assert.Equal(t, "https://example.com/bank", heading.Hyperlinks()[0].URL)
	assert.Equal(t, "Regional bank faces outflows", heading.Text())
	assert.Equal(t, "Published on: 2026-10-12T08:00:00.000+03:00", paragraphs[4].Text())
	assert.Equal(t, docx.StyleHeading2, paragraphs[5].Style)
	assert.Equal(t, docx.StyleListBullet, paragraphs[6].Style)

	second := paragraphs[10]
	assert.Equal(t, "Oil slumps", second.Text())
	assert.Equal(t, "Published on: 2026-10-13T09:00:00.000+03:00", paragraphs[11].Text())
	assert.Equal(t, docx.StyleHeading2, paragraphs[12].Style)
	assert.Equal(t, "Oil demand weakens.", paragraphs[13].Text())

	for _, run := range doc.Runs() {
		assert.Equal(t, DefaultFont, run.Font)
	}
}

func TestBuild_NoImage(t *testing.T) {
	images := &stubDownloader{data: pngBytes(t)}
	digest := sampleDigest()
	digest.ImageURL = ""

	doc := NewDocxRenderer(Options{}, images).Build(context.Background(), digest)

	assert.Equal(t, 0, len(images.urls))
	assert.Equal(t, 13, len(doc.Paragraphs()))
	assert.Equal(t, "This week two reports stand out.", doc.Paragraphs()[1].Text())
}

func TestBuild_ImageDownloadFailureIsSkipped(t *testing.T) {
	images := &stubDownloader{err: errors.New("status 403")}

	doc := NewDocxRenderer(Options{}, images).Build(context.Background(), sampleDigest())

	assert.Equal(t, 13, len(doc.Paragraphs()))
	for _, p := range doc.Paragraphs() {
		if p.HasPicture() {
			t.Error("No picture expected after a failed download")
		}
	}
}

func TestBuild_CustomFont(t *testing.T) {
	digest := sampleDigest()
	digest.ImageURL = ""

	doc := NewDocxRenderer(Options{Font: "Georgia", TitleSize: 30}, nil).Build(context.Background(), digest)

	assert.Equal(t, float64(30), doc.Paragraphs()[0].Runs()[0].SizePt)
	for _, run := range doc.Runs() {
		assert.Equal(t, "Georgia", run.Font)
	}
}

func TestRender_WritesDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "financial risk digest.docx")
	renderer := NewDocxRenderer(Options{Path: path}, &stubDownloader{data: pngBytes(t)})

	got, err := renderer.Render(context.Background(), sampleDigest())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	assert.Equal(t, path, got)

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("Output is not a docx archive: %v", err)
	}
	defer func() { _ = zr.Close() }()

	var body string
	var hasImage bool
	for _, f := range zr.File {
		switch f.Name {
		case "word/document.xml":
			rc, _ := f.Open()
			data, _ := io.ReadAll(rc)
			_ = rc.Close()
			body = string(data)
		case "word/media/image1.png":
			hasImage = true
		}
	}

	assert.Equal(t, true, hasImage)
	assert.Equal(t, 2, strings.Count(body, "<w:hyperlink "))
	if !strings.Contains(body, "Published on: 2026-10-12T08:00:00.000+03:00") {
		t.Error("Expected publication line in document")
	}
}

func TestRender_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest.docx")
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	digest := sampleDigest()
	digest.ImageURL = ""
	if _, err := NewDocxRenderer(Options{Path: path}, nil).Render(context.Background(), digest); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "PK") {
		t.Error("Expected the stale file to be replaced by a zip archive")
	}
}

func TestRender_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	digest := sampleDigest()
	digest.ImageURL = ""
	_, err := NewDocxRenderer(Options{Path: filepath.Join(blocker, "digest.docx")}, nil).Render(context.Background(), digest)
	if err == nil {
		t.Error("Expected error when the output directory cannot be created")
	}
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifests", "digest.yaml")
	digest := sampleDigest()

	got, err := WriteManifest(digest, path)
	assert.Equal(t, nil, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read manifest: %v", err)
	}

	var decoded core.Digest
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Manifest is not valid YAML: %v", err)
	}
	assert.Equal(t, "digest-1", decoded.ID)
	assert.Equal(t, "https://images.example.com/cover.png", decoded.ImageURL)
	assert.Equal(t, []string{"Regional bank faces outflows", "Oil slumps"}, core.ReportTitles(decoded.Reports))
}

func TestWriteManifest_DropsInlineImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest.yaml")
	digest := sampleDigest()
	digest.ImageURL = "data:image/png;base64," + onePixelPNG

	if _, err := WriteManifest(digest, path); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "base64") {
		t.Error("Inline image data should not be written to the manifest")
	}
	assert.Equal(t, "data:image/png;base64,"+onePixelPNG, digest.ImageURL)
}
