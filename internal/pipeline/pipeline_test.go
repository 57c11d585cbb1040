package pipeline

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"riskdigest/internal/articles"
	"riskdigest/internal/config"
	"riskdigest/internal/core"
	"riskdigest/internal/narrative"
	"riskdigest/internal/render"
	"riskdigest/internal/risk"

	"github.com/go-playground/assert/v2"
)

// fakeLLM answers every prompt the pipeline sends. Articles whose text contains
// "qualifies" get a structured report.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	closed  bool
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	switch {
	case strings.HasPrefix(prompt, "Carefully review"):
		if strings.Contains(prompt, "qualifies") {
			return "<B>1. Executive Summary:</B><UL><LI>Material risk.</LI></UL>", nil
		}
		return "can't produce report.", nil
	case strings.HasPrefix(prompt, "Write a paragraph introducing"):
		return "This week's digest covers the reports below.", nil
	case strings.HasPrefix(prompt, "Create a title"):
		return `"Title: Weekly Risk Watch"`, nil
	}
	return "", errors.New("unexpected prompt")
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Close() error {
	f.closed = true
	return nil
}

type stubRetriever struct {
	articles []core.Article
	err      error
	query    string
	target   int
}

func (s *stubRetriever) Fetch(ctx context.Context, query string, target int) ([]core.Article, error) {
	s.query, s.target = query, target
	return s.articles, s.err
}

type stubCover struct{ url string }

func (s stubCover) Generate(ctx context.Context) string { return s.url }

type countingRenderer struct{ calls int }

func (c *countingRenderer) Render(ctx context.Context, digest *core.Digest) (string, error) {
	c.calls++
	return "unused.docx", nil
}

func makeArticles() []core.Article {
	var out []core.Article
	for i := 0; i < 10; i++ {
		verdict := "no risk"
		if i%3 != 0 {
			verdict = "qualifies"
		}
		out = append(out, core.Article{
			ID:        fmt.Sprintf("a%d", i),
			Title:     fmt.Sprintf("Story %d", i),
			Text:      fmt.Sprintf("Story %d %s. %s", i, verdict, strings.Repeat(string(rune('a'+i)), 40)),
			Link:      fmt.Sprintf("https://example.com/%d", i),
			Published: "2026-10-12",
		})
	}
	// Near-duplicate of the first qualifying story
	dup := out[1]
	dup.ID, dup.Title = "dup", "Story 1 (syndicated)"
	return append(out[:2], append([]core.Article{dup}, out[2:]...)...)
}

func documentXML(t *testing.T, path string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("Output is not a docx archive: %v", err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, _ := f.Open()
			data, _ := io.ReadAll(rc)
			_ = rc.Close()
			return string(data)
		}
	}
	t.Fatal("document.xml missing")
	return ""
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "financial risk digest.docx")
	manifestPath := filepath.Join(dir, "digest.yaml")

	llm := &fakeLLM{}
	retriever := &stubRetriever{articles: makeArticles()}
	p := NewPipeline(
		retriever,
		articles.NewDeduper(articles.DefaultSimilarityThreshold),
		risk.NewAssessor(llm, 1),
		narrative.NewGenerator(llm, 5),
		nil,
		render.NewDocxRenderer(render.Options{Path: docPath}, nil),
		&Config{Query: "sentiment:negative", TargetCount: 100, ReportCap: 5, ManifestPath: manifestPath},
	)
	p.SetOutput(io.Discard)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	assert.Equal(t, "sentiment:negative", retriever.query)
	assert.Equal(t, 100, retriever.target)
	assert.Equal(t, 11, result.Stats.FetchedArticles)
	assert.Equal(t, 10, result.Stats.UniqueArticles)

	// Stories 1, 2, 4, 5, 7 are the first five qualifying ones
	assert.Equal(t,
		[]string{"Story 1", "Story 2", "Story 4", "Story 5", "Story 7"},
		core.ReportTitles(result.Digest.Reports),
	)
	for _, r := range result.Digest.Reports {
		if !risk.IsStructuredReport(r.Text) {
			t.Errorf("Report %q lacks the marker", r.Title)
		}
	}

	assert.Equal(t, "Weekly Risk Watch", result.Digest.Title)
	assert.Equal(t, "This week's digest covers the reports below.", result.Digest.Introduction)
	assert.Equal(t, "", result.Digest.ImageURL)
	if result.Digest.ID == "" {
		t.Error("Expected a digest ID")
	}

	assert.Equal(t, docPath, result.DocumentPath)
	body := documentXML(t, docPath)
	assert.Equal(t, 5, strings.Count(body, "<w:hyperlink "))
	if !strings.Contains(body, "Weekly Risk Watch") {
		t.Error("Expected the title in the document")
	}

	assert.Equal(t, manifestPath, result.ManifestPath)
	if _, err := os.Stat(manifestPath); err != nil {
		t.Errorf("Expected manifest to be written: %v", err)
	}

	// Assessment stops at the cap: stories 0..7 plus the intro and title prompts
	assert.Equal(t, 8+2, len(llm.prompts))
}

func TestRun_IntroListsReportTitles(t *testing.T) {
	llm := &fakeLLM{}
	p := NewPipeline(
		&stubRetriever{articles: makeArticles()[:3]},
		articles.NewDeduper(articles.DefaultSimilarityThreshold),
		risk.NewAssessor(llm, 1),
		narrative.NewGenerator(llm, 5),
		stubCover{},
		&countingRenderer{},
		&Config{ReportCap: 5, TargetCount: 3},
	)
	p.SetOutput(io.Discard)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var intro string
	for _, prompt := range llm.prompts {
		if strings.HasPrefix(prompt, "Write a paragraph introducing") {
			intro = prompt
		}
	}
	if !strings.Contains(intro, "Story 1\n") {
		t.Errorf("Expected report titles in intro prompt, got %q", intro)
	}
}

func TestRun_CoverImageIsUsed(t *testing.T) {
	llm := &fakeLLM{}
	p := NewPipeline(
		&stubRetriever{},
		articles.NewDeduper(0.7),
		risk.NewAssessor(llm, 1),
		narrative.NewGenerator(llm, 5),
		stubCover{url: "https://images.example.com/cover.png"},
		&countingRenderer{},
		nil,
	)
	p.SetOutput(io.Discard)

	result, err := p.Run(context.Background())
	assert.Equal(t, nil, err)
	assert.Equal(t, "https://images.example.com/cover.png", result.Digest.ImageURL)
	assert.Equal(t, true, result.Stats.HasImage)
	assert.Equal(t, 0, len(result.Digest.Reports))
}

func TestRun_RetrievalFailureAborts(t *testing.T) {
	llm := &fakeLLM{}
	renderer := &countingRenderer{}
	p := NewPipeline(
		&stubRetriever{err: errors.New("webz API error (status 401)")},
		articles.NewDeduper(0.7),
		risk.NewAssessor(llm, 1),
		narrative.NewGenerator(llm, 5),
		nil,
		renderer,
		nil,
	)
	p.SetOutput(io.Discard)

	_, err := p.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "failed to fetch articles") {
		t.Errorf("Expected fetch error, got %v", err)
	}
	assert.Equal(t, 0, renderer.calls)
	assert.Equal(t, 0, len(llm.prompts))
}

func TestBuilder_Build(t *testing.T) {
	cfg := &config.Config{
		Search: config.Search{
			Query:       config.DefaultQuery,
			TargetCount: 100,
			Webz:        config.WebzConfig{APIKey: "webz-key"},
		},
		AI:       config.AI{Provider: "openai", OpenAI: config.OpenAIConfig{APIKey: "sk-test"}},
		Image:    config.Image{Enabled: true},
		Pipeline: config.Pipeline{ReportCap: 5, SimilarityThreshold: 0.7, MaxTextLength: 10000, Concurrency: 1},
		Output:   config.Output{Path: filepath.Join(t.TempDir(), "out.docx")},
	}

	llm := &fakeLLM{}
	p, err := NewBuilder(cfg).WithProvider(llm).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if p.cover == nil {
		t.Error("Expected a cover generator when an OpenAI key is configured")
	}
	assert.Equal(t, 5, p.config.ReportCap)
	assert.Equal(t, config.DefaultQuery, p.config.Query)

	assert.Equal(t, nil, p.Close())
	assert.Equal(t, true, llm.closed)

	p, err = NewBuilder(cfg).WithProvider(&fakeLLM{}).WithoutImage().Build(context.Background())
	assert.Equal(t, nil, err)
	if p.cover != nil {
		t.Error("Expected no cover generator when images are disabled")
	}
}

func TestBuilder_RequiresConfig(t *testing.T) {
	if _, err := NewBuilder(nil).Build(context.Background()); err == nil {
		t.Error("Expected error without configuration")
	}
}
