package core

import "time"

// Article represents a news post returned by the search API after title
// normalization and body capping.
type Article struct {
	ID        string `json:"id" yaml:"id"`               // Search API post uuid, or a generated one
	Title     string `json:"title" yaml:"title"`         // Raw title as published
	Text      string `json:"text" yaml:"-"`              // Normalized title + "\n\n" + body, capped
	Link      string `json:"link" yaml:"link"`           // Article URL
	Published string `json:"published" yaml:"published"` // Publication timestamp as returned by the API
	Site      string `json:"site" yaml:"site,omitempty"` // Publisher site, informational only
}

// Report is a structured financial risk report produced for a single article.
type Report struct {
	Text      string `json:"text" yaml:"text"`           // Structured report markup from the model
	Link      string `json:"link" yaml:"link"`           // Source article URL
	Title     string `json:"title" yaml:"title"`         // Source article title
	Published string `json:"published" yaml:"published"` // Source article publication timestamp
}

// Digest is the assembled output of one run.
type Digest struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Introduction string    `json:"introduction" yaml:"introduction"`
	ImageURL     string    `json:"image_url" yaml:"image_url,omitempty"` // Empty means no cover image
	Reports      []Report  `json:"reports" yaml:"reports"`
	GeneratedAt  time.Time `json:"generated_at" yaml:"generated_at"`
}

// HasImage reports whether the digest carries a cover image.
func (d *Digest) HasImage() bool {
	return d.ImageURL != ""
}

// ReportTitles returns the titles of the digest reports in order.
func ReportTitles(reports []Report) []string {
	titles := make([]string, 0, len(reports))
	for _, r := range reports {
		titles = append(titles, r.Title)
	}
	return titles
}
