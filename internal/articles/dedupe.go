package articles

import (
	"riskdigest/internal/core"
)

// DefaultSimilarityThreshold is the ratio above which two article bodies are
// considered near-duplicates.
const DefaultSimilarityThreshold = 0.7

// Similarity returns the normalized indel ratio of a and b in [0, 1]:
// (len(a)+len(b)-dist) / (len(a)+len(b)), where dist counts the insertions and
// deletions turning a into b. 1.0 means identical; two empty strings are
// identical. Lengths are counted in runes.
func Similarity(a, b string) float64 {
	return indelRatio([]rune(a), []rune(b))
}

// Deduper removes near-duplicate articles, keeping the first one seen.
type Deduper struct {
	Threshold float64
	// Similarity replaces the indel ratio when set. Pairs are then always
	// scored, since the length bound only holds for the indel ratio.
	Similarity func(a, b string) float64
}

// NewDeduper creates a Deduper using the indel ratio.
func NewDeduper(threshold float64) *Deduper {
	return &Deduper{Threshold: threshold}
}

// Dedupe returns the articles whose body text is at most Threshold similar to
// every article accepted before them. Input order is preserved and earlier
// articles win; grouping is not transitive.
func (d *Deduper) Dedupe(articles []core.Article) []core.Article {
	unique := make([]core.Article, 0, len(articles))
	bodies := make([][]rune, 0, len(articles))

	for _, candidate := range articles {
		body := []rune(candidate.Text)
		if d.isDuplicate(candidate.Text, body, unique, bodies) {
			continue
		}
		unique = append(unique, candidate)
		bodies = append(bodies, body)
	}
	return unique
}

func (d *Deduper) isDuplicate(text string, body []rune, accepted []core.Article, bodies [][]rune) bool {
	for i, existing := range accepted {
		if d.Similarity != nil {
			if d.Similarity(text, existing.Text) > d.Threshold {
				return true
			}
			continue
		}

		if ratioUpperBound(len(body), len(bodies[i])) <= d.Threshold {
			continue
		}
		if indelRatio(body, bodies[i]) > d.Threshold {
			return true
		}
	}
	return false
}

// Dedupe is a convenience wrapper around Deduper with the indel ratio.
func Dedupe(articles []core.Article, threshold float64) []core.Article {
	return NewDeduper(threshold).Dedupe(articles)
}
