package articles

import (
	"strings"
)

const (
	// maxSuffixWords is the longest trailing "- Source Name" segment that is stripped.
	maxSuffixWords = 3
	// minTitleWords is the word count a title must exceed before a dash suffix is stripped.
	minTitleWords = 10
)

// NormalizeTitle strips publisher boilerplate from a scraped headline.
//
// Everything from the first pipe onwards is dropped. Otherwise, when the text
// after the last hyphen has at most three words and the whole title has more
// than ten, the hyphen and its suffix are dropped. Any other title is returned
// unchanged. Surrounding whitespace is kept as-is.
func NormalizeTitle(title string) string {
	if before, _, found := strings.Cut(title, "|"); found {
		return before
	}

	lastDash := strings.LastIndex(title, "-")
	if lastDash != -1 {
		suffixWords := strings.Fields(title[lastDash+1:])
		if len(suffixWords) <= maxSuffixWords && len(strings.Fields(title)) > minTitleWords {
			return title[:lastDash]
		}
	}

	return title
}

// CapText truncates s to at most maxLength characters. The cut is a hard one
// and may fall in the middle of a word.
func CapText(s string, maxLength int) string {
	if maxLength < 0 {
		return s
	}
	if len(s) <= maxLength {
		// byte length bounds rune count, nothing to cut
		return s
	}

	count := 0
	for i := range s {
		if count == maxLength {
			return s[:i]
		}
		count++
	}
	return s
}

// ComposeText builds an article body the way it is presented to the model:
// the normalized title, a blank line, then the raw body, capped at maxLength.
func ComposeText(title, body string, maxLength int) string {
	return CapText(NormalizeTitle(title)+"\n\n"+body, maxLength)
}
