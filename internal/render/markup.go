package render

import (
	"strings"

	"riskdigest/internal/docx"
	"riskdigest/internal/logger"

	"github.com/PuerkitoBio/goquery"
)

// Block is a single document paragraph derived from report markup.
type Block struct {
	Style string
	Text  string
}

// TranslateReportMarkup converts the report markup produced by the model into
// document blocks: every <b> element becomes a Heading2 block and every <li>
// inside a <ul> becomes a ListBullet block, in document order. Everything else
// is ignored, and elements with no visible text are skipped.
func TranslateReportMarkup(markup string) []Block {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		logger.Error("Failed to parse report markup", err)
		return nil
	}

	var blocks []Block
	doc.Find("b, ul").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "b":
			if text := strings.TrimSpace(s.Text()); text != "" {
				blocks = append(blocks, Block{Style: docx.StyleHeading2, Text: text})
			}
		case "ul":
			s.Find("li").Each(func(_ int, item *goquery.Selection) {
				if text := strings.TrimSpace(item.Text()); text != "" {
					blocks = append(blocks, Block{Style: docx.StyleListBullet, Text: text})
				}
			})
		}
	})
	return blocks
}
