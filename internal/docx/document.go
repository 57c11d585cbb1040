// Package docx writes a small subset of WordprocessingML: styled paragraphs,
// runs with font overrides, external hyperlinks, bullet lists and inline
// pictures. It is enough to produce documents that Word and LibreOffice open
// without repair.
package docx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoding for picture sizing
	_ "image/jpeg" // register JPEG decoding for picture sizing
	_ "image/png"  // register PNG decoding for picture sizing
	"strings"
)

// Built-in paragraph and character style IDs.
const (
	StyleNormal     = "Normal"
	StyleTitle      = "Title"
	StyleHeading1   = "Heading1"
	StyleHeading2   = "Heading2"
	StyleListBullet = "ListBullet"
	StyleHyperlink  = "Hyperlink"
)

// EMUPerInch converts inches to English Metric Units used by DrawingML.
const EMUPerInch = 914400

// Alignment is a paragraph justification value.
type Alignment string

const (
	AlignDefault Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
)

// Document is an in-memory Word document.
type Document struct {
	paragraphs    []*Paragraph
	relationships []relationship
	media         []media
	pictureCount  int
}

type relationship struct {
	ID       string
	Type     string
	Target   string
	External bool
}

type media struct {
	Name        string
	Extension   string
	ContentType string
	Data        []byte
}

// Paragraph is a block of runs sharing one paragraph style.
type Paragraph struct {
	Style     string
	Alignment Alignment
	content   []inline
}

// Run is a stretch of text with common character formatting. A run holding a
// picture has no text.
type Run struct {
	Text   string
	Font   string
	SizePt float64
	Bold   bool
	Style  string

	picture *picture
}

// Hyperlink is a set of runs pointing at an external target.
type Hyperlink struct {
	URL   string
	relID string
	runs  []*Run
}

type picture struct {
	relID  string
	id     int
	name   string
	width  int64
	height int64
}

type inline interface {
	allRuns() []*Run
}

func (r *Run) allRuns() []*Run       { return []*Run{r} }
func (h *Hyperlink) allRuns() []*Run { return h.runs }

// New creates an empty document.
func New() *Document {
	return &Document{}
}

// AddParagraph appends a paragraph with the given style. Empty text adds a
// paragraph without runs.
func (d *Document) AddParagraph(text, style string) *Paragraph {
	p := &Paragraph{Style: style}
	if text != "" {
		p.AddRun(text)
	}
	d.paragraphs = append(d.paragraphs, p)
	return p
}

// AddRun appends a plain text run.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{Text: text}
	p.content = append(p.content, r)
	return r
}

// AddHyperlink appends an external hyperlink to p and returns its text run.
func (d *Document) AddHyperlink(p *Paragraph, url, text string) *Run {
	h := &Hyperlink{
		URL:   url,
		relID: d.addRelationship(relTypeHyperlink, url, true),
	}
	r := &Run{Text: text, Style: StyleHyperlink}
	h.runs = append(h.runs, r)
	p.content = append(p.content, h)
	return r
}

// AddPicture appends a paragraph holding the image scaled to widthInches,
// keeping its aspect ratio. PNG, JPEG and GIF are supported.
func (d *Document) AddPicture(data []byte, widthInches float64) (*Paragraph, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("image has no size")
	}
	if widthInches <= 0 {
		return nil, fmt.Errorf("invalid picture width %.2f", widthInches)
	}

	ext, contentType := format, "image/"+format

	d.pictureCount++
	name := fmt.Sprintf("image%d.%s", d.pictureCount, ext)
	d.media = append(d.media, media{Name: name, Extension: ext, ContentType: contentType, Data: data})

	width := int64(widthInches * EMUPerInch)
	height := width * int64(cfg.Height) / int64(cfg.Width)

	p := &Paragraph{}
	p.content = append(p.content, &Run{picture: &picture{
		relID:  d.addRelationship(relTypeImage, "media/"+name, false),
		id:     d.pictureCount,
		name:   name,
		width:  width,
		height: height,
	}})
	d.paragraphs = append(d.paragraphs, p)
	return p, nil
}

// Paragraphs returns the body paragraphs in document order.
func (d *Document) Paragraphs() []*Paragraph {
	return d.paragraphs
}

// Runs returns every run in the document, including hyperlink runs.
func (d *Document) Runs() []*Run {
	var runs []*Run
	for _, p := range d.paragraphs {
		runs = append(runs, p.Runs()...)
	}
	return runs
}

// Runs returns the paragraph runs, including hyperlink runs.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, c := range p.content {
		runs = append(runs, c.allRuns()...)
	}
	return runs
}

// Hyperlinks returns the hyperlinks of the paragraph.
func (p *Paragraph) Hyperlinks() []*Hyperlink {
	var links []*Hyperlink
	for _, c := range p.content {
		if h, ok := c.(*Hyperlink); ok {
			links = append(links, h)
		}
	}
	return links
}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// HasPicture reports whether the paragraph holds an inline picture.
func (p *Paragraph) HasPicture() bool {
	for _, r := range p.Runs() {
		if r.picture != nil {
			return true
		}
	}
	return false
}

// Text returns the hyperlink's visible text.
func (h *Hyperlink) Text() string {
	var sb strings.Builder
	for _, r := range h.runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

func (d *Document) addRelationship(relType, target string, external bool) string {
	// rId1 and rId2 are reserved for styles and numbering.
	id := fmt.Sprintf("rId%d", len(d.relationships)+3)
	d.relationships = append(d.relationships, relationship{
		ID:       id,
		Type:     relType,
		Target:   target,
		External: external,
	})
	return id
}
