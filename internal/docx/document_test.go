package docx

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChAI9jU8="

func readParts(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Output is not a zip archive: %v", err)
	}

	parts := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open %s: %v", f.Name, err)
		}
		content, _ := io.ReadAll(rc)
		_ = rc.Close()
		parts[f.Name] = string(content)
	}
	return parts
}

func assertWellFormed(t *testing.T, name, content string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(content))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("%s is not well-formed XML: %v", name, err)
		}
	}
}

func TestWrite_PackageParts(t *testing.T) {
	doc := New()
	doc.AddParagraph("Hello", StyleNormal)

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	parts := readParts(t, buf.Bytes())

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"word/document.xml",
		"word/styles.xml",
		"word/numbering.xml",
		"word/_rels/document.xml.rels",
	} {
		content, ok := parts[name]
		if !ok {
			t.Errorf("Missing part %s", name)
			continue
		}
		assertWellFormed(t, name, content)
	}
}

func TestWrite_ParagraphsAndRuns(t *testing.T) {
	doc := New()
	title := doc.AddParagraph("", StyleTitle)
	title.Alignment = AlignCenter
	run := title.AddRun("Risks & Rewards <weekly>")
	run.Font = "NeueHaasUnica-Light"
	run.SizePt = 24
	doc.AddParagraph("line one\nline two", "")

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	body := readParts(t, buf.Bytes())["word/document.xml"]

	for _, want := range []string{
		`<w:pStyle w:val="Title"/>`,
		`<w:jc w:val="center"/>`,
		`<w:rFonts w:ascii="NeueHaasUnica-Light"`,
		`<w:sz w:val="48"/>`,
		`Risks &amp; Rewards &lt;weekly&gt;`,
		`line one</w:t><w:br/><w:t xml:space="preserve">line two`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("document.xml missing %q", want)
		}
	}
}

func TestAddHyperlink(t *testing.T) {
	doc := New()
	p := doc.AddParagraph("", StyleHeading1)
	run := doc.AddHyperlink(p, "https://example.com/a?x=1&y=2", "Lender collapses")
	doc.AddHyperlink(doc.AddParagraph("", StyleHeading1), "https://example.com/b", "Oil slumps")

	assert.Equal(t, StyleHyperlink, run.Style)
	assert.Equal(t, "Lender collapses", p.Text())
	assert.Equal(t, 1, len(p.Hyperlinks()))
	assert.Equal(t, "https://example.com/a?x=1&y=2", p.Hyperlinks()[0].URL)

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	parts := readParts(t, buf.Bytes())

	assert.Equal(t, 2, strings.Count(parts["word/document.xml"], "<w:hyperlink "))
	rels := parts["word/_rels/document.xml.rels"]
	if !strings.Contains(rels, `Id="rId3" Type="`+relTypeHyperlink+`" Target="https://example.com/a?x=1&amp;y=2" TargetMode="External"`) {
		t.Errorf("Unexpected relationships: %s", rels)
	}
	if !strings.Contains(parts["word/document.xml"], `<w:hyperlink r:id="rId4"`) {
		t.Error("Second hyperlink should use the next relationship ID")
	}
	assertWellFormed(t, "rels", rels)
}

func TestAddPicture(t *testing.T) {
	png, _ := base64.StdEncoding.DecodeString(onePixelPNG)

	doc := New()
	p, err := doc.AddPicture(png, 6)
	if err != nil {
		t.Fatalf("AddPicture failed: %v", err)
	}
	if !p.HasPicture() {
		t.Error("Expected paragraph to hold a picture")
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	parts := readParts(t, buf.Bytes())

	assert.Equal(t, string(png), parts["word/media/image1.png"])
	if !strings.Contains(parts["word/document.xml"], `<wp:extent cx="5486400" cy="5486400"/>`) {
		t.Error("Expected a six inch square picture")
	}
	if !strings.Contains(parts["word/document.xml"], `<a:blip r:embed="rId3"/>`) {
		t.Error("Expected picture to reference its relationship")
	}
	if !strings.Contains(parts["[Content_Types].xml"], `<Default Extension="png" ContentType="image/png"/>`) {
		t.Error("Expected png content type")
	}
	assertWellFormed(t, "document", parts["word/document.xml"])
}

func TestAddPicture_RejectsGarbage(t *testing.T) {
	doc := New()
	if _, err := doc.AddPicture([]byte("not an image"), 6); err == nil {
		t.Error("Expected error for invalid image data")
	}
	assert.Equal(t, 0, len(doc.Paragraphs()))
}

func TestRuns_IncludesHyperlinkRuns(t *testing.T) {
	doc := New()
	doc.AddParagraph("plain", "")
	doc.AddHyperlink(doc.AddParagraph("", StyleHeading1), "https://example.com", "link")

	assert.Equal(t, 2, len(doc.Runs()))
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "digest.docx")

	doc := New()
	doc.AddParagraph("Saved", "")
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !strings.Contains(readParts(t, data)["word/document.xml"], "Saved") {
		t.Error("Saved document should contain the paragraph text")
	}
}
