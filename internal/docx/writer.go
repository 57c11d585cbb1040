package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeNumbering      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relTypeHyperlink      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

type part struct {
	name    string
	content []byte
}

// Save writes the document to path, replacing any existing file.
func (d *Document) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Write writes the document as a .docx package to w.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	parts := []part{
		{"[Content_Types].xml", []byte(d.contentTypesXML())},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/document.xml", []byte(d.documentXML())},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/numbering.xml", []byte(numberingXML)},
		{"word/_rels/document.xml.rels", []byte(d.documentRelsXML())},
	}
	for _, m := range d.media {
		parts = append(parts, part{"word/media/" + m.Name, m.Data})
	}

	for _, p := range parts {
		fw, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", p.name, err)
		}
		if _, err := fw.Write(p.content); err != nil {
			return fmt.Errorf("failed to write %s: %w", p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize document: %w", err)
	}
	return nil
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func (d *Document) contentTypesXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)

	seen := map[string]bool{}
	for _, m := range d.media {
		if seen[m.Extension] {
			continue
		}
		seen[m.Extension] = true
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="%s"/>`, m.Extension, m.ContentType)
	}

	b.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	b.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	b.WriteString(`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>`)
	b.WriteString(`</Types>`)
	return b.String()
}

var packageRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + relTypeOfficeDocument + `" Target="word/document.xml"/>` +
	`</Relationships>`

func (d *Document) documentRelsXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	fmt.Fprintf(&b, `<Relationship Id="rId1" Type="%s" Target="styles.xml"/>`, relTypeStyles)
	fmt.Fprintf(&b, `<Relationship Id="rId2" Type="%s" Target="numbering.xml"/>`, relTypeNumbering)
	for _, rel := range d.relationships {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"`, rel.ID, rel.Type, escape(rel.Target))
		if rel.External {
			b.WriteString(` TargetMode="External"`)
		}
		b.WriteString(`/>`)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func (d *Document) documentXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:document` +
		` xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
		` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"` +
		` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
		` xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`)
	b.WriteString(`<w:body>`)

	for _, p := range d.paragraphs {
		writeParagraph(&b, p)
	}

	// US Letter with one inch margins.
	b.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>` +
		`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/>` +
		`</w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func writeParagraph(b *strings.Builder, p *Paragraph) {
	b.WriteString(`<w:p>`)
	if p.Style != "" || p.Alignment != AlignDefault {
		b.WriteString(`<w:pPr>`)
		if p.Style != "" {
			fmt.Fprintf(b, `<w:pStyle w:val="%s"/>`, p.Style)
		}
		if p.Alignment != AlignDefault {
			fmt.Fprintf(b, `<w:jc w:val="%s"/>`, p.Alignment)
		}
		b.WriteString(`</w:pPr>`)
	}

	for _, c := range p.content {
		switch v := c.(type) {
		case *Run:
			writeRun(b, v)
		case *Hyperlink:
			fmt.Fprintf(b, `<w:hyperlink r:id="%s" w:history="1">`, v.relID)
			for _, r := range v.runs {
				writeRun(b, r)
			}
			b.WriteString(`</w:hyperlink>`)
		}
	}
	b.WriteString(`</w:p>`)
}

func writeRun(b *strings.Builder, r *Run) {
	b.WriteString(`<w:r>`)
	writeRunProperties(b, r)

	if r.picture != nil {
		writePicture(b, r.picture)
		b.WriteString(`</w:r>`)
		return
	}

	// Newlines become line breaks inside the same run.
	for i, line := range strings.Split(r.Text, "\n") {
		if i > 0 {
			b.WriteString(`<w:br/>`)
		}
		if line == "" {
			continue
		}
		fmt.Fprintf(b, `<w:t xml:space="preserve">%s</w:t>`, escape(line))
	}
	b.WriteString(`</w:r>`)
}

func writeRunProperties(b *strings.Builder, r *Run) {
	if r.Style == "" && r.Font == "" && r.SizePt <= 0 && !r.Bold {
		return
	}
	b.WriteString(`<w:rPr>`)
	if r.Style != "" {
		fmt.Fprintf(b, `<w:rStyle w:val="%s"/>`, r.Style)
	}
	if r.Font != "" {
		font := escape(r.Font)
		fmt.Fprintf(b, `<w:rFonts w:ascii="%s" w:hAnsi="%s" w:eastAsia="%s" w:cs="%s"/>`, font, font, font, font)
	}
	if r.Bold {
		b.WriteString(`<w:b/>`)
	}
	if r.SizePt > 0 {
		// Sizes are stored in half-points.
		halfPoints := strconv.Itoa(int(r.SizePt * 2))
		fmt.Fprintf(b, `<w:sz w:val="%s"/><w:szCs w:val="%s"/>`, halfPoints, halfPoints)
	}
	b.WriteString(`</w:rPr>`)
}

func writePicture(b *strings.Builder, pic *picture) {
	fmt.Fprintf(b, `<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/>`+
		`<wp:docPr id="%d" name="Picture %d"/>`+
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr></pic:pic>`+
		`</a:graphicData></a:graphic></wp:inline></w:drawing>`,
		pic.width, pic.height,
		pic.id, pic.id,
		pic.id, pic.name,
		pic.relID,
		pic.width, pic.height,
	)
}
