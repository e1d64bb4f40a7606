package flow

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ContentType is the MIME type of a packed document.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// A4 in twentieths of a point.
const (
	a4LongTwip  = 16838
	a4ShortTwip = 11906
	marginTwip  = 1000
)

// Pack serializes the flow tree as a WordprocessingML package.
func Pack(d Document) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		body []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{"word/styles.xml", []byte(stylesXML)},
		{"docProps/core.xml", corePropsXML(d.Title)},
		{"word/document.xml", documentXML(d)},
	}
	for _, p := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: p.name, Method: zip.Deflate, Modified: time.Unix(0, 0).UTC()})
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", p.name, err)
		}
		if _, err := w.Write(p.body); err != nil {
			return nil, fmt.Errorf("pack %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("pack close: %w", err)
	}
	return buf.Bytes(), nil
}

func documentXML(d Document) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	textWidth := a4ShortTwip - 2*marginTwip
	if d.Landscape {
		textWidth = a4LongTwip - 2*marginTwip
	}
	for _, blk := range d.Blocks {
		switch blk.Kind {
		case BlockParagraph:
			writeParagraph(&b, blk.Paragraph)
		case BlockTable:
			writeTable(&b, blk.Table, textWidth)
			// Adjacent tables merge in Word without a paragraph between them.
			b.WriteString(`<w:p/>`)
		case BlockPageBreak:
			b.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		}
	}

	w, h, orient := a4ShortTwip, a4LongTwip, "portrait"
	if d.Landscape {
		w, h, orient = a4LongTwip, a4ShortTwip, "landscape"
	}
	fmt.Fprintf(&b, `<w:sectPr><w:pgSz w:w="%d" w:h="%d" w:orient="%s"/><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`,
		w, h, orient, marginTwip, marginTwip, marginTwip, marginTwip)
	b.WriteString(`</w:body></w:document>`)
	return b.Bytes()
}

func writeParagraph(b *bytes.Buffer, p Paragraph) {
	b.WriteString(`<w:p>`)
	if p.Style != "" || p.Align != "" {
		b.WriteString(`<w:pPr>`)
		if p.Style != "" {
			fmt.Fprintf(b, `<w:pStyle w:val="%s"/>`, p.Style)
		}
		if p.Align == AlignCenter {
			b.WriteString(`<w:jc w:val="center"/>`)
		}
		b.WriteString(`</w:pPr>`)
	}
	for _, r := range p.Runs {
		writeRun(b, r)
	}
	b.WriteString(`</w:p>`)
}

func writeRun(b *bytes.Buffer, r Run) {
	b.WriteString(`<w:r>`)
	if r.Bold || r.Italic || r.SizePt > 0 {
		b.WriteString(`<w:rPr>`)
		if r.Bold {
			b.WriteString(`<w:b/>`)
		}
		if r.Italic {
			b.WriteString(`<w:i/>`)
		}
		if r.SizePt > 0 {
			// Half-points.
			fmt.Fprintf(b, `<w:sz w:val="%d"/>`, r.SizePt*2)
		}
		b.WriteString(`</w:rPr>`)
	}
	for i, line := range strings.Split(r.Text, "\n") {
		if i > 0 {
			b.WriteString(`<w:br/>`)
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(b, []byte(line))
		b.WriteString(`</w:t>`)
	}
	b.WriteString(`</w:r>`)
}

func writeTable(b *bytes.Buffer, t Table, textWidth int) {
	s := t.Style
	border := fmt.Sprintf(`w:val="single" w:sz="%d" w:space="0" w:color="%s"`, s.BorderSize, s.BorderColor)
	pad := strconv.Itoa(s.PaddingTwip)

	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/><w:tblBorders>`)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(b, `<w:%s %s/>`, side, border)
	}
	b.WriteString(`</w:tblBorders><w:tblLayout w:type="fixed"/><w:tblCellMar>`)
	for _, side := range []string{"top", "left", "bottom", "right"} {
		fmt.Fprintf(b, `<w:%s w:w="%s" w:type="dxa"/>`, side, pad)
	}
	b.WriteString(`</w:tblCellMar></w:tblPr>`)

	widths := columnWidths(t, textWidth)
	b.WriteString(`<w:tblGrid>`)
	for _, w := range widths {
		fmt.Fprintf(b, `<w:gridCol w:w="%d"/>`, w)
	}
	b.WriteString(`</w:tblGrid>`)

	for _, row := range t.Rows {
		b.WriteString(`<w:tr>`)
		if row.Class == RowHeader {
			b.WriteString(`<w:trPr><w:tblHeader/></w:trPr>`)
		}
		for i, c := range row.Cells {
			w := textWidth / max(1, len(row.Cells))
			if i < len(widths) && len(row.Cells) == len(widths) {
				w = widths[i]
			}
			fmt.Fprintf(b, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/><w:tcBorders>`, w)
			for _, side := range []string{"top", "left", "bottom", "right"} {
				fmt.Fprintf(b, `<w:%s %s/>`, side, border)
			}
			b.WriteString(`</w:tcBorders>`)
			if c.Header {
				fmt.Fprintf(b, `<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, s.HeaderFill)
			}
			b.WriteString(`</w:tcPr>`)
			if len(c.Paragraphs) == 0 {
				b.WriteString(`<w:p/>`)
			}
			for _, p := range c.Paragraphs {
				writeParagraph(b, p)
			}
			b.WriteString(`</w:tc>`)
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
}

// columnWidths takes the widths from the first data row that declares them, falling
// back to an even split over the widest row.
func columnWidths(t Table, textWidth int) []int {
	cols := 0
	for _, r := range t.Rows {
		cols = max(cols, len(r.Cells))
	}
	if cols == 0 {
		return nil
	}
	for _, r := range t.Rows {
		if len(r.Cells) != cols {
			continue
		}
		total := 0
		for _, c := range r.Cells {
			total += c.WidthPct
		}
		if total != 100 {
			continue
		}
		out := make([]int, cols)
		for i, c := range r.Cells {
			out[i] = textWidth * c.WidthPct / 100
		}
		return out
	}
	out := make([]int, cols)
	for i := range out {
		out[i] = textWidth / cols
	}
	return out
}

func corePropsXML(title string) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>`)
	_ = xml.EscapeText(&b, []byte(title))
	b.WriteString(`</dc:title></cp:coreProperties>`)
	return b.Bytes()
}

const contentTypesXML = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`</Types>`

const rootRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`

const documentRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`</Relationships>`

const stylesXML = xml.Header + `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial" w:cs="Arial"/><w:sz w:val="20"/><w:lang w:val="ca-ES"/></w:rPr></w:rPrDefault>` +
	`<w:pPrDefault><w:pPr><w:spacing w:after="80"/></w:pPr></w:pPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:after="240"/><w:jc w:val="center"/></w:pPr><w:rPr><w:b/><w:sz w:val="48"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:pPr><w:keepNext/><w:shd w:val="clear" w:color="auto" w:fill="1F2937"/><w:spacing w:before="200" w:after="100"/></w:pPr><w:rPr><w:b/><w:caps/><w:color w:val="FFFFFF"/><w:sz w:val="24"/></w:rPr></w:style>` +
	`</w:styles>`
