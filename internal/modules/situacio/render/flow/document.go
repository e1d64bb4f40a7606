// Package flow builds the word-processor rendition: an abstract flow tree of titled
// blocks and tables, split into five parts by explicit page breaks, and packs it as .docx.
package flow

// Align is a paragraph alignment.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
)

// Run is a span of uniformly styled text.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	SizePt int // 0 keeps the style default
}

// Paragraph is a line of runs.
type Paragraph struct {
	Runs  []Run
	Align Align
	Style string // "Title", "Heading1" or "" for body text
}

// Text joins the runs.
func (p Paragraph) Text() string {
	out := ""
	for _, r := range p.Runs {
		out += r.Text
	}
	return out
}

// CellStyle is applied uniformly to every cell of every table.
type CellStyle struct {
	BorderSize  int    // eighths of a point
	BorderColor string // hex RGB
	PaddingTwip int
	HeaderFill  string // hex RGB
}

// DefaultCellStyle is the only cell style the renderer emits.
var DefaultCellStyle = CellStyle{
	BorderSize:  4,
	BorderColor: "9CA3AF",
	PaddingTwip: 100,
	HeaderFill:  "F3F4F6",
}

type Cell struct {
	Paragraphs []Paragraph
	Header     bool
	WidthPct   int // share of the table width, 0 lets the packer split evenly
}

type Row struct {
	Cells []Cell
	Class string // semantic row kind, e.g. "competency", "support", "placeholder"
}

type Table struct {
	Rows  []Row
	Style CellStyle
}

// BlockKind discriminates Block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockTable
	BlockPageBreak
)

// Block is one item of the flow.
type Block struct {
	Kind      BlockKind
	Paragraph Paragraph
	Table     Table
}

// Document is the root of the flow tree.
type Document struct {
	Title     string
	Landscape bool
	Blocks    []Block
}

// PageBreaks counts the page-break markers.
func (d Document) PageBreaks() int {
	n := 0
	for _, b := range d.Blocks {
		if b.Kind == BlockPageBreak {
			n++
		}
	}
	return n
}

// Rows returns every table row with the given class, in document order.
func (d Document) Rows(class string) []Row {
	var out []Row
	for _, b := range d.Blocks {
		if b.Kind != BlockTable {
			continue
		}
		for _, r := range b.Table.Rows {
			if r.Class == class {
				out = append(out, r)
			}
		}
	}
	return out
}
