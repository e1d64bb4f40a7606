package flow

import "github.com/yungbote/situacio-backend/internal/modules/situacio/derive"

// Row classes used by Build; tests and the packer rely on them.
const (
	RowHeader      = "header"
	RowField       = "field"
	RowCompetency  = "competency"
	RowKnowledge   = "knowledge"
	RowListPair    = "list-pair"
	RowPhase       = "phase"
	RowSupport     = "support"
	RowPlaceholder = "placeholder"
)

// Build projects the derived view into a flow document. Page breaks sit at the same
// four seams as the paginated view's five pages.
func Build(v derive.View) Document {
	l := derive.Labels
	d := Document{Title: l.DocumentTitle + " - " + v.Title, Landscape: true}

	// Cover.
	d.add(paragraphBlock(Paragraph{Style: "Title", Align: AlignCenter, Runs: []Run{{Text: l.DocumentTitle, Bold: true, SizePt: 24}}}))
	d.heading(l.Identification)
	d.add(tableBlock(
		fieldRow(l.Title, v.Title),
		fieldRow(l.Level, v.Level),
		fieldRow(l.SubjectArea, v.SubjectArea),
	))
	d.add(paragraphBlock(Paragraph{Align: AlignCenter, Runs: []Run{{Text: l.CoverFootnote, Italic: true, SizePt: 9}}}))
	d.pageBreak()

	// Description, competencies, transversal competencies.
	d.heading(l.Description)
	d.box(v.ContextAndChallenge)
	d.heading(l.Competencies)
	rows := []Row{headerRow(l.Code, l.CompetencyText, l.SubjectArea)}
	for _, c := range v.Competencies {
		rows = append(rows, Row{Class: RowCompetency, Cells: []Cell{
			{WidthPct: 10, Paragraphs: []Paragraph{{Align: AlignCenter, Runs: []Run{{Text: c.Code, Bold: true}}}}},
			textCell(c.Text, 70),
			textCell(c.SubjectArea, 20),
		}})
	}
	d.add(tableBlock(rows...))
	d.heading(l.Transversal)
	d.box(v.TransversalCompetencies)
	d.pageBreak()

	// Objectives and criteria side by side, then knowledge items.
	d.add(tableBlock(headerRow(l.Objectives, l.Criteria), listPairRow(v.Objectives, v.Criteria)))
	d.heading(l.Knowledge)
	rows = []Row{headerRow(l.KnowledgeContent, l.SubjectArea)}
	for _, k := range v.Knowledge {
		rows = append(rows, Row{Class: RowKnowledge, Cells: []Cell{textCell(k.Text, 75), textCell(k.SubjectArea, 25)}})
	}
	d.add(tableBlock(rows...))
	d.pageBreak()

	// Methodology and activities.
	d.heading(l.Methodology)
	d.box(v.Methodology)
	d.heading(l.Activities)
	rows = []Row{headerRow(l.Phase, l.ActivityText, l.TimeAllocation)}
	for _, p := range v.Phases {
		rows = append(rows, Row{Class: RowPhase, Cells: []Cell{
			{WidthPct: 18, Paragraphs: []Paragraph{{Runs: []Run{{Text: p.Name, Bold: true}}}}},
			textCell(p.Description, 64),
			textCell(p.TimeAllocation, 18),
		}})
	}
	d.add(tableBlock(rows...))
	d.pageBreak()

	// Support measures.
	d.heading(l.Vectors)
	d.box(v.VectorsDescription)
	d.heading(l.UniversalSupports)
	d.box(v.UniversalSupports)
	d.heading(l.AdditionalSupports)
	rows = []Row{headerRow(l.Student, l.Measure)}
	for _, s := range v.AdditionalSupports {
		if s.Placeholder {
			rows = append(rows, Row{Class: RowPlaceholder, Cells: []Cell{placeholderCell(s.Student), placeholderCell(s.Measure)}})
			continue
		}
		rows = append(rows, Row{Class: RowSupport, Cells: []Cell{textCell(s.Student, 30), textCell(s.Measure, 70)}})
	}
	d.add(tableBlock(rows...))

	return d
}

func (d *Document) add(b Block) { d.Blocks = append(d.Blocks, b) }

func (d *Document) pageBreak() { d.add(Block{Kind: BlockPageBreak}) }

func (d *Document) heading(text string) {
	d.add(paragraphBlock(Paragraph{Style: "Heading1", Runs: []Run{{Text: text, Bold: true}}}))
}

// box renders a long-form text field as a single bordered cell.
func (d *Document) box(text string) {
	d.add(tableBlock(Row{Class: RowField, Cells: []Cell{textCell(text, 100)}}))
}

func paragraphBlock(p Paragraph) Block { return Block{Kind: BlockParagraph, Paragraph: p} }

func tableBlock(rows ...Row) Block {
	return Block{Kind: BlockTable, Table: Table{Rows: rows, Style: DefaultCellStyle}}
}

func headerRow(labels ...string) Row {
	cells := make([]Cell, 0, len(labels))
	for _, l := range labels {
		cells = append(cells, Cell{Header: true, Paragraphs: []Paragraph{{Align: AlignCenter, Runs: []Run{{Text: l, Bold: true}}}}})
	}
	return Row{Class: RowHeader, Cells: cells}
}

func fieldRow(label, value string) Row {
	return Row{Class: RowField, Cells: []Cell{
		{Header: true, WidthPct: 28, Paragraphs: []Paragraph{{Runs: []Run{{Text: label, Bold: true}}}}},
		textCell(value, 72),
	}}
}

func textCell(text string, pct int) Cell {
	return Cell{WidthPct: pct, Paragraphs: []Paragraph{{Runs: []Run{{Text: text}}}}}
}

func placeholderCell(text string) Cell {
	return Cell{Paragraphs: []Paragraph{{Align: AlignCenter, Runs: []Run{{Text: text, Italic: true}}}}}
}

// listPairRow lays two numbered lists out as two borderless-looking columns of paragraphs.
func listPairRow(left, right []string) Row {
	return Row{Class: RowListPair, Cells: []Cell{listCell(left), listCell(right)}}
}

func listCell(items []string) Cell {
	c := Cell{WidthPct: 50}
	for _, it := range items {
		c.Paragraphs = append(c.Paragraphs, Paragraph{Runs: []Run{{Text: it}}})
	}
	if len(c.Paragraphs) == 0 {
		c.Paragraphs = []Paragraph{{}}
	}
	return c
}
