package report

import "strings"

// markdownFormatter renders a GitHub-flavored Markdown table. Markdown
// tables need a header row, so column names are always written.
type markdownFormatter struct {
	Base
	cols   []string
	rows   [][]string
	widths []int
	aligns []Alignment
}

func newMarkdownFormatter() Formatter { return &markdownFormatter{} }

func (f *markdownFormatter) Hooks(h *Hooks) {
	h.Prepare(StageTable, f.prepareTable)
	h.Build(StageTableHeader, f.buildTableHeader)
	h.Build(StageTableBody, f.buildTableBody)
}

func (f *markdownFormatter) ApplyTemplate(_ *Template, layer *Options) {
	applyTableTemplate(layer)
}

func (f *markdownFormatter) prepareTable() error {
	cols, recs, err := tableOf(&f.Base)
	if err != nil {
		return err
	}
	f.cols = cols
	f.rows = make([][]string, len(recs))
	for i, r := range recs {
		row := r.Strings()
		for j, cell := range row {
			row[j] = strings.ReplaceAll(cell, "|", `\|`)
		}
		f.rows[i] = row
	}
	numCols := colCount(cols, f.rows)
	// Minimum 3 so alignment markers fit.
	f.widths = computeWidths(numCols, cols, f.rows)
	for i := range f.widths {
		if f.widths[i] < 3 {
			f.widths[i] = 3
		}
	}
	f.aligns = extendAligns(parseAlignments(f.Options().Strings("alignment")), numCols)
	if title := f.Options().String("title"); title != "" {
		f.Printf("**%s**\n\n", title)
	}
	return nil
}

func (f *markdownFormatter) buildTableHeader() error {
	f.writeRow(f.cols)
	sep := make([]string, len(f.widths))
	for i, width := range f.widths {
		switch f.aligns[i] {
		case AlignRight:
			sep[i] = strings.Repeat("-", width-1) + ":"
		case AlignCenter:
			sep[i] = ":" + strings.Repeat("-", width-2) + ":"
		default:
			sep[i] = strings.Repeat("-", width)
		}
	}
	f.Printf("| %s |\n", strings.Join(sep, " | "))
	return nil
}

func (f *markdownFormatter) buildTableBody() error {
	for _, row := range f.rows {
		f.writeRow(row)
	}
	return nil
}

func (f *markdownFormatter) writeRow(cells []string) {
	padded := make([]string, len(f.widths))
	for i, width := range f.widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		padded[i] = alignCell(cell, width, f.aligns[i])
	}
	f.Printf("| %s |\n", strings.Join(padded, " | "))
}
