package report

import (
	"html"
)

// htmlFormatter renders a table element. Its layout emits the enclosing
// table tags and caption around the body stages.
type htmlFormatter struct {
	Base
	cols   []string
	recs   []Record
	aligns []Alignment
}

func newHTMLFormatter() Formatter { return &htmlFormatter{} }

func (f *htmlFormatter) Hooks(h *Hooks) {
	h.Prepare(StageTable, f.prepareTable)
	h.Build(StageTableHeader, f.buildTableHeader)
	h.Build(StageTableBody, f.buildTableBody)
}

func (f *htmlFormatter) ApplyTemplate(_ *Template, layer *Options) {
	applyTableTemplate(layer)
}

func (f *htmlFormatter) prepareTable() error {
	cols, recs, err := tableOf(&f.Base)
	if err != nil {
		return err
	}
	f.cols, f.recs = cols, recs
	f.aligns = parseAlignments(f.Options().Strings("alignment"))
	return nil
}

func (f *htmlFormatter) Layout(body func() error) error {
	f.Println("<table>")
	if title := f.Options().String("title"); title != "" {
		f.Printf("  <caption>%s</caption>\n", html.EscapeString(title))
	}
	if err := body(); err != nil {
		return err
	}
	f.Println("</table>")
	return nil
}

func (f *htmlFormatter) buildTableHeader() error {
	if !showHeaders(&f.Base, f.cols) {
		return nil
	}
	f.Println("  <thead>")
	f.Println("    <tr>")
	for i, col := range f.cols {
		f.Printf("      <th%s>%s</th>\n", alignStyle(f.aligns, i), html.EscapeString(col))
	}
	f.Println("    </tr>")
	f.Println("  </thead>")
	return nil
}

func (f *htmlFormatter) buildTableBody() error {
	f.Println("  <tbody>")
	for _, r := range f.recs {
		f.Println("    <tr>")
		for i, cell := range r.Strings() {
			f.Printf("      <td%s>%s</td>\n", alignStyle(f.aligns, i), html.EscapeString(cell))
		}
		f.Println("    </tr>")
	}
	f.Println("  </tbody>")
	return nil
}

func alignStyle(aligns []Alignment, col int) string {
	if col >= len(aligns) {
		return ""
	}
	switch aligns[col] {
	case AlignRight:
		return ` style="text-align: right"`
	case AlignCenter:
		return ` style="text-align: center"`
	default:
		return ""
	}
}
