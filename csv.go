package report

import (
	"encoding/csv"
	"unicode/utf8"
)

// csvFormatter serves CSV and TSV.
type csvFormatter struct {
	Base
	cols []string
	recs []Record
}

func newCSVFormatter() Formatter { return &csvFormatter{} }

func (f *csvFormatter) Hooks(h *Hooks) {
	h.Prepare(StageTable, f.prepareTable)
	h.Build(StageTableHeader, f.buildTableHeader)
	h.Build(StageTableBody, f.buildTableBody)
}

func (f *csvFormatter) ApplyTemplate(_ *Template, layer *Options) {
	applyTableTemplate(layer)
}

func (f *csvFormatter) prepareTable() error {
	cols, recs, err := tableOf(&f.Base)
	if err != nil {
		return err
	}
	f.cols, f.recs = cols, recs
	return nil
}

func (f *csvFormatter) writer() *csv.Writer {
	cw := csv.NewWriter(f.Output())
	f.When(TSV, func() { cw.Comma = '\t' })
	if sep := f.Options().String("col_sep"); sep != "" {
		if r, _ := utf8.DecodeRuneInString(sep); r != utf8.RuneError {
			cw.Comma = r
		}
	}
	return cw
}

func (f *csvFormatter) buildTableHeader() error {
	if !showHeaders(&f.Base, f.cols) {
		return nil
	}
	return writeCSVRow(f.writer(), f.cols)
}

func (f *csvFormatter) buildTableBody() error {
	cw := f.writer()
	for _, r := range f.recs {
		if err := cw.Write(r.Strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeCSVRow(cw *csv.Writer, row []string) error {
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
