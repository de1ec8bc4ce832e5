package report

import (
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// goTemplateFormatter executes the "go_template" option once per record.
// The record is passed as a map keyed by column name; sprig functions are
// available. The optional "go_template_header" runs once with the column
// names.
type goTemplateFormatter struct {
	Base
	tmpl *template.Template
}

func newGoTemplateFormatter() Formatter { return &goTemplateFormatter{} }

func (f *goTemplateFormatter) Hooks(h *Hooks) {
	h.Prepare(StageTable, f.prepareTable)
	h.Build(StageTableHeader, f.buildTableHeader)
	h.Build(StageTableBody, f.buildTableBody)
}

func (f *goTemplateFormatter) prepareTable() error {
	src := f.Options().String("go_template")
	if src == "" {
		return fmt.Errorf("%w: option %q", ErrRequiredOptionNotSet, "go_template")
	}
	tmpl, err := template.New("record").Funcs(sprig.TxtFuncMap()).Parse(src)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTemplate, err)
	}
	f.tmpl = tmpl
	return nil
}

func (f *goTemplateFormatter) buildTableHeader() error {
	src := f.Options().String("go_template_header")
	if src == "" {
		return nil
	}
	cn, ok := f.Data().(ColumnNamer)
	if !ok {
		return nil
	}
	tmpl, err := template.New("header").Funcs(sprig.TxtFuncMap()).Parse(src)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTemplate, err)
	}
	if err := tmpl.Execute(f.Output(), cn.ColumnNames()); err != nil {
		return err
	}
	f.Println()
	return nil
}

func (f *goTemplateFormatter) buildTableBody() error {
	_, recs, err := tableOf(&f.Base)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if err := f.tmpl.Execute(f.Output(), r.Map()); err != nil {
			return err
		}
		f.Println()
	}
	return nil
}
