package report

import "fmt"

// Built-in formats.
const (
	CSV        Format = "csv"
	TSV        Format = "tsv"
	HTML       Format = "html"
	Text       Format = "text"
	Markdown   Format = "markdown"
	JSON       Format = "json"
	JSONL      Format = "jsonl"
	YAML       Format = "yaml"
	GoTemplate Format = "gotemplate"
)

// Stage names used by the built-in controllers.
const (
	StageTable          = "table"
	StageTableHeader    = "table_header"
	StageTableBody      = "table_body"
	StageTableFooter    = "table_footer"
	StageGroupingHeader = "grouping_header"
	StageGroupingBody   = "grouping_body"
)

// NewTableController returns a controller for [Table] data with every
// built-in formatter registered.
//
// Stages: prepare "table", body "table_header", "table_body",
// "table_footer", finalize "table".
func NewTableController() *Controller {
	c := NewController("table")
	c.Stage(StageTableHeader, StageTableBody, StageTableFooter)
	must(c.Prepare(StageTable))
	must(c.Finalize(StageTable))
	c.Defaults(Values{"show_table_headers": true})
	c.Register(newCSVFormatter, CSV, TSV)
	c.Register(newHTMLFormatter, HTML)
	c.Register(newTextFormatter, Text)
	c.Register(newMarkdownFormatter, Markdown)
	c.Register(newStructuredFormatter, JSON, JSONL, YAML)
	c.Register(newGoTemplateFormatter, GoTemplate)
	return c
}

// NewGroupingController returns a controller for [Grouping] data. Each
// group is rendered through tables in the same format; the text, CSV, TSV,
// HTML and Markdown formats are registered when tables supports them.
//
// Stages: "grouping_header", "grouping_body".
func NewGroupingController(tables *Controller) *Controller {
	c := NewController("grouping")
	c.Stage(StageGroupingHeader, StageGroupingBody)
	c.Defaults(Values{"show_group_headers": true})
	c.UseHelpers(&groupingHelpers{tables: tables})
	factory := func() Formatter { return &groupingFormatter{} }
	for _, f := range []Format{CSV, TSV, HTML, Text, Markdown} {
		if tables.Supports(f) {
			c.Register(factory, f)
		}
	}
	return c
}

// Default built-in controllers.
var (
	TableController    = NewTableController()
	GroupingController = NewGroupingController(TableController)
)

func init() {
	Renderable[*Table](TableController, nil)
	Renderable[*Grouping](GroupingController, nil)
}

// must panics on a declaration error, which on a fresh controller is a bug.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

// tableOf extracts column names and records from the job data.
func tableOf(b *Base) ([]string, []Record, error) {
	e, ok := b.Data().(Enumerable)
	if !ok {
		return nil, nil, fmt.Errorf("%w: format %q requires Enumerable data, got %T", ErrMissingInterface, b.Format(), b.Data())
	}
	var cols []string
	if cn, ok := b.Data().(ColumnNamer); ok {
		cols = cn.ColumnNames()
	}
	var recs []Record
	e.Each(func(r Record) bool {
		recs = append(recs, r)
		return true
	})
	return cols, recs, nil
}

// templateKeys maps template bundle entries to the options the built-in
// formatters read.
var templateKeys = []struct {
	bundle, key, option string
}{
	{"table", "show_headings", "show_table_headers"},
	{"table", "title", "title"},
	{"table", "alignment", "alignment"},
	{"text", "border", "border"},
	{"text", "max_col_width", "max_col_width"},
	{"text", "wrap_width", "wrap_width"},
	{"grouping", "show_headings", "show_group_headers"},
	{"format", "col_sep", "col_sep"},
	{"format", "indent", "indent"},
}

// applyTableTemplate copies the effective template bundles into the layer.
func applyTableTemplate(layer *Options) {
	for _, tk := range templateKeys {
		bundle := layer.Map(tk.bundle + "_format")
		if v, ok := bundle[tk.key]; ok {
			layer.SetDefault(tk.option, v)
		}
	}
}

// showHeaders reports whether column headers should be emitted.
func showHeaders(b *Base, cols []string) bool {
	return len(cols) > 0 && b.Options().BoolOr("show_table_headers", true)
}
