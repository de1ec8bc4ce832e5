package report

import (
	"fmt"
	"html"
	"maps"
)

type groupingHelpers struct {
	tables *Controller
}

// groupingFormatter serves every table format for [Grouping] data. Each
// group gets a heading in the active format and is rendered through the
// table controller with the same options.
type groupingFormatter struct {
	Base
}

func (f *groupingFormatter) Hooks(h *Hooks) {
	h.Build(StageGroupingHeader, f.buildGroupingHeader)
	h.Build(StageGroupingBody, f.buildGroupingBody)
}

func (f *groupingFormatter) buildGroupingHeader() error {
	title := f.Options().String("title")
	if title == "" {
		return nil
	}
	f.When(HTML, func() { f.Printf("<h1>%s</h1>\n", html.EscapeString(title)) })
	f.When(Markdown, func() { f.Printf("# %s\n\n", title) })
	f.When(Text, func() { f.Printf("%s\n\n", title) })
	return nil
}

func (f *groupingFormatter) ApplyTemplate(_ *Template, layer *Options) {
	applyTableTemplate(layer)
}

func (f *groupingFormatter) buildGroupingBody() error {
	g, ok := f.Data().(*Grouping)
	if !ok {
		return fmt.Errorf("%w: format %q requires *Grouping data, got %T", ErrMissingInterface, f.Format(), f.Data())
	}
	h, ok := Helper[*groupingHelpers](f)
	if !ok {
		return fmt.Errorf("grouping formatter has no table controller")
	}
	opts := f.Options().ToMap()
	for _, k := range []string{"io", "file", "title"} {
		delete(opts, k)
	}
	// The group's template, if any, was already folded into opts.
	opts["template"] = false
	show := f.Options().BoolOr("show_group_headers", true)

	for i, grp := range g.Groups() {
		if show {
			f.writeHeading(i, grp.Name)
		}
		call := maps.Clone(opts)
		call["data"] = grp.Table
		out, err := h.tables.Render(f.Format(), call)
		if err != nil {
			return err
		}
		f.Print(out)
	}
	return nil
}

func (f *groupingFormatter) writeHeading(i int, name string) {
	switch f.Format() {
	case HTML:
		f.Printf("<h2>%s</h2>\n", html.EscapeString(name))
	case Markdown:
		if i > 0 {
			f.Println()
		}
		f.Printf("## %s\n\n", name)
	case Text:
		if i > 0 {
			f.Println()
		}
		f.Println(name)
		f.Println()
	case CSV, TSV:
		if i > 0 {
			f.Println()
		}
		f.Println(name)
	}
}
