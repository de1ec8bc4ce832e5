package report

import (
	"bytes"
	"fmt"
	"io"
	"slices"
)

// Format names an output format, e.g. "csv" or "html".
type Format string

// String returns the format name.
func (f Format) String() string { return string(f) }

// Formatter is one concrete rendering target. Implementations embed [Base],
// which carries the active format, the shared options, the data and the
// output sink.
type Formatter interface {
	base() *Base
}

// FormatterFactory builds a fresh formatter for each render.
type FormatterFactory func() Formatter

// Hook is a stage hook. It communicates by writing to the formatter output
// and by mutating options or data.
type Hook func() error

// Hooks is the table of stage hooks a formatter implements. Stages with no
// entry are skipped.
type Hooks struct {
	prepare  map[string]Hook
	build    map[string]Hook
	finalize map[string]Hook
}

func newHooks() *Hooks {
	return &Hooks{
		prepare:  make(map[string]Hook),
		build:    make(map[string]Hook),
		finalize: make(map[string]Hook),
	}
}

// Prepare registers the hook run for the controller's prepare stage name.
func (h *Hooks) Prepare(stage string, fn Hook) { h.prepare[stage] = fn }

// Build registers the hook run for the body stage name.
func (h *Hooks) Build(stage string, fn Hook) { h.build[stage] = fn }

// Finalize registers the hook run for the controller's finalize stage name.
func (h *Hooks) Finalize(stage string, fn Hook) { h.finalize[stage] = fn }

// HookProvider is implemented by formatters that have stage hooks.
type HookProvider interface {
	Hooks(h *Hooks)
}

// TemplateApplier copies template values into the options under the keys the
// formatter's hooks read. Values written to layer rank below call-site
// options.
type TemplateApplier interface {
	ApplyTemplate(t *Template, layer *Options)
}

// Layouter wraps the body stages. body runs every body stage in order.
type Layouter interface {
	Layout(body func() error) error
}

// Base is embedded by every formatter.
type Base struct {
	format  Format
	opts    *Options
	data    any
	helpers any
	buf     *bytes.Buffer
	w       io.Writer
	err     error
}

func (b *Base) base() *Base { return b }

func (b *Base) bind(f Format, opts *Options, data any, helpers any) {
	b.format = f
	b.opts = opts
	b.data = data
	b.helpers = helpers
	if w, ok := opts.Get("io").(io.Writer); ok {
		b.w = w
		b.buf = nil
	} else {
		b.buf = &bytes.Buffer{}
		b.w = b.buf
	}
}

// Format returns the format being produced by the current render.
func (b *Base) Format() Format { return b.format }

// Is reports whether the active format is one of formats.
func (b *Base) Is(formats ...Format) bool {
	return slices.Contains(formats, b.format)
}

// When runs fn only while producing format f.
func (b *Base) When(f Format, fn func()) {
	if b.format == f {
		fn()
	}
}

// Options returns the options shared with the job.
func (b *Base) Options() *Options { return b.opts }

// Data returns the data being rendered.
func (b *Base) Data() any { return b.data }

// SetData replaces the data being rendered.
func (b *Base) SetData(v any) { b.data = v }

// Helpers returns the controller's helper value, or nil.
func (b *Base) Helpers() any { return b.helpers }

// Output returns the sink hooks write to: the writer given as the "io"
// option, or a buffer owned by the formatter.
func (b *Base) Output() io.Writer { return stickyWriter{b} }

// Print appends the operands to the output.
func (b *Base) Print(a ...any) { fmt.Fprint(b.Output(), a...) }

// Printf appends formatted text to the output.
func (b *Base) Printf(format string, a ...any) { fmt.Fprintf(b.Output(), format, a...) }

// Println appends the operands and a newline to the output.
func (b *Base) Println(a ...any) { fmt.Fprintln(b.Output(), a...) }

// Err returns the first error returned by the output sink.
func (b *Base) Err() error { return b.err }

func (b *Base) contents() string {
	if b.buf == nil {
		return ""
	}
	return b.buf.String()
}

// stickyWriter records the first write error and drops later writes.
type stickyWriter struct{ b *Base }

func (s stickyWriter) Write(p []byte) (int, error) {
	if s.b.err != nil {
		return 0, s.b.err
	}
	n, err := s.b.w.Write(p)
	if err != nil {
		s.b.err = err
	}
	return n, err
}

// Helper returns the formatter's helper value as T.
func Helper[T any](f Formatter) (T, bool) {
	h, ok := f.base().helpers.(T)
	return h, ok
}
