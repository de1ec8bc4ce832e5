package report

import (
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var discardLogger = log.New(io.Discard)

// Controller declares the stages of a report, the options it requires and
// the formatters registered for each format. Declarations are made once,
// when the controller is defined; every call to [Controller.Render] then
// gets its own [Job], formatter and options.
type Controller struct {
	mu        sync.RWMutex
	name      string
	stages    []string
	prepare   string
	finalize  string
	required  []string
	defaults  Values
	formats   map[Format]FormatterFactory
	shortcuts map[Format]RenderFunc
	setup     func(*Job) error
	helpers   any
	logger    *log.Logger
	templates *TemplateRegistry
}

// NewController creates a controller with no stages and no formats.
func NewController(name string) *Controller {
	return &Controller{
		name:      name,
		defaults:  Values{},
		formats:   make(map[Format]FormatterFactory),
		shortcuts: make(map[Format]RenderFunc),
		logger:    discardLogger,
	}
}

// Name returns the controller name.
func (c *Controller) Name() string { return c.name }

// Stage appends body stages. Repeated calls accumulate.
func (c *Controller) Stage(names ...string) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = append(c.stages, names...)
	return c
}

// Stages returns the body stages in declaration order.
func (c *Controller) Stages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.stages)
}

// Prepare declares the stage run before the body stages. It may be declared
// once.
func (c *Controller) Prepare(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prepare != "" {
		return fmt.Errorf("%w: prepare stage %q on controller %q", ErrStageAlreadyDefined, c.prepare, c.name)
	}
	c.prepare = name
	return nil
}

// Finalize declares the stage run after the body stages. It may be declared
// once.
func (c *Controller) Finalize(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalize != "" {
		return fmt.Errorf("%w: finalize stage %q on controller %q", ErrStageAlreadyDefined, c.finalize, c.name)
	}
	c.finalize = name
	return nil
}

// Require declares options that must be non-nil once setup has run.
func (c *Controller) Require(names ...string) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range names {
		c.required = append(c.required, normalizeKey(n))
	}
	return c
}

// Defaults merges v into the controller's default options. Defaults rank
// below template values and call-site options.
func (c *Controller) Defaults(v Values) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaults = Merge(c.defaults, v)
	return c
}

// OnSetup sets a function run after the caller's job functions and before
// the required options are checked.
func (c *Controller) OnSetup(fn func(*Job) error) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setup = fn
	return c
}

// UseHelpers sets a value handed to every formatter through
// [Base.Helpers] and [Helper].
func (c *Controller) UseHelpers(h any) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.helpers = h
	return c
}

// SetLogger sets the logger that receives render lifecycle events at debug
// level. A nil logger discards them.
func (c *Controller) SetLogger(l *log.Logger) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l == nil {
		l = discardLogger
	}
	c.logger = l
	return c
}

// UseTemplates sets the registry templates are resolved from. The package
// [Templates] registry is used otherwise.
func (c *Controller) UseTemplates(r *TemplateRegistry) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates = r
	return c
}

// Register binds factory to each of formats. One factory may serve several
// formats; the formatter reads the active one from [Base.Format].
func (c *Controller) Register(factory FormatterFactory, formats ...Format) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range formats {
		c.formats[f] = factory
		c.shortcuts[f] = c.shortcut(f)
	}
	return c
}

// Formats returns a copy of the format registry.
func (c *Controller) Formats() map[Format]FormatterFactory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.formats)
}

// FormatNames returns the registered formats in sorted order.
func (c *Controller) FormatNames() []Format {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]Format, 0, len(c.formats))
	for f := range c.formats {
		names = append(names, f)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Supports reports whether f is registered.
func (c *Controller) Supports(f Format) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.formats[f]
	return ok
}

func (c *Controller) available() string {
	names := c.FormatNames()
	if len(names) == 0 {
		return "none"
	}
	s := make([]string, len(names))
	for i, n := range names {
		s[i] = string(n)
	}
	return strings.Join(s, ", ")
}

// definition is a consistent snapshot of the controller declarations.
type definition struct {
	factory   FormatterFactory
	stages    []string
	prepare   string
	finalize  string
	required  []string
	defaults  Values
	setup     func(*Job) error
	helpers   any
	logger    *log.Logger
	templates *TemplateRegistry
}

func (c *Controller) snapshot(f Format) (definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	factory, ok := c.formats[f]
	if !ok {
		return definition{}, false
	}
	templates := c.templates
	if templates == nil {
		templates = Templates
	}
	return definition{
		factory:   factory,
		stages:    slices.Clone(c.stages),
		prepare:   c.prepare,
		finalize:  c.finalize,
		required:  slices.Clone(c.required),
		defaults:  c.defaults,
		setup:     c.setup,
		helpers:   c.helpers,
		logger:    c.logger,
		templates: templates,
	}, true
}

// Render produces format f.
//
// The options are the controller defaults, overridden by the template in
// effect, overridden by opts and by whatever the job functions and setup
// write. The "data" option becomes the job data, "io" redirects output to an
// io.Writer, "file" writes the result to a path, "layout" set to false skips
// the formatter's layout and "template" selects a template label or, set to
// false, disables templating. Setting both "io" and "file" is an error.
//
// Each fn runs before setup and may set data or options, including
// "template". The template is resolved once setup has returned, and the
// required options are checked after that. Then the prepare hook, the body
// stage hooks (inside the formatter's layout, if any) and the finalize hook
// run.
//
// Errors from fn, setup or a hook are returned unchanged. On error the
// returned string is empty and no file is written. When "io" is set the
// returned string is empty.
func (c *Controller) Render(f Format, opts Values, fns ...func(*Job) error) (string, error) {
	def, ok := c.snapshot(f)
	if !ok {
		return "", fmt.Errorf("%w: %q for controller %q (available: %s)", ErrUnknownFormat, f, c.name, c.available())
	}
	start := time.Now()
	logger := def.logger.With("controller", c.name, "format", f)

	call := make(Values, len(opts))
	for k, v := range opts {
		call[normalizeKey(k)] = v
	}
	data, hasData := call["data"]
	delete(call, "data")
	if !hasData {
		data = def.defaults["data"]
	}

	fmtr := def.factory()
	b := fmtr.base()

	merged := Merge(def.defaults, call)
	delete(merged, "data")
	o := &Options{m: merged, written: map[string]struct{}{}}
	b.bind(f, o, data, def.helpers)
	initial := deepCopyMap(o.m)

	job := &Job{controller: c, formatter: fmtr}
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		if err := fn(job); err != nil {
			return "", err
		}
	}
	if def.setup != nil {
		if err := def.setup(job); err != nil {
			return "", err
		}
	}

	tmpl, err := def.templates.resolve(o.m)
	if err != nil {
		return "", err
	}
	if tmpl != nil {
		o.m = withTemplate(tmpl, fmtr, def.defaults, o, call, initial)
		logger.Debug("template applied", "template", tmpl.Label())
	}
	o.written = nil

	for _, name := range def.required {
		if !o.Has(name) {
			return "", fmt.Errorf("%w: %q for controller %q", ErrRequiredOptionNotSet, name, c.name)
		}
	}
	if o.Has("io") && o.Has("file") {
		return "", fmt.Errorf("%w: \"io\" and \"file\" for controller %q", ErrConflictingOptions, c.name)
	}

	if err := runStages(def, fmtr, o, logger); err != nil {
		return "", err
	}
	if err := b.Err(); err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}

	out := b.contents()
	if path := o.String("file"); path != "" {
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return "", err
		}
		logger.Debug("output written", "file", path)
	}
	logger.Debug("rendered", "bytes", len(out), "elapsed", time.Since(start))
	return out, nil
}

// withTemplate layers t between the controller defaults and the options
// supplied by the call site, a job function or setup. A key counts as
// supplied when it came from the call, was written through [Options] or no
// longer matches its initial value. Deleted keys stay deleted.
func withTemplate(t *Template, fmtr Formatter, defaults Values, o *Options, call, initial Values) Values {
	explicit := make(Values, len(o.m))
	for k, v := range o.m {
		_, fromCall := call[k]
		_, written := o.written[k]
		prev, existed := initial[k]
		if fromCall || written || !existed || !reflect.DeepEqual(v, prev) {
			explicit[k] = v
		}
	}
	merged := Merge(defaults, templateLayer(t, fmtr, defaults, explicit), explicit)
	for k := range o.written {
		if _, ok := o.m[k]; !ok {
			delete(merged, k)
		}
	}
	delete(merged, "data")
	return merged
}

// templateLayer returns the option values a template contributes. Each
// bundle appears as "<bundle>_format" holding the bundle values overridden
// by any same-named map in the defaults or call-site options, so the
// formatter's ApplyTemplate sees the effective bundle.
func templateLayer(t *Template, fmtr Formatter, defaults, call Values) Values {
	tl := t.layer()
	effective := make(Values, len(tl))
	for key, bundle := range tl {
		eff := Values{key: bundle}
		if m, ok := asMap(defaults[key]); ok {
			eff = Merge(Values{key: m}, eff)
		}
		if m, ok := asMap(call[key]); ok {
			eff = Merge(eff, Values{key: m})
		}
		effective[key] = eff[key]
	}
	lo := &Options{m: effective}
	if ta, ok := fmtr.(TemplateApplier); ok {
		ta.ApplyTemplate(t, lo)
	}
	return lo.m
}

func runStages(def definition, fmtr Formatter, o *Options, logger *log.Logger) error {
	hooks := newHooks()
	if hp, ok := fmtr.(HookProvider); ok {
		hp.Hooks(hooks)
	}

	run := func(kind string, table map[string]Hook, stage string) error {
		h, ok := table[stage]
		if !ok || h == nil {
			return nil
		}
		logger.Debug("stage", "kind", kind, "stage", stage)
		return h()
	}

	if def.prepare != "" {
		if err := run("prepare", hooks.prepare, def.prepare); err != nil {
			return err
		}
	}

	body := func() error {
		for _, stage := range def.stages {
			if err := run("build", hooks.build, stage); err != nil {
				return err
			}
		}
		return nil
	}
	if l, ok := fmtr.(Layouter); ok && o.BoolOr("layout", true) {
		if err := l.Layout(body); err != nil {
			return err
		}
	} else if err := body(); err != nil {
		return err
	}

	if def.finalize != "" {
		return run("finalize", hooks.finalize, def.finalize)
	}
	return nil
}
