package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultTemplate is the label of the template applied when a render does
// not name one.
const DefaultTemplate = "default"

// Bundle is one named group of template defaults, e.g. the "table" bundle.
type Bundle map[string]any

// Template is a named set of bundles supplying default option values.
type Template struct {
	label   string
	bundles map[string]Bundle
}

// Label returns the name the template was created under.
func (t *Template) Label() string { return t.label }

// Set stores value under key in the named bundle, creating the bundle.
func (t *Template) Set(bundle, key string, value any) {
	b, ok := t.bundles[bundle]
	if !ok {
		b = Bundle{}
		t.bundles[bundle] = b
	}
	b[normalizeKey(key)] = value
}

// SetBundle replaces the named bundle with a copy of b.
func (t *Template) SetBundle(bundle string, b Bundle) {
	t.bundles[bundle] = Bundle(deepCopyMap(b))
}

// Get returns the value stored under key in the named bundle.
func (t *Template) Get(bundle, key string) (any, bool) {
	v, ok := t.bundles[bundle][normalizeKey(key)]
	return v, ok
}

// Bundle returns a copy of the named bundle, or nil.
func (t *Template) Bundle(bundle string) Bundle {
	b, ok := t.bundles[bundle]
	if !ok {
		return nil
	}
	return Bundle(deepCopyMap(b))
}

// Bundles returns the bundle names in sorted order.
func (t *Template) Bundles() []string {
	names := make([]string, 0, len(t.bundles))
	for name := range t.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// layer exposes every bundle as a "<bundle>_format" option.
func (t *Template) layer() Values {
	out := make(Values, len(t.bundles))
	for name, b := range t.bundles {
		out[name+"_format"] = deepCopyMap(b)
	}
	return out
}

// TemplateOption configures [TemplateRegistry.Create].
type TemplateOption func(*templateConfig)

type templateConfig struct {
	base string
}

// BasedOn starts the new template from a deep copy of the template labelled
// base.
func BasedOn(base string) TemplateOption {
	return func(c *templateConfig) { c.base = base }
}

// TemplateRegistry maps labels to templates for the life of the process.
type TemplateRegistry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// Templates is the registry used by controllers that were not given one.
var Templates = NewTemplateRegistry()

// NewTemplateRegistry creates an empty registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{templates: make(map[string]*Template)}
}

// Create builds a template, passes it to init and stores it under label,
// replacing any template already stored there. With [BasedOn] the template
// starts as a deep copy of the base, so later changes never reach the base.
func (r *TemplateRegistry) Create(label string, init func(*Template), opts ...TemplateOption) (*Template, error) {
	var cfg templateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	t := &Template{label: label, bundles: make(map[string]Bundle)}
	if cfg.base != "" {
		base, err := r.Lookup(cfg.base)
		if err != nil {
			return nil, err
		}
		r.mu.RLock()
		for name, b := range base.bundles {
			t.bundles[name] = Bundle(deepCopyMap(b))
		}
		r.mu.RUnlock()
	}
	if init != nil {
		init(t)
	}
	r.mu.Lock()
	r.templates[label] = t
	r.mu.Unlock()
	return t, nil
}

// Lookup returns the template stored under label.
func (r *TemplateRegistry) Lookup(label string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotDefined, label)
	}
	return t, nil
}

// Default returns the template labelled [DefaultTemplate], if one exists.
func (r *TemplateRegistry) Default() (*Template, bool) {
	t, err := r.Lookup(DefaultTemplate)
	return t, err == nil
}

// Labels returns the stored labels in sorted order.
func (r *TemplateRegistry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	labels := make([]string, 0, len(r.templates))
	for label := range r.templates {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Remove deletes the template stored under label.
func (r *TemplateRegistry) Remove(label string) {
	r.mu.Lock()
	delete(r.templates, label)
	r.mu.Unlock()
}

// resolve picks the template for a render. The "template" option names a
// label; false disables templating; otherwise the default template is used.
func (r *TemplateRegistry) resolve(opts Values) (*Template, error) {
	v, ok := opts["template"]
	if !ok || v == nil {
		t, _ := r.Default()
		return t, nil
	}
	switch sel := v.(type) {
	case bool:
		if !sel {
			return nil, nil
		}
		t, _ := r.Default()
		return t, nil
	case *Template:
		return sel, nil
	case string:
		return r.Lookup(normalizeKey(sel))
	default:
		return nil, fmt.Errorf("%w: invalid selector %v", ErrTemplateNotDefined, v)
	}
}

// Document kinds accepted by [TemplateRegistry.Load].
const (
	DocumentYAML = "yaml"
	DocumentTOML = "toml"
)

type templateDocument struct {
	Templates []templateEntry `yaml:"templates" toml:"templates"`
}

type templateEntry struct {
	Label   string            `yaml:"label" toml:"label"`
	Base    string            `yaml:"base" toml:"base"`
	Bundles map[string]Bundle `yaml:"bundles" toml:"bundles"`
}

// Load reads templates from a YAML or TOML document of the form
//
//	templates:
//	  - label: default
//	    bundles:
//	      table: {show_headings: false}
//	  - label: wide
//	    base: default
//	    bundles:
//	      text: {width: 120}
//
// Entries are created in document order so a base may refer to an entry
// defined earlier in the same document.
func (r *TemplateRegistry) Load(rd io.Reader, kind string) ([]*Template, error) {
	var doc templateDocument
	switch kind {
	case DocumentYAML:
		if err := yaml.NewDecoder(rd).Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decoding templates: %w", err)
		}
	case DocumentTOML:
		if _, err := toml.NewDecoder(rd).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding templates: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: template document %q", ErrUnknownFormat, kind)
	}

	created := make([]*Template, 0, len(doc.Templates))
	for _, e := range doc.Templates {
		if e.Label == "" {
			return nil, fmt.Errorf("decoding templates: entry %d has no label", len(created))
		}
		var opts []TemplateOption
		if e.Base != "" {
			opts = append(opts, BasedOn(e.Base))
		}
		t, err := r.Create(e.Label, func(t *Template) {
			for name, b := range e.Bundles {
				for k, v := range b {
					t.Set(name, k, v)
				}
			}
		}, opts...)
		if err != nil {
			return nil, err
		}
		created = append(created, t)
	}
	return created, nil
}

// LoadFile reads templates from path, choosing the decoder by extension.
func (r *TemplateRegistry) LoadFile(path string) ([]*Template, error) {
	var kind string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		kind = DocumentYAML
	case ".toml":
		kind = DocumentTOML
	default:
		return nil, fmt.Errorf("%w: template file %q", ErrUnknownFormat, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return r.Load(f, kind)
}
