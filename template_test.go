package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/report"
)

func TestTemplateCreateAndLookup(t *testing.T) {
	t.Parallel()
	r := report.NewTemplateRegistry()
	created, err := r.Create("plain", func(tm *report.Template) {
		tm.Set("table", "show_headings", false)
		tm.Set("table", ":title", "Stock")
	})
	require.NoError(t, err)

	got, err := r.Lookup("plain")
	require.NoError(t, err)
	assert.Same(t, created, got)
	assert.Equal(t, "plain", got.Label())

	v, ok := got.Get("table", "title")
	assert.True(t, ok)
	assert.Equal(t, "Stock", v)
	_, ok = got.Get("text", "border")
	assert.False(t, ok)

	assert.Equal(t, []string{"table"}, got.Bundles())
	assert.Equal(t, []string{"plain"}, r.Labels())
}

func TestTemplateLookupUndefined(t *testing.T) {
	t.Parallel()
	_, err := report.NewTemplateRegistry().Lookup("nope")
	require.ErrorIs(t, err, report.ErrTemplateNotDefined)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestTemplateBasedOnIsDeepCopy(t *testing.T) {
	t.Parallel()
	r := report.NewTemplateRegistry()
	base, err := r.Create("base", func(tm *report.Template) {
		tm.Set("table", "title", "A")
		tm.Set("text", "border", "ascii")
	})
	require.NoError(t, err)

	child, err := r.Create("child", func(tm *report.Template) {
		tm.Set("table", "title", "B")
	}, report.BasedOn("base"))
	require.NoError(t, err)

	v, _ := child.Get("table", "title")
	assert.Equal(t, "B", v)
	v, _ = child.Get("text", "border")
	assert.Equal(t, "ascii", v)

	v, _ = base.Get("table", "title")
	assert.Equal(t, "A", v)

	base.Set("text", "border", "heavy")
	v, _ = child.Get("text", "border")
	assert.Equal(t, "ascii", v)
}

func TestTemplateBasedOnUndefined(t *testing.T) {
	t.Parallel()
	r := report.NewTemplateRegistry()
	_, err := r.Create("child", nil, report.BasedOn("missing"))
	require.ErrorIs(t, err, report.ErrTemplateNotDefined)
	assert.Empty(t, r.Labels())
}

func TestTemplateBundleCopies(t *testing.T) {
	t.Parallel()
	r := report.NewTemplateRegistry()
	src := report.Bundle{"title": "A"}
	tm, err := r.Create("copy", func(tm *report.Template) { tm.SetBundle("table", src) })
	require.NoError(t, err)

	src["title"] = "changed"
	b := tm.Bundle("table")
	assert.Equal(t, report.Bundle{"title": "A"}, b)

	b["title"] = "changed"
	v, _ := tm.Get("table", "title")
	assert.Equal(t, "A", v)
	assert.Nil(t, tm.Bundle("missing"))
}

func TestTemplateRegistryDefaultAndRemove(t *testing.T) {
	t.Parallel()
	r := report.NewTemplateRegistry()
	_, ok := r.Default()
	assert.False(t, ok)

	_, err := r.Create(report.DefaultTemplate, nil)
	require.NoError(t, err)
	def, ok := r.Default()
	require.True(t, ok)
	assert.Equal(t, report.DefaultTemplate, def.Label())

	r.Remove(report.DefaultTemplate)
	_, ok = r.Default()
	assert.False(t, ok)
}

const templatesYAML = `
templates:
  - label: default
    bundles:
      table:
        show_headings: false
  - label: wide
    base: default
    bundles:
      text:
        border: ascii
        max_col_width: 40
`

const templatesTOML = `
[[templates]]
label = "default"

[templates.bundles.table]
show_headings = false

[[templates]]
label = "wide"
base = "default"

[templates.bundles.text]
border = "ascii"
max_col_width = 40
`

func TestTemplateLoad(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		kind string
		doc  string
	}{
		"yaml": {kind: report.DocumentYAML, doc: templatesYAML},
		"toml": {kind: report.DocumentTOML, doc: templatesTOML},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := report.NewTemplateRegistry()
			loaded, err := r.Load(strings.NewReader(tt.doc), tt.kind)
			require.NoError(t, err)
			require.Len(t, loaded, 2)
			assert.Equal(t, []string{"default", "wide"}, r.Labels())

			wide, err := r.Lookup("wide")
			require.NoError(t, err)
			v, ok := wide.Get("table", "show_headings")
			assert.True(t, ok)
			assert.Equal(t, false, v)
			v, _ = wide.Get("text", "border")
			assert.Equal(t, "ascii", v)
			assert.Equal(t, []string{"table", "text"}, wide.Bundles())
		})
	}
}

func TestTemplateLoadErrors(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		kind   string
		doc    string
		target error
	}{
		"unknown kind": {
			kind:   "json",
			doc:    "{}",
			target: report.ErrUnknownFormat,
		},
		"undefined base": {
			kind:   report.DocumentYAML,
			doc:    "templates:\n  - label: child\n    base: missing\n",
			target: report.ErrTemplateNotDefined,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := report.NewTemplateRegistry().Load(strings.NewReader(tt.doc), tt.kind)
			require.ErrorIs(t, err, tt.target)
		})
	}
}

func TestTemplateLoadRejectsMissingLabel(t *testing.T) {
	t.Parallel()
	_, err := report.NewTemplateRegistry().Load(strings.NewReader("templates:\n  - base: x\n"), report.DocumentYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no label")
}

func TestTemplateLoadEmptyDocument(t *testing.T) {
	t.Parallel()
	loaded, err := report.NewTemplateRegistry().Load(strings.NewReader(""), report.DocumentYAML)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestTemplateLoadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "templates.yml")
	tomlPath := filepath.Join(dir, "templates.toml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(templatesYAML), 0o600))
	require.NoError(t, os.WriteFile(tomlPath, []byte(templatesTOML), 0o600))

	for _, path := range []string{yamlPath, tomlPath} {
		loaded, err := report.NewTemplateRegistry().LoadFile(path)
		require.NoError(t, err, path)
		assert.Len(t, loaded, 2, path)
	}

	_, err := report.NewTemplateRegistry().LoadFile(filepath.Join(dir, "templates.json"))
	require.ErrorIs(t, err, report.ErrUnknownFormat)

	_, err = report.NewTemplateRegistry().LoadFile(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// --- Templates applied by a controller ---

func newTemplatedController(t *testing.T) *report.Controller {
	t.Helper()
	r := report.NewTemplateRegistry()
	_, err := r.Create(report.DefaultTemplate, func(tm *report.Template) {
		tm.Set("table", "show_headings", false)
	})
	require.NoError(t, err)
	_, err = r.Create("semicolon", func(tm *report.Template) {
		tm.Set("format", "col_sep", ";")
	}, report.BasedOn(report.DefaultTemplate))
	require.NoError(t, err)
	return report.NewTableController().UseTemplates(r)
}

func TestTemplatePrecedence(t *testing.T) {
	t.Parallel()
	data := report.NewTable([]string{"name", "qty"}, []any{"apple", 3})

	tests := map[string]struct {
		opts report.Values
		want string
	}{
		"default template": {
			opts: report.Values{},
			want: "apple,3\n",
		},
		"call site overrides template": {
			opts: report.Values{"show_table_headers": true},
			want: "name,qty\napple,3\n",
		},
		"call site bundle overrides template": {
			opts: report.Values{"table_format": map[string]any{"show_headings": true}},
			want: "name,qty\napple,3\n",
		},
		"templating disabled": {
			opts: report.Values{"template": false},
			want: "name,qty\napple,3\n",
		},
		"named template": {
			opts: report.Values{"template": "semicolon"},
			want: "apple;3\n",
		},
		"named template with override": {
			opts: report.Values{"template": "semicolon", "col_sep": "|"},
			want: "apple|3\n",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			opts := report.Merge(tt.opts)
			opts["data"] = data
			out, err := newTemplatedController(t).Render(report.CSV, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestTemplateSelectedByJob(t *testing.T) {
	t.Parallel()
	data := report.NewTable([]string{"name", "qty"}, []any{"apple", 3})

	tests := map[string]struct {
		fn    func(*report.Job) error
		setup func(*report.Job) error
		want  string
	}{
		"job fn selects template": {
			fn: func(j *report.Job) error {
				j.Options().Set("template", "semicolon")
				return nil
			},
			want: "apple;3\n",
		},
		"setup disables template": {
			setup: func(j *report.Job) error {
				j.Options().Set("template", false)
				return nil
			},
			want: "name,qty\napple,3\n",
		},
		"job write equal to default beats template": {
			fn: func(j *report.Job) error {
				j.Options().Set("show_table_headers", true)
				return nil
			},
			want: "name,qty\napple,3\n",
		},
		"job bundle edit beats template": {
			fn: func(j *report.Job) error {
				j.Options().Set("format_format", map[string]any{"col_sep": "|"})
				j.Options().Set("template", "semicolon")
				return nil
			},
			want: "apple|3\n",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c := newTemplatedController(t)
			if tt.setup != nil {
				c.OnSetup(tt.setup)
			}
			out, err := c.Render(report.CSV, report.Values{"data": data}, tt.fn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestTemplateSelectedByJobUndefined(t *testing.T) {
	t.Parallel()
	out, err := newTemplatedController(t).Render(report.CSV, report.Values{
		"data": report.NewTable([]string{"name"}),
	}, func(j *report.Job) error {
		j.Options().Set("template", "missing")
		return nil
	})
	require.ErrorIs(t, err, report.ErrTemplateNotDefined)
	assert.Empty(t, out)
}

func TestTemplateDefaultsRankBelowTemplate(t *testing.T) {
	t.Parallel()
	c := newTemplatedController(t)
	c.Defaults(report.Values{"show_table_headers": true})
	out, err := c.Render(report.CSV, report.Values{
		"data": report.NewTable([]string{"name"}, []any{"apple"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "apple\n", out)
}

func TestTemplateUndefinedLabel(t *testing.T) {
	t.Parallel()
	out, err := newTemplatedController(t).Render(report.CSV, report.Values{
		"data":     report.NewTable([]string{"name"}),
		"template": "missing",
	})
	require.ErrorIs(t, err, report.ErrTemplateNotDefined)
	assert.Empty(t, out)
}
