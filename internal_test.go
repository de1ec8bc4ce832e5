package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInternalWrite = errors.New("write failed")

func TestWrapCellWideCharSafety(t *testing.T) {
	t.Parallel()
	// "你" is a full-width character (2 columns). With width=1, Truncate
	// returns "" because the char doesn't fit. The safety branch advances
	// one rune to avoid an infinite loop.
	lines := wrapCell("你好", 1)
	assert.Equal(t, []string{"你", "好"}, lines)
}

func TestWrapCellNoWrap(t *testing.T) {
	t.Parallel()
	lines := wrapCell("hi", 0)
	assert.Equal(t, []string{"hi"}, lines)
}

func TestWrapCellFits(t *testing.T) {
	t.Parallel()
	lines := wrapCell("hi", 5)
	assert.Equal(t, []string{"hi"}, lines)
}

func TestWrapCellBasic(t *testing.T) {
	t.Parallel()
	lines := wrapCell("Hello", 3)
	assert.Equal(t, []string{"Hel", "lo"}, lines)
}

func TestWrapRowOnlyWideColumns(t *testing.T) {
	t.Parallel()
	wrapped := wrapRow([]string{"ab", "abcdef"}, []int{2, 6}, 3)
	assert.Equal(t, [][]string{{"ab"}, {"abc", "def"}}, wrapped)
	assert.Equal(t, 2, maxLines(wrapped))
}

func TestExtendAligns(t *testing.T) {
	t.Parallel()
	assert.Len(t, extendAligns([]Alignment{AlignLeft, AlignRight, AlignCenter}, 2), 2)
	assert.Equal(t, []Alignment{AlignRight, AlignLeft}, extendAligns([]Alignment{AlignRight}, 2))
}

func TestTableInnerWidth(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, tableInnerWidth(nil))
	assert.Equal(t, 7, tableInnerWidth([]int{5}))
	assert.Equal(t, 13, tableInnerWidth([]int{5, 3}))
}

func TestWriteCSVRowSuccess(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := writeCSVRow(csv.NewWriter(&buf), []string{"a", "b"})
	assert.NoError(t, err)
	assert.Equal(t, "a,b\n", buf.String())
}

func TestWriteCSVRowError(t *testing.T) {
	t.Parallel()
	// Small data: flush error hit via cw.Error().
	err := writeCSVRow(csv.NewWriter(&errWriterInternal{}), []string{"a", "b"})
	assert.Error(t, err)
}

func TestWriteCSVRowLargeDataError(t *testing.T) {
	t.Parallel()
	// Large data exceeds bufio buffer (4096 bytes), causing cw.Write to fail.
	big := strings.Repeat("x", 5000)
	err := writeCSVRow(csv.NewWriter(&errWriterInternal{}), []string{big})
	assert.Error(t, err)
}

func TestStickyWriterKeepsFirstError(t *testing.T) {
	t.Parallel()
	var b Base
	b.bind(Text, NewOptions(Values{"io": &errWriterInternal{}}), nil, nil)
	b.Print("one")
	b.Print("two")
	require.ErrorIs(t, b.Err(), errInternalWrite)
	assert.Empty(t, b.contents())
}

func TestBindWithoutWriterBuffers(t *testing.T) {
	t.Parallel()
	var b Base
	b.bind(Text, NewOptions(nil), 42, "helpers")
	b.Printf("%d", b.Data())
	assert.Equal(t, "42", b.contents())
	assert.Equal(t, "helpers", b.Helpers())
	assert.True(t, b.Is(CSV, Text))
	assert.False(t, b.Is(HTML))
}

func TestNormalizeKey(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"title":   "title",
		":title":  "title",
		" title ": "title",
		" :title": "title",
		"a:b":     "a:b",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, normalizeKey(in))
		})
	}
}

func TestTemplateResolve(t *testing.T) {
	t.Parallel()
	r := NewTemplateRegistry()
	def, err := r.Create(DefaultTemplate, nil)
	require.NoError(t, err)
	wide, err := r.Create("wide", nil)
	require.NoError(t, err)
	custom := &Template{label: "adhoc", bundles: map[string]Bundle{}}

	tests := map[string]struct {
		opts Values
		want *Template
	}{
		"absent":       {opts: Values{}, want: def},
		"nil":          {opts: Values{"template": nil}, want: def},
		"true":         {opts: Values{"template": true}, want: def},
		"false":        {opts: Values{"template": false}, want: nil},
		"label":        {opts: Values{"template": "wide"}, want: wide},
		"symbol label": {opts: Values{"template": ":wide"}, want: wide},
		"value":        {opts: Values{"template": custom}, want: custom},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := r.resolve(tt.opts)
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}

	_, err = r.resolve(Values{"template": "missing"})
	require.ErrorIs(t, err, ErrTemplateNotDefined)
	_, err = r.resolve(Values{"template": 3})
	require.ErrorIs(t, err, ErrTemplateNotDefined)
}

func TestResolveWithoutDefault(t *testing.T) {
	t.Parallel()
	got, err := NewTemplateRegistry().resolve(Values{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

type errWriterInternal struct{}

func (e *errWriterInternal) Write([]byte) (int, error) {
	return 0, errInternalWrite
}

func TestMust(t *testing.T) {
	t.Parallel()
	c := NewController("twice")
	assert.NotPanics(t, func() { must(c.Prepare("document")) })
	assert.PanicsWithError(t, `stage already defined: prepare stage "document" on controller "twice"`, func() {
		must(c.Prepare("document"))
	})

	tc := NewTableController()
	assert.Panics(t, func() { must(tc.Finalize("again")) })
}
