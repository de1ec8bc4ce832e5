package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/report"
)

func fruitTable() *report.Table {
	return report.NewTable([]string{"name", "qty"},
		[]any{"apple", 3},
		[]any{"pear", 10},
	)
}

func TestTableAccessors(t *testing.T) {
	t.Parallel()
	tbl := fruitTable()
	assert.Equal(t, []string{"name", "qty"}, tbl.ColumnNames())
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []any{"apple", "pear"}, tbl.Column("name"))
	assert.Nil(t, tbl.Column("missing"))

	r := tbl.Record(1)
	assert.Equal(t, "pear", r.Get("name"))
	assert.Equal(t, 10, r.At(1))
	assert.Nil(t, r.At(5))
	assert.Nil(t, r.Get("missing"))
	assert.Equal(t, []string{"pear", "10"}, r.Strings())
	assert.Equal(t, map[string]any{"name": "pear", "qty": 10}, r.Map())
	assert.Len(t, tbl.Records(), 2)
}

func TestTableEachStops(t *testing.T) {
	t.Parallel()
	var seen []any
	fruitTable().Each(func(r report.Record) bool {
		seen = append(seen, r.Get("name"))
		return false
	})
	assert.Equal(t, []any{"apple"}, seen)
}

func TestTableColumnNamesIsCopy(t *testing.T) {
	t.Parallel()
	tbl := fruitTable()
	cols := tbl.ColumnNames()
	cols[0] = "changed"
	assert.Equal(t, "name", tbl.ColumnNames()[0])
}

func TestTableSub(t *testing.T) {
	t.Parallel()
	sub := fruitTable().Sub("qty", "missing")
	assert.Equal(t, []string{"qty", "missing"}, sub.ColumnNames())
	assert.Equal(t, []any{3, nil}, sub.Record(0).Values())
}

func TestTableGroupBy(t *testing.T) {
	t.Parallel()
	tbl := report.NewTable([]string{"kind", "name"},
		[]any{"fruit", "apple"},
		[]any{"veg", "leek"},
		[]any{"fruit", "pear"},
	)
	g, err := tbl.GroupBy("kind")
	require.NoError(t, err)
	require.Equal(t, 2, g.Len())

	groups := g.Groups()
	assert.Equal(t, "fruit", groups[0].Name)
	assert.Equal(t, "veg", groups[1].Name)
	assert.Equal(t, []string{"name"}, groups[0].ColumnNames())
	assert.Equal(t, []any{"apple", "pear"}, groups[0].Column("name"))
	assert.Nil(t, g.Group("meat"))

	_, err = tbl.GroupBy("missing")
	require.Error(t, err)
}

func TestTableGroupByRaggedRows(t *testing.T) {
	t.Parallel()
	tbl, err := report.ParseCSV(strings.NewReader("name,kind\napple\npear,fruit\n"), report.CSVOptions{})
	require.NoError(t, err)

	g, err := tbl.GroupBy("kind")
	require.NoError(t, err)
	require.Equal(t, 2, g.Len())
	groups := g.Groups()
	assert.Equal(t, "", groups[0].Name)
	assert.Equal(t, []any{"apple"}, groups[0].Record(0).Values())
	assert.Equal(t, "fruit", groups[1].Name)
	assert.Equal(t, []any{"pear"}, groups[1].Record(0).Values())

	short := report.NewTable([]string{"a", "b", "c"}, []any{"x"})
	g, err = short.GroupBy("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, g.Groups()[0].ColumnNames())
	assert.Equal(t, []any{"x", nil}, g.Groups()[0].Record(0).Values())
}

func TestParseCSV(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input string
		opts  report.CSVOptions
		cols  []string
		rows  [][]string
	}{
		"header": {
			input: "name,qty\napple,3\npear,10\n",
			cols:  []string{"name", "qty"},
			rows:  [][]string{{"apple", "3"}, {"pear", "10"}},
		},
		"no header": {
			input: "apple,3\n",
			opts:  report.CSVOptions{NoHeader: true},
			cols:  []string{"c0", "c1"},
			rows:  [][]string{{"apple", "3"}},
		},
		"semicolon": {
			input: "name;qty\napple;3\n",
			opts:  report.CSVOptions{Comma: ';'},
			cols:  []string{"name", "qty"},
			rows:  [][]string{{"apple", "3"}},
		},
		"ragged": {
			input: "name,qty\napple\n",
			cols:  []string{"name", "qty"},
			rows:  [][]string{{"apple"}},
		},
		"empty": {
			input: "",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tbl, err := report.ParseCSV(strings.NewReader(tt.input), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.cols, tbl.ColumnNames())
			var rows [][]string
			for _, r := range tbl.Records() {
				rows = append(rows, r.Strings())
			}
			assert.Equal(t, tt.rows, rows)
		})
	}
}

func TestParseCSVError(t *testing.T) {
	t.Parallel()
	_, err := report.ParseCSV(strings.NewReader("a,\"b\n"), report.CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing csv")
}
