package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cast"
)

// Enumerable is the iteration protocol formatters consume.
type Enumerable interface {
	Each(fn func(Record) bool)
}

// ColumnNamer exposes column names for tabular formatters.
type ColumnNamer interface {
	ColumnNames() []string
}

// Record is one row of a [Table].
type Record struct {
	columns []string
	values  []any
}

// NewRecord creates a record from values, named by columns.
func NewRecord(columns []string, values ...any) Record {
	return Record{columns: columns, values: values}
}

// Values returns the cells in column order.
func (r Record) Values() []any { return r.values }

// Len returns the number of cells.
func (r Record) Len() int { return len(r.values) }

// At returns the i-th cell, or nil when out of range.
func (r Record) At(i int) any {
	if i < 0 || i >= len(r.values) {
		return nil
	}
	return r.values[i]
}

// Get returns the cell under the named column, or nil.
func (r Record) Get(column string) any {
	return r.At(slices.Index(r.columns, column))
}

// Strings returns the cells converted to strings.
func (r Record) Strings() []string {
	out := make([]string, len(r.values))
	for i, v := range r.values {
		out[i] = cast.ToString(v)
	}
	return out
}

// Map returns the cells keyed by column name.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		out[c] = r.At(i)
	}
	return out
}

// Table is a list of records sharing column names.
type Table struct {
	columns []string
	rows    [][]any
}

// NewTable creates a table with the given column names and rows.
func NewTable(columns []string, rows ...[]any) *Table {
	t := &Table{columns: slices.Clone(columns)}
	for _, r := range rows {
		t.AddRecord(r...)
	}
	return t
}

// ColumnNames returns the column names.
func (t *Table) ColumnNames() []string { return slices.Clone(t.columns) }

// AddRecord appends a row.
func (t *Table) AddRecord(values ...any) {
	t.rows = append(t.rows, slices.Clone(values))
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.rows) }

// Record returns the i-th record.
func (t *Table) Record(i int) Record {
	return Record{columns: t.columns, values: t.rows[i]}
}

// Records returns every record.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.rows))
	for i := range t.rows {
		out[i] = t.Record(i)
	}
	return out
}

// Each calls fn for each record until fn returns false.
func (t *Table) Each(fn func(Record) bool) {
	for i := range t.rows {
		if !fn(t.Record(i)) {
			return
		}
	}
}

// Column returns the cells of the named column.
func (t *Table) Column(name string) []any {
	idx := slices.Index(t.columns, name)
	if idx < 0 {
		return nil
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

// Sub returns a table holding only the named columns, in the given order.
func (t *Table) Sub(columns ...string) *Table {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = slices.Index(t.columns, c)
	}
	sub := &Table{columns: slices.Clone(columns)}
	for i := range t.rows {
		r := t.Record(i)
		row := make([]any, len(idx))
		for j, k := range idx {
			row[j] = r.At(k)
		}
		sub.rows = append(sub.rows, row)
	}
	return sub
}

// GroupBy splits the table on the named column. Groups keep the order in
// which their key first appears and drop the grouping column. Rows too short
// to hold the column fall in the "" group, padded with nil cells.
func (t *Table) GroupBy(column string) (*Grouping, error) {
	idx := slices.Index(t.columns, column)
	if idx < 0 {
		return nil, fmt.Errorf("group by %q: no such column", column)
	}
	rest := slices.Delete(slices.Clone(t.columns), idx, idx+1)
	g := &Grouping{}
	for i := range t.rows {
		r := t.Record(i)
		key := cast.ToString(r.At(idx))
		grp := g.Group(key)
		if grp == nil {
			grp = &Group{Name: key, Table: NewTable(rest)}
			g.groups = append(g.groups, grp)
		}
		row := slices.Clone(r.values)
		if idx < len(row) {
			row = slices.Delete(row, idx, idx+1)
		}
		for len(row) < len(rest) {
			row = append(row, nil)
		}
		grp.Table.AddRecord(row...)
	}
	return g, nil
}

// Group is a named table inside a [Grouping].
type Group struct {
	Name string
	*Table
}

// Grouping is an ordered list of groups.
type Grouping struct {
	groups []*Group
}

// Groups returns the groups in order.
func (g *Grouping) Groups() []*Group { return slices.Clone(g.groups) }

// Group returns the named group, or nil.
func (g *Grouping) Group(name string) *Group {
	for _, grp := range g.groups {
		if grp.Name == name {
			return grp
		}
	}
	return nil
}

// Len returns the number of groups.
func (g *Grouping) Len() int { return len(g.groups) }

// CSVOptions controls [ParseCSV].
type CSVOptions struct {
	// Comma is the field delimiter. Default: ','.
	Comma rune
	// NoHeader treats the first line as data and names columns c0, c1, ...
	NoHeader bool
}

// ParseCSV reads a table from CSV input.
func ParseCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	var t *Table
	for {
		line, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing csv: %w", err)
		}
		if t == nil {
			if !opts.NoHeader {
				t = NewTable(line)
				continue
			}
			cols := make([]string, len(line))
			for i := range cols {
				cols[i] = fmt.Sprintf("c%d", i)
			}
			t = NewTable(cols)
		}
		row := make([]any, len(line))
		for i, v := range line {
			row[i] = v
		}
		t.AddRecord(row...)
	}
	if t == nil {
		t = NewTable(nil)
	}
	return t, nil
}
