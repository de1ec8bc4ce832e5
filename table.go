package report

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// BorderStyle controls text table border characters.
type BorderStyle int

const (
	BorderRounded BorderStyle = iota // ╭─╮╰╯│┬┴├┤┼
	BorderNone                       // No borders, space-separated columns
	BorderASCII                      // +-+|
	BorderHeavy                      // ┏━┓┗┛┃┳┻┣┫╋
	BorderDouble                     // ╔═╗╚╝║╦╩╠╣╬
)

var borderNames = map[string]BorderStyle{
	"rounded": BorderRounded,
	"none":    BorderNone,
	"ascii":   BorderASCII,
	"heavy":   BorderHeavy,
	"double":  BorderDouble,
}

// ParseBorder converts a border name to a BorderStyle.
func ParseBorder(s string) (BorderStyle, error) {
	if s == "" {
		return BorderRounded, nil
	}
	b, ok := borderNames[strings.ToLower(s)]
	if !ok {
		return BorderRounded, fmt.Errorf("unknown border style %q", s)
	}
	return b, nil
}

// Alignment controls column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func parseAlignments(names []string) []Alignment {
	out := make([]Alignment, len(names))
	for i, n := range names {
		switch strings.ToLower(n) {
		case "right":
			out[i] = AlignRight
		case "center", "centre":
			out[i] = AlignCenter
		default:
			out[i] = AlignLeft
		}
	}
	return out
}

type borderChars struct {
	topLeft, topRight, bottomLeft, bottomRight string
	horizontal, vertical                       string
	topTee, bottomTee, leftTee, rightTee       string
	cross                                      string
}

var borderSets = map[BorderStyle]borderChars{
	BorderRounded: {
		topLeft: "╭", topRight: "╮", bottomLeft: "╰", bottomRight: "╯",
		horizontal: "─", vertical: "│",
		topTee: "┬", bottomTee: "┴", leftTee: "├", rightTee: "┤",
		cross: "┼",
	},
	BorderASCII: {
		topLeft: "+", topRight: "+", bottomLeft: "+", bottomRight: "+",
		horizontal: "-", vertical: "|",
		topTee: "+", bottomTee: "+", leftTee: "+", rightTee: "+",
		cross: "+",
	},
	BorderHeavy: {
		topLeft: "┏", topRight: "┓", bottomLeft: "┗", bottomRight: "┛",
		horizontal: "━", vertical: "┃",
		topTee: "┳", bottomTee: "┻", leftTee: "┣", rightTee: "┫",
		cross: "╋",
	},
	BorderDouble: {
		topLeft: "╔", topRight: "╗", bottomLeft: "╚", bottomRight: "╝",
		horizontal: "═", vertical: "║",
		topTee: "╦", bottomTee: "╩", leftTee: "╠", rightTee: "╣",
		cross: "╬",
	},
}

// textFormatter renders a box-drawn or plain text table. The prepare stage
// measures every cell, so the body stages can pad to final widths.
type textFormatter struct {
	Base
	header []string
	rows   [][]string
	widths []int
	aligns []Alignment
	wrap   int
	border BorderStyle
	bc     borderChars
}

func newTextFormatter() Formatter { return &textFormatter{} }

func (f *textFormatter) Hooks(h *Hooks) {
	h.Prepare(StageTable, f.prepareTable)
	h.Build(StageTableHeader, f.buildTableHeader)
	h.Build(StageTableBody, f.buildTableBody)
	h.Finalize(StageTable, f.finalizeTable)
}

func (f *textFormatter) ApplyTemplate(_ *Template, layer *Options) {
	applyTableTemplate(layer)
}

// textSettings holds the options the text formatter reads.
type textSettings struct {
	Border      string   `option:"border"`
	MaxColWidth int      `option:"max_col_width"`
	WrapWidth   int      `option:"wrap_width"`
	Alignment   []string `option:"alignment"`
}

func (f *textFormatter) prepareTable() error {
	cols, recs, err := tableOf(&f.Base)
	if err != nil {
		return err
	}
	opts := f.Options()
	var set textSettings
	if err := opts.Bind(&set); err != nil {
		return err
	}
	if f.border, err = ParseBorder(set.Border); err != nil {
		return err
	}
	f.bc = borderSets[f.border]
	if showHeaders(&f.Base, cols) {
		f.header = cols
	}
	f.rows = make([][]string, len(recs))
	for i, r := range recs {
		f.rows[i] = r.Strings()
	}

	numCols := colCount(f.header, f.rows)
	f.widths = computeWidths(numCols, f.header, f.rows)
	if limit := set.MaxColWidth; limit > 0 {
		for i := range f.widths {
			if f.widths[i] > limit {
				f.widths[i] = limit
			}
		}
	}
	f.wrap = set.WrapWidth
	f.aligns = extendAligns(parseAlignments(set.Alignment), numCols)

	title := opts.String("title")
	if f.border == BorderNone {
		if title != "" {
			f.Println(title)
		}
		return nil
	}
	if title != "" {
		f.drawHLine(f.bc.topLeft, f.bc.horizontal, f.bc.topRight)
		inner := tableInnerWidth(f.widths) - 2
		f.Printf("%s %s %s\n", f.bc.vertical, alignCell(title, inner, AlignCenter), f.bc.vertical)
		f.drawHLine(f.bc.leftTee, f.bc.topTee, f.bc.rightTee)
		return nil
	}
	f.drawHLine(f.bc.topLeft, f.bc.topTee, f.bc.topRight)
	return nil
}

func (f *textFormatter) buildTableHeader() error {
	if len(f.header) == 0 {
		return nil
	}
	f.writeRow(f.header)
	if f.border == BorderNone {
		f.writePlainSep()
		return nil
	}
	f.drawHLine(f.bc.leftTee, f.bc.cross, f.bc.rightTee)
	return nil
}

func (f *textFormatter) buildTableBody() error {
	for _, row := range f.rows {
		f.writeRow(row)
	}
	return nil
}

func (f *textFormatter) finalizeTable() error {
	if f.border == BorderNone {
		return nil
	}
	f.drawHLine(f.bc.bottomLeft, f.bc.bottomTee, f.bc.bottomRight)
	return nil
}

func colCount(header []string, rows [][]string) int {
	n := len(header)
	for _, row := range rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

func computeWidths(numCols int, header []string, rows [][]string) []int {
	widths := make([]int, numCols)
	for i, h := range header {
		if w := runewidth.StringWidth(h); w > widths[i] {
			widths[i] = w
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); i < numCols && w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func extendAligns(aligns []Alignment, numCols int) []Alignment {
	if len(aligns) >= numCols {
		return aligns[:numCols]
	}
	extended := make([]Alignment, numCols)
	copy(extended, aligns)
	return extended
}

// --- Cell wrapping ---

func wrapCell(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	var lines []string
	for len(s) > 0 {
		line := runewidth.Truncate(s, width, "")
		if runewidth.StringWidth(line) == 0 {
			// Advance at least one rune so wide characters cannot stall.
			line = string([]rune(s)[0])
		}
		lines = append(lines, line)
		s = s[len(line):]
	}
	return lines
}

// wrapRow splits each cell into visual lines. Wrapping applies only to
// columns wider than the wrap width.
func wrapRow(cells []string, widths []int, wrap int) [][]string {
	wrapped := make([][]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if wrap > 0 && wrap < width {
			wrapped[i] = wrapCell(cell, wrap)
		} else {
			wrapped[i] = []string{cell}
		}
	}
	return wrapped
}

func maxLines(wrapped [][]string) int {
	n := 1
	for _, lines := range wrapped {
		if len(lines) > n {
			n = len(lines)
		}
	}
	return n
}

func (f *textFormatter) writeRow(cells []string) {
	wrapped := wrapRow(cells, f.widths, f.wrap)
	for line := range maxLines(wrapped) {
		parts := make([]string, len(f.widths))
		for i, width := range f.widths {
			cell := ""
			if line < len(wrapped[i]) {
				cell = wrapped[i][line]
			}
			parts[i] = formatTableCell(cell, width, f.aligns[i])
		}
		if f.border == BorderNone {
			f.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
			continue
		}
		v := f.bc.vertical
		f.Println(v + " " + strings.Join(parts, " "+v+" ") + " " + v)
	}
}

func (f *textFormatter) writePlainSep() {
	sep := make([]string, len(f.widths))
	for i, width := range f.widths {
		sep[i] = strings.Repeat("-", width)
	}
	f.Println(strings.Join(sep, "  "))
}

// tableInnerWidth returns the total character width between the outer vertical
// borders of a bordered table. Each cell contributes its width plus 2 (one
// space of padding on each side), and cells are separated by a single vertical
// border character.
func tableInnerWidth(widths []int) int {
	n := 0
	for _, w := range widths {
		n += w + 2
	}
	if len(widths) > 1 {
		n += len(widths) - 1
	}
	return n
}

func (f *textFormatter) drawHLine(left, mid, right string) {
	var sb strings.Builder
	sb.WriteString(left)
	for i, width := range f.widths {
		sb.WriteString(strings.Repeat(f.bc.horizontal, width+2))
		if i < len(f.widths)-1 {
			sb.WriteString(mid)
		}
	}
	sb.WriteString(right)
	f.Println(sb.String())
}

func formatTableCell(s string, width int, align Alignment) string {
	if width > 0 && runewidth.StringWidth(s) > width {
		if width <= 3 {
			s = runewidth.Truncate(s, width, "")
		} else {
			s = runewidth.Truncate(s, width, "...")
		}
	}
	return alignCell(s, width, align)
}

func alignCell(s string, width int, align Alignment) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", pad) + s
	case AlignCenter:
		left := pad / 2
		right := pad - left
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
	default:
		return s + strings.Repeat(" ", pad)
	}
}
