package aggregate

import "strings"

// CountingRule governs how a record contributes to cross-tab cells.
type CountingRule int

const (
	// CrossProduct pairs every row token with every column token of a record.
	CrossProduct CountingRule = iota
	// SingleValueGate reads the column as one optional value. Records without
	// it are left out of the cross-tab entirely.
	SingleValueGate
)

func (r CountingRule) String() string {
	switch r {
	case CrossProduct:
		return "cross_product"
	case SingleValueGate:
		return "single_value_gate"
	default:
		return "unknown"
	}
}

// DefaultBlankLabel names a gate value that is present but blank once trimmed.
const DefaultBlankLabel = "Unknown"

// Matrix is a dense, labelled count grid. Cells[i][j] addresses (Rows[i], Columns[j]).
type Matrix struct {
	Rows    []string `json:"rows"`
	Columns []string `json:"columns"`
	Cells   [][]int  `json:"cells"`
	Max     int      `json:"max"`
}

// At returns the count for (row, col), zero when either label is not on an axis.
func (m Matrix) At(row, col string) int {
	i, j := indexOf(m.Rows, row), indexOf(m.Columns, col)
	if i < 0 || j < 0 {
		return 0
	}
	return m.Cells[i][j]
}

// Sum adds up every cell.
func (m Matrix) Sum() int {
	total := 0
	for _, row := range m.Cells {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// CrossTab configures a two-dimensional count.
type CrossTab struct {
	RowField    string
	ColumnField string
	Rule        CountingRule
	RowOrder    AxisPolicy // nil means Alphabetical
	ColumnOrder AxisPolicy // nil means Alphabetical
	// BlankLabel replaces a whitespace-only gate value. Defaults to "Unknown".
	BlankLabel string
}

type cell struct{ row, col string }

// tally accumulates pair counts and first-seen label order.
type tally struct {
	cells     map[cell]int
	rows      []string
	cols      []string
	rowTotals map[string]int
	colTotals map[string]int
}

func newTally() *tally {
	return &tally{
		cells:     make(map[cell]int),
		rowTotals: make(map[string]int),
		colTotals: make(map[string]int),
	}
}

func (t *tally) add(row, col string) {
	if _, ok := t.rowTotals[row]; !ok {
		t.rows = append(t.rows, row)
	}
	if _, ok := t.colTotals[col]; !ok {
		t.cols = append(t.cols, col)
	}
	t.cells[cell{row, col}]++
	t.rowTotals[row]++
	t.colTotals[col]++
}

// Build counts records into a matrix. Only records that contribute at least
// one pair put labels on the axes; labels kept by the axis policies stay on
// the axes even when their cells are all zero.
func (ct CrossTab) Build(records []Record) Matrix {
	t := newTally()
	for _, r := range records {
		rows := r.Tokens(ct.RowField)
		if len(rows) == 0 {
			continue
		}
		cols := ct.columns(r)
		if len(cols) == 0 {
			continue
		}
		for _, row := range rows {
			for _, col := range cols {
				t.add(row, col)
			}
		}
	}

	m := Matrix{
		Rows:    orDefault(ct.RowOrder).Order(t.rows, t.rowTotals),
		Columns: orDefault(ct.ColumnOrder).Order(t.cols, t.colTotals),
	}
	m.Cells = make([][]int, len(m.Rows))
	for i, row := range m.Rows {
		m.Cells[i] = make([]int, len(m.Columns))
		for j, col := range m.Columns {
			v := t.cells[cell{row, col}]
			m.Cells[i][j] = v
			if v > m.Max {
				m.Max = v
			}
		}
	}
	return m
}

// columns returns the column labels a record contributes under the rule.
func (ct CrossTab) columns(r Record) []string {
	if ct.Rule != SingleValueGate {
		return r.Tokens(ct.ColumnField)
	}
	raw, ok := r.Text(ct.ColumnField)
	if !ok || raw == "" {
		return nil
	}
	label := strings.TrimSpace(raw)
	if label == "" {
		label = ct.BlankLabel
		if label == "" {
			label = DefaultBlankLabel
		}
	}
	return []string{label}
}

func indexOf(labels []string, want string) int {
	for i, l := range labels {
		if l == want {
			return i
		}
	}
	return -1
}
