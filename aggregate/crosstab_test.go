package aggregate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exampleRecords = []Record{
	{"Sectors": "Health, Education", "Country": "USA"},
	{"Sectors": "Health", "Country": "USA, UK"},
}

func TestCrossProductExample(t *testing.T) {
	m := CrossTab{RowField: "Sectors", ColumnField: "Country", Rule: CrossProduct}.Build(exampleRecords)

	assert.Equal(t, []string{"Education", "Health"}, m.Rows)
	assert.Equal(t, []string{"UK", "USA"}, m.Columns)
	assert.Equal(t, 2, m.At("Health", "USA"))
	assert.Equal(t, 1, m.At("Health", "UK"))
	assert.Equal(t, 1, m.At("Education", "USA"))
	assert.Equal(t, 0, m.At("Education", "UK"))
	assert.Equal(t, 2, m.Max)
}

func TestCrossProductTopNColumns(t *testing.T) {
	m := CrossTab{
		RowField:    "Sectors",
		ColumnField: "Country",
		Rule:        CrossProduct,
		ColumnOrder: TopN{N: 10},
	}.Build(exampleRecords)

	// USA has three pairs, UK one.
	assert.Equal(t, []string{"USA", "UK"}, m.Columns)
	assert.Equal(t, [][]int{{1, 0}, {2, 1}}, m.Cells)
}

func TestCrossProductSumIsPairCount(t *testing.T) {
	records := []Record{
		{"Sectors": "A, B", "Country": "X, Y, Z"},
		{"Sectors": "A, A", "Country": "X"},
		{"Sectors": "B", "Country": ""},
		{"Sectors": "", "Country": "X"},
		{"Sectors": "C", "Country": 12},
	}
	pairs := 0
	for _, r := range records {
		pairs += len(r.Tokens("Sectors")) * len(r.Tokens("Country"))
	}

	m := CrossTab{RowField: "Sectors", ColumnField: "Country"}.Build(records)
	assert.Equal(t, pairs, m.Sum())
	assert.Equal(t, 8, m.Sum())
	assert.Equal(t, 3, m.At("A", "X"))
	// Records that contribute nothing put no labels on the axes.
	assert.Equal(t, []string{"A", "B"}, m.Rows)
}

func TestCrossTabDenseAndUnpruned(t *testing.T) {
	m := CrossTab{RowField: "Sectors", ColumnField: "Country"}.Build([]Record{
		{"Sectors": "A", "Country": "X"},
		{"Sectors": "B", "Country": "Y"},
	})
	require.Len(t, m.Cells, len(m.Rows))
	for _, row := range m.Cells {
		assert.Len(t, row, len(m.Columns))
	}
	assert.Equal(t, [][]int{{1, 0}, {0, 1}}, m.Cells)
}

func TestTopNDropsColumnsAndRecomputesMax(t *testing.T) {
	m := CrossTab{
		RowField:    "Sectors",
		ColumnField: "Country",
		ColumnOrder: TopN{N: 1},
	}.Build([]Record{
		{"Sectors": "A", "Country": "X"},
		{"Sectors": "A, B", "Country": "Y"},
		{"Sectors": "A", "Country": "Y"},
		{"Sectors": "C", "Country": "X"},
		{"Sectors": "C", "Country": "X"},
		{"Sectors": "C", "Country": "X"},
	})
	assert.Equal(t, []string{"X"}, m.Columns)
	// B only appears with the dropped column but stays on the row axis.
	assert.Equal(t, []string{"A", "B", "C"}, m.Rows)
	assert.Equal(t, [][]int{{1}, {0}, {3}}, m.Cells)
	assert.Equal(t, 3, m.Max)
}

func TestSingleValueGate(t *testing.T) {
	records := []Record{
		{"Sectors": "Health, Education", "MaturityLevel": "Pilot/Testing"},
		{"Sectors": "Health", "MaturityLevel": "Production/Scale"},
		{"Sectors": "Health"}, // no maturity: excluded
		{"Sectors": "Energy", "MaturityLevel": ""},
		{"Sectors": "Water", "MaturityLevel": nil},
		{"Sectors": "", "MaturityLevel": "Pilot/Testing"},
	}
	m := CrossTab{
		RowField:    "Sectors",
		ColumnField: "MaturityLevel",
		Rule:        SingleValueGate,
		ColumnOrder: FixedOrder{Preferred: DefaultMaturityOrder},
	}.Build(records)

	assert.Equal(t, []string{"Education", "Health"}, m.Rows)
	assert.Equal(t, []string{"Pilot/Testing", "Production/Scale"}, m.Columns)
	assert.Equal(t, [][]int{{1, 0}, {1, 1}}, m.Cells)
	assert.Equal(t, 3, m.Sum())
}

func TestSingleValueGateDoesNotTokenize(t *testing.T) {
	m := CrossTab{RowField: "Sectors", ColumnField: "MaturityLevel", Rule: SingleValueGate}.Build([]Record{
		{"Sectors": "A", "MaturityLevel": " Pilot, Production "},
	})
	assert.Equal(t, []string{"Pilot, Production"}, m.Columns)
}

// An absent maturity excludes the record before it can reach the Unknown
// column; only a present but blank value lands there.
func TestSingleValueGateUnknownEdgeCase(t *testing.T) {
	ct := CrossTab{
		RowField:    "Sectors",
		ColumnField: "MaturityLevel",
		Rule:        SingleValueGate,
		ColumnOrder: FixedOrder{Preferred: DefaultMaturityOrder},
	}

	absent := ct.Build([]Record{{"Sectors": "A"}, {"Sectors": "B", "MaturityLevel": ""}})
	assert.Empty(t, absent.Columns)
	assert.Empty(t, absent.Rows)
	assert.Zero(t, absent.Sum())

	blank := ct.Build([]Record{
		{"Sectors": "A", "MaturityLevel": "   "},
		{"Sectors": "A", "MaturityLevel": "Pilot/Testing"},
	})
	assert.Equal(t, []string{"Pilot/Testing", "Unknown"}, blank.Columns)
	assert.Equal(t, 1, blank.At("A", "Unknown"))

	custom := ct
	custom.BlankLabel = "n/a"
	assert.Equal(t, []string{"n/a"}, custom.Build([]Record{{"Sectors": "A", "MaturityLevel": "\t"}}).Columns)
}

func TestCrossTabMatchesFromScratch(t *testing.T) {
	ct := CrossTab{RowField: "Sectors", ColumnField: "Country", ColumnOrder: TopN{N: 2}}
	first := ct.Build(exampleRecords)
	second := ct.Build(append([]Record(nil), exampleRecords...))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("rebuild differs (-first +second):\n%s", diff)
	}
}

func TestMatrixAtUnknownLabels(t *testing.T) {
	m := CrossTab{RowField: "Sectors", ColumnField: "Country"}.Build(exampleRecords)
	assert.Zero(t, m.At("Nope", "USA"))
	assert.Zero(t, m.At("Health", "Nope"))
	assert.Zero(t, Matrix{}.Sum())
}

func TestCountingRuleString(t *testing.T) {
	assert.Equal(t, "cross_product", CrossProduct.String())
	assert.Equal(t, "single_value_gate", SingleValueGate.String())
	assert.Equal(t, "unknown", CountingRule(9).String())
}
