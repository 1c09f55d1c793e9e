package usecase

import (
	"testing"

	"github.com/dtkav/casemap/aggregate"
	"github.com/stretchr/testify/assert"
)

func library() []aggregate.Record {
	return []aggregate.Record{
		{"Title": "Crop advisory", "Sectors": "Agriculture, Climate", "Country": "Kenya, Ghana", "MaturityLevel": "Pilot/Testing"},
		{"Title": "Clinic triage", "Sectors": "Health", "Country": "India", "MaturityLevel": " Production/Scale "},
		{"Title": "Flood alerts", "Sectors": "Climate", "Country": "India"},
		{"Title": "Survey bot", "Sectors": "Climate", "Country": "Kenya", "MaturityLevel": "  "},
	}
}

func titles(records []aggregate.Record) []string {
	var out []string
	for _, r := range records {
		out = append(out, Title(r))
	}
	return out
}

func TestFilter(t *testing.T) {
	opts := aggregate.DefaultOptions()
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"pie slice", "Sectors=Climate", []string{"Crop advisory", "Flood alerts", "Survey bot"}},
		{"country cell", "sector=Climate&country=India", []string{"Flood alerts"}},
		{"maturity cell trims", "sector=Health&maturity=Production%2FScale", []string{"Clinic triage"}},
		{"blank maturity is unknown", "sector=Climate&maturity=Unknown", []string{"Survey bot"}},
		{"no match", "sector=Education", nil},
		{"empty query keeps all", "", []string{"Crop advisory", "Clinic triage", "Flood alerts", "Survey bot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(library(), aggregate.ParseQuery(tt.query), opts)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

// Every record behind a non-zero maturity cell is found by that cell's link.
func TestFilterAgreesWithHeatmap(t *testing.T) {
	opts := aggregate.DefaultOptions()
	d := aggregate.Build(library(), opts)
	m := d.SectorMaturity.Matrix
	for i := range m.Rows {
		for j := range m.Columns {
			q, ok := d.SectorMaturity.Select(i, j)
			if !ok {
				continue
			}
			assert.Len(t, Filter(library(), q, opts), m.Cells[i][j], "%s/%s", m.Rows[i], m.Columns[j])
		}
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Item 12", Title(aggregate.Record{"Id": 12.0}))
	assert.Equal(t, "Item abc", Title(aggregate.Record{"Id": "abc", "Title": "  "}))
	assert.Equal(t, "(untitled)", Title(aggregate.Record{}))
}
