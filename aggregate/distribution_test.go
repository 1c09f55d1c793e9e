package aggregate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectors(values ...string) []Record {
	out := make([]Record, len(values))
	for i, v := range values {
		out[i] = Record{"Sectors": v}
	}
	return out
}

func TestBuildDistributionFoldsTail(t *testing.T) {
	d := BuildDistribution(sectors("A", "A", "B"), "Sectors", 1)
	assert.Equal(t, []Slice{{"A", 2}, {Other, 1}}, d.Slices)
	assert.Equal(t, 3, d.Total)
}

func TestBuildDistributionTiesKeepFirstSeen(t *testing.T) {
	d := BuildDistribution(sectors("Water, Energy", "Health", "Energy, Water, Health"), "Sectors", 0)
	assert.Equal(t, []Slice{{"Water", 2}, {"Energy", 2}, {"Health", 2}}, d.Slices)

	again := BuildDistribution(sectors("Water, Energy", "Health", "Energy, Water, Health"), "Sectors", 0)
	assert.Equal(t, d, again)
}

func TestBuildDistributionCountsRepeatsWithinRecord(t *testing.T) {
	d := BuildDistribution(sectors("Health, Health", "Education"), "Sectors", 0)
	assert.Equal(t, []Slice{{"Health", 2}, {"Education", 1}}, d.Slices)
}

func TestBuildDistributionDisabledFolding(t *testing.T) {
	for _, topN := range []int{0, -3, 5} {
		d := BuildDistribution(sectors("A", "B", "C"), "Sectors", topN)
		assert.Len(t, d.Slices, 3, "topN=%d", topN)
	}
}

func TestBuildDistributionOtherAlwaysLast(t *testing.T) {
	// The folded tail outweighs every kept slice but still goes last.
	var values []string
	values = append(values, "Big", "Big", "Big")
	for i := 0; i < 10; i++ {
		values = append(values, fmt.Sprintf("Tail%d, Tail%d", i, i))
	}
	d := BuildDistribution(sectors(values...), "Sectors", 2)
	require.Len(t, d.Slices, 3)
	assert.Equal(t, Slice{"Big", 3}, d.Slices[0])
	assert.Equal(t, Slice{"Tail0", 2}, d.Slices[1])
	assert.Equal(t, Slice{Other, 18}, d.Slices[2])
}

func TestBuildDistributionSumsMatchTokenCount(t *testing.T) {
	records := []Record{
		{"Sectors": "A, B, C"},
		{"Sectors": "B"},
		{"Sectors": ""},
		{"Sectors": 7},
		{},
		{"Sectors": "C, C, , D"},
	}
	tokens := 0
	for _, r := range records {
		tokens += len(r.Tokens("Sectors"))
	}

	unfolded := BuildDistribution(records, "Sectors", 0)
	sum := 0
	for _, s := range unfolded.Slices {
		sum += s.Count
	}
	assert.Equal(t, tokens, sum)
	assert.Equal(t, tokens, unfolded.Total)

	for topN := 1; topN < len(unfolded.Slices); topN++ {
		folded := BuildDistribution(records, "Sectors", topN)
		require.Len(t, folded.Slices, topN+1)
		tail := 0
		for _, s := range unfolded.Slices[topN:] {
			tail += s.Count
		}
		last := folded.Slices[len(folded.Slices)-1]
		assert.Equal(t, Other, last.Category)
		assert.Equal(t, tail, last.Count)
	}
}

func TestDistributionShare(t *testing.T) {
	d := BuildDistribution(sectors("A, A, A", "B"), "Sectors", 0)
	assert.InDelta(t, 0.75, d.Share(0), 1e-9)
	assert.InDelta(t, 0.25, d.Share(1), 1e-9)
	assert.Zero(t, d.Share(5))
	assert.True(t, d.Labelled(1, 0.04))
	assert.False(t, d.Labelled(1, 0.3))

	assert.Zero(t, Distribution{}.Share(0))
}
