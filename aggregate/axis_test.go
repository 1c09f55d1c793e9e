package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlphabeticalIsCaseSensitive(t *testing.T) {
	got := Alphabetical{}.Order([]string{"health", "Education", "Health", "agri"}, nil)
	assert.Equal(t, []string{"Education", "Health", "agri", "health"}, got)
}

func TestAlphabeticalDoesNotMutateInput(t *testing.T) {
	in := []string{"b", "a"}
	Alphabetical{}.Order(in, nil)
	assert.Equal(t, []string{"b", "a"}, in)
}

func TestTopN(t *testing.T) {
	labels := []string{"UK", "USA", "Kenya", "India"}
	totals := map[string]int{"UK": 2, "USA": 5, "Kenya": 2, "India": 1}

	assert.Equal(t, []string{"USA", "UK", "Kenya", "India"}, TopN{}.Order(labels, totals))
	assert.Equal(t, []string{"USA", "UK"}, TopN{N: 2}.Order(labels, totals))
	assert.Equal(t, []string{"USA", "UK", "Kenya", "India"}, TopN{N: -1}.Order(labels, totals))
	assert.Equal(t, []string{"USA", "UK", "Kenya", "India"}, TopN{N: 40}.Order(labels, totals))
}

func TestFixedOrder(t *testing.T) {
	p := FixedOrder{Preferred: DefaultMaturityOrder}

	got := p.Order([]string{"Scaling", "Production/Scale", "Beta", "Conceptual/Research"}, nil)
	assert.Equal(t, []string{"Conceptual/Research", "Production/Scale", "Beta", "Scaling"}, got)

	assert.Empty(t, p.Order(nil, nil))
	assert.Equal(t, []string{"a", "b"}, FixedOrder{}.Order([]string{"b", "a"}, nil))
}

func TestFixedOrderIgnoresDuplicatePreferences(t *testing.T) {
	p := FixedOrder{Preferred: []string{"B", "A", "B"}}
	assert.Equal(t, []string{"B", "A", "C"}, p.Order([]string{"C", "A", "B"}, nil))
}
