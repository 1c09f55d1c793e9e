package aggregate

import (
	"slices"
	"sort"
)

// AxisPolicy decides which labels a matrix axis shows, and in what order.
//
// labels holds every observed label in first-seen order; totals holds each
// label's pair count across the whole cross-tab.
type AxisPolicy interface {
	Order(labels []string, totals map[string]int) []string
}

// Alphabetical orders all labels lexically, case-sensitive.
type Alphabetical struct{}

func (Alphabetical) Order(labels []string, _ map[string]int) []string {
	out := slices.Clone(labels)
	sort.Strings(out)
	return out
}

// TopN keeps the N labels with the highest totals, ties by first appearance.
// Labels past N are dropped from the axis, not merged. N <= 0 keeps all labels.
type TopN struct {
	N int
}

func (p TopN) Order(labels []string, totals map[string]int) []string {
	out := slices.Clone(labels)
	sort.SliceStable(out, func(i, j int) bool {
		return totals[out[i]] > totals[out[j]]
	})
	if p.N > 0 && len(out) > p.N {
		out = out[:p.N]
	}
	return out
}

// FixedOrder lists the present Preferred labels first, in the given order,
// followed by any other present label in alphabetical order.
type FixedOrder struct {
	Preferred []string
}

func (p FixedOrder) Order(labels []string, _ map[string]int) []string {
	present := make(map[string]bool, len(labels))
	for _, l := range labels {
		present[l] = true
	}

	out := make([]string, 0, len(labels))
	preferred := make(map[string]bool, len(p.Preferred))
	for _, l := range p.Preferred {
		if present[l] && !preferred[l] {
			out = append(out, l)
		}
		preferred[l] = true
	}

	var extras []string
	for _, l := range labels {
		if !preferred[l] {
			extras = append(extras, l)
		}
	}
	sort.Strings(extras)
	return append(out, extras...)
}

func orDefault(p AxisPolicy) AxisPolicy {
	if p == nil {
		return Alphabetical{}
	}
	return p
}
