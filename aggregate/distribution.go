package aggregate

import "sort"

// Other is the synthetic category that collects folded long-tail entries.
const Other = "Other"

// Slice is one category of a distribution.
type Slice struct {
	Category string `json:"name"`
	Count    int    `json:"value"`
}

// Distribution is a single-dimension frequency count, largest first.
type Distribution struct {
	Slices []Slice `json:"slices"`
	// Total is the number of token occurrences counted; folding keeps it.
	Total int `json:"total"`
}

// Share returns the fraction of Total held by slice i.
func (d Distribution) Share(i int) float64 {
	if d.Total <= 0 || i < 0 || i >= len(d.Slices) {
		return 0
	}
	return float64(d.Slices[i].Count) / float64(d.Total)
}

// Labelled reports whether slice i is large enough to carry a label.
func (d Distribution) Labelled(i int, minShare float64) bool {
	return d.Share(i) >= minShare
}

// BuildDistribution counts every token of field across records. A record that
// lists a category twice counts twice. Categories are ordered by count, ties by
// first appearance. When topN is positive and exceeded, the tail is folded into
// a trailing Other entry; topN <= 0 keeps everything.
func BuildDistribution(records []Record, field string, topN int) Distribution {
	counts := make(map[string]int)
	var order []string

	for _, r := range records {
		for _, tok := range r.Tokens(field) {
			if _, seen := counts[tok]; !seen {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	slices := make([]Slice, 0, len(order))
	total := 0
	for _, c := range order {
		slices = append(slices, Slice{Category: c, Count: counts[c]})
		total += counts[c]
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Count > slices[j].Count
	})

	return Distribution{Slices: fold(slices, topN), Total: total}
}

// fold keeps the first topN slices and merges the rest into Other.
func fold(slices []Slice, topN int) []Slice {
	if topN <= 0 || len(slices) <= topN {
		return slices
	}
	rest := 0
	for _, s := range slices[topN:] {
		rest += s.Count
	}
	head := make([]Slice, topN, topN+1)
	copy(head, slices[:topN])
	return append(head, Slice{Category: Other, Count: rest})
}
