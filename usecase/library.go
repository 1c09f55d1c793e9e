package usecase

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dtkav/casemap/aggregate"
)

// Filter returns the records matching every parameter of q, in input order.
// Sector and country parameters match any token of the field; maturity
// matches the trimmed value, with a blank value reading as Unknown so the
// library agrees with the maturity heatmap.
func Filter(records []aggregate.Record, q aggregate.Query, opts aggregate.Options) []aggregate.Record {
	var out []aggregate.Record
	for _, r := range records {
		if matches(r, q, opts) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r aggregate.Record, q aggregate.Query, opts aggregate.Options) bool {
	for _, p := range q {
		var ok bool
		switch p.Key {
		case aggregate.KeySectors, aggregate.KeySector:
			ok = slices.Contains(r.Tokens(opts.SectorField), p.Value)
		case aggregate.KeyCountry:
			ok = slices.Contains(r.Tokens(opts.CountryField), p.Value)
		case aggregate.KeyMaturity:
			ok = maturity(r, opts.MaturityField) == p.Value
		default:
			ok = true
		}
		if !ok {
			return false
		}
	}
	return true
}

func maturity(r aggregate.Record, field string) string {
	raw, ok := r.Text(field)
	if !ok || raw == "" {
		return ""
	}
	if v := strings.TrimSpace(raw); v != "" {
		return v
	}
	return aggregate.DefaultBlankLabel
}

// Title is the display name of an item.
func Title(r aggregate.Record) string {
	if t, ok := r.Text("Title"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	switch id := r["Id"].(type) {
	case float64:
		return "Item " + strconv.FormatFloat(id, 'f', -1, 64)
	case string:
		return "Item " + id
	}
	return "(untitled)"
}
