package aggregate

import (
	"net/url"
	"strings"
)

// Query parameter keys. Each widget has its own key set so the library view
// can tell which chart a navigation came from.
const (
	KeySectors  = "Sectors"
	KeySector   = "sector"
	KeyCountry  = "country"
	KeyMaturity = "maturity"
)

// LibraryPath is where drill-down navigation lands.
const LibraryPath = "/library"

// Param is one key/value pair of a drill-down query.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Query is an ordered list of filter parameters.
type Query []Param

// Get returns the value of the first parameter named key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Encode renders the query string in parameter order.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Link joins path and the encoded query.
func (q Query) Link(path string) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// Selection is something the user clicked: a pie slice or a heatmap cell.
type Selection interface {
	query() (Query, bool)
}

// SectorSlice is a slice of the sector pie.
type SectorSlice struct {
	Sector string
	Count  int
}

func (s SectorSlice) query() (Query, bool) {
	if s.Sector == "" || s.Sector == Other || s.Count <= 0 {
		return nil, false
	}
	return Query{{KeySectors, s.Sector}}, true
}

// CountryCell is a cell of the sector×country heatmap.
type CountryCell struct {
	Sector  string
	Country string
	Count   int
}

func (c CountryCell) query() (Query, bool) {
	if c.Sector == "" || c.Country == "" || c.Count <= 0 {
		return nil, false
	}
	return Query{{KeySector, c.Sector}, {KeyCountry, c.Country}}, true
}

// MaturityCell is a cell of the sector×maturity heatmap.
type MaturityCell struct {
	Sector   string
	Maturity string
	Count    int
}

func (c MaturityCell) query() (Query, bool) {
	if c.Sector == "" || c.Maturity == "" || c.Count <= 0 {
		return nil, false
	}
	return Query{{KeySector, c.Sector}, {KeyMaturity, c.Maturity}}, true
}

// BuildQuery maps a selection to its drill-down query. Zero-count cells and
// the Other slice are not navigable and report ok=false.
func BuildQuery(sel Selection) (Query, bool) {
	if sel == nil {
		return nil, false
	}
	return sel.query()
}

// ParseQuery reads drill-down parameters back from a raw query string, keeping
// their order. Unknown keys are ignored.
func ParseQuery(raw string) Query {
	var q Query
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		switch key {
		case KeySectors, KeySector, KeyCountry, KeyMaturity:
			q = append(q, Param{Key: key, Value: val})
		}
	}
	return q
}
