package aggregate

import "fmt"

// Options configures the three dashboard widgets.
type Options struct {
	SectorField   string
	CountryField  string
	MaturityField string

	// PieTopN folds sectors past this rank into Other. <= 0 disables folding.
	PieTopN int
	// CountryTopN keeps this many country columns. <= 0 keeps all.
	CountryTopN int
	// MaturityOrder is the preferred maturity column order.
	MaturityOrder []string
	// MinLabelShare hides pie labels for slices smaller than this share.
	MinLabelShare float64

	CountryScale  Scale
	MaturityScale Scale
}

// DefaultMaturityOrder is the canonical maturity column order.
var DefaultMaturityOrder = []string{
	"Conceptual/Research",
	"Pilot/Testing",
	"Production/Scale",
	"Unknown",
}

// DefaultOptions matches the list schema the dashboard was built for.
func DefaultOptions() Options {
	return Options{
		SectorField:   "Sectors",
		CountryField:  "Country",
		MaturityField: "MaturityLevel",
		PieTopN:       10,
		CountryTopN:   10,
		MaturityOrder: append([]string(nil), DefaultMaturityOrder...),
		MinLabelShare: 0.04,
		CountryScale:  CountryScale,
		MaturityScale: MaturityScale,
	}
}

// HeatmapKind tells which drill-down a heatmap produces.
type HeatmapKind int

const (
	SectorCountry HeatmapKind = iota
	SectorMaturity
)

var heatmapKindNames = map[HeatmapKind]string{
	SectorCountry:  "sector_country",
	SectorMaturity: "sector_maturity",
}

func (k HeatmapKind) String() string {
	if name, ok := heatmapKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("HeatmapKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k HeatmapKind) MarshalText() ([]byte, error) {
	name, ok := heatmapKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown heatmap kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a kind name.
func (k *HeatmapKind) UnmarshalText(text []byte) error {
	for kind, name := range heatmapKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown heatmap kind %q", text)
}

// Heatmap is a cross-tab ready for drawing.
type Heatmap struct {
	Title  string      `json:"title"`
	Kind   HeatmapKind `json:"kind"`
	Matrix Matrix      `json:"matrix"`
	Scale  Scale       `json:"scale"`
	// Colors mirrors Matrix.Cells with the fill of each cell.
	Colors [][]RGB `json:"colors"`
}

func newHeatmap(title string, kind HeatmapKind, m Matrix, s Scale) Heatmap {
	h := Heatmap{Title: title, Kind: kind, Matrix: m, Scale: s}
	h.Colors = make([][]RGB, len(m.Cells))
	for i, row := range m.Cells {
		h.Colors[i] = make([]RGB, len(row))
		for j, v := range row {
			h.Colors[i][j] = s.ColorFor(v, m.Max)
		}
	}
	return h
}

// Selection returns the selection for cell (i, j).
func (h Heatmap) Selection(i, j int) Selection {
	if i < 0 || i >= len(h.Matrix.Rows) || j < 0 || j >= len(h.Matrix.Columns) {
		return nil
	}
	row, col, n := h.Matrix.Rows[i], h.Matrix.Columns[j], h.Matrix.Cells[i][j]
	if h.Kind == SectorMaturity {
		return MaturityCell{Sector: row, Maturity: col, Count: n}
	}
	return CountryCell{Sector: row, Country: col, Count: n}
}

// Select builds the drill-down query for cell (i, j).
func (h Heatmap) Select(i, j int) (Query, bool) {
	return BuildQuery(h.Selection(i, j))
}

// Describe is the accessible name of a clickable cell, empty otherwise.
func (h Heatmap) Describe(i, j int) string {
	if _, ok := h.Select(i, j); !ok {
		return ""
	}
	axis := "Country"
	if h.Kind == SectorMaturity {
		axis = "Maturity"
	}
	return fmt.Sprintf("Filter use cases: Sector %s, %s %s", h.Matrix.Rows[i], axis, h.Matrix.Columns[j])
}

// Pie is the sector distribution widget.
type Pie struct {
	Title         string       `json:"title"`
	Distribution  Distribution `json:"distribution"`
	MinLabelShare float64      `json:"minLabelShare"`
}

// Select builds the drill-down query for slice i.
func (p Pie) Select(i int) (Query, bool) {
	if i < 0 || i >= len(p.Distribution.Slices) {
		return nil, false
	}
	s := p.Distribution.Slices[i]
	return BuildQuery(SectorSlice{Sector: s.Category, Count: s.Count})
}

// Dashboard is everything the rendering surface needs.
type Dashboard struct {
	Records        int     `json:"records"`
	Sectors        Pie     `json:"sectors"`
	SectorMaturity Heatmap `json:"sectorMaturity"`
	SectorCountry  Heatmap `json:"sectorCountry"`
}

// Build computes all widgets from scratch.
func Build(records []Record, opts Options) Dashboard {
	opts = opts.normalized()

	maturity := CrossTab{
		RowField:    opts.SectorField,
		ColumnField: opts.MaturityField,
		Rule:        SingleValueGate,
		RowOrder:    Alphabetical{},
		ColumnOrder: FixedOrder{Preferred: opts.MaturityOrder},
	}.Build(records)

	country := CrossTab{
		RowField:    opts.SectorField,
		ColumnField: opts.CountryField,
		Rule:        CrossProduct,
		RowOrder:    Alphabetical{},
		ColumnOrder: TopN{N: opts.CountryTopN},
	}.Build(records)

	return Dashboard{
		Records: len(records),
		Sectors: Pie{
			Title:         "Distribution of Use Cases by Sector",
			Distribution:  BuildDistribution(records, opts.SectorField, opts.PieTopN),
			MinLabelShare: opts.MinLabelShare,
		},
		SectorMaturity: newHeatmap("Heatmap: Use Cases by Sector and Maturity Level", SectorMaturity, maturity, opts.MaturityScale),
		SectorCountry:  newHeatmap("Heatmap: Sector Priorities for Top Countries", SectorCountry, country, opts.CountryScale),
	}
}

// normalized clamps invalid settings to their "no limit" meaning.
func (o Options) normalized() Options {
	if o.PieTopN < 0 {
		o.PieTopN = 0
	}
	if o.CountryTopN < 0 {
		o.CountryTopN = 0
	}
	if o.MinLabelShare < 0 {
		o.MinLabelShare = 0
	}
	return o
}
