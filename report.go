package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dtkav/casemap/aggregate"
)

// writeReport renders a dashboard as json, pretty json, csv or plain tables.
func writeReport(w io.Writer, d aggregate.Dashboard, format string) error {
	switch format {
	case "json", "pretty":
		var out []byte
		var err error
		if format == "pretty" {
			out, err = json.MarshalIndent(d, "", "  ")
		} else {
			out, err = json.Marshal(d)
		}
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "csv":
		return writeReportCSV(w, d)
	case "text":
		_, err := io.WriteString(w, reportText(d))
		return err
	default:
		return fmt.Errorf("unknown format %q (valid: json, pretty, csv, text)", format)
	}
}

// writeReportCSV flattens every chart into chart,row,column,count lines.
// Pie slices have an empty column.
func writeReportCSV(w io.Writer, d aggregate.Dashboard) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"chart", "row", "column", "count"})
	for _, s := range d.Sectors.Distribution.Slices {
		cw.Write([]string{"sectors", s.Category, "", strconv.Itoa(s.Count)})
	}
	for _, h := range []struct {
		name string
		m    aggregate.Matrix
	}{
		{"sector_maturity", d.SectorMaturity.Matrix},
		{"sector_country", d.SectorCountry.Matrix},
	} {
		for i, row := range h.m.Rows {
			for j, col := range h.m.Columns {
				cw.Write([]string{h.name, row, col, strconv.Itoa(h.m.Cells[i][j])})
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func reportText(d aggregate.Dashboard) string {
	var b strings.Builder

	pie := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Sector", "Count", "Share")
	for i, s := range d.Sectors.Distribution.Slices {
		pie.Row(s.Category, strconv.Itoa(s.Count), fmt.Sprintf("%.1f%%", d.Sectors.Distribution.Share(i)*100))
	}
	fmt.Fprintf(&b, "%s\n%d use cases, %d sector-tags counted\n%s\n\n",
		d.Sectors.Title, d.Records, d.Sectors.Distribution.Total, pie.String())

	for _, h := range []aggregate.Heatmap{d.SectorMaturity, d.SectorCountry} {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(append([]string{"Sector"}, h.Matrix.Columns...)...)
		for i, row := range h.Matrix.Rows {
			cells := []string{row}
			for _, v := range h.Matrix.Cells[i] {
				cells = append(cells, strconv.Itoa(v))
			}
			t.Row(cells...)
		}
		fmt.Fprintf(&b, "%s (max %d)\n%s\n\n", h.Title, h.Matrix.Max, t.String())
	}
	return b.String()
}
