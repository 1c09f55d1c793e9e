package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dtkav/casemap/aggregate"
	"github.com/dtkav/casemap/usecase"
)

// piePalette cycles over the sector slices.
var piePalette = []string{
	"#9ecae1", "#fdae6b", "#a1d99b", "#fc9272",
	"#bcbddc", "#c7e9c0", "#fdd0a2", "#c6dbef",
	"#d9d9d9", "#bdbdbd", "#ccebc5", "#f2b6cf",
}

const (
	labelWidth = 22
	cellWidth  = 9
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Bold(true).Underline(true).Reverse(true)
)

// -------------------------
// Rendering Functions
// -------------------------

// renderHeader shows the catalogue size, the active chart and the selection.
func (m model) renderHeader() string {
	header := fmt.Sprintf("Use cases: %d | Sector tags: %d | Chart: %s",
		m.dash.Records, m.dash.Sectors.Distribution.Total, m.widget)

	if m.libraryQuery != nil {
		header += " | Library: " + m.libraryQuery.Link(aggregate.LibraryPath)
	} else if q, ok := m.selected(); ok {
		header += " | Selected: " + q.Encode()
	}
	if !m.loadedAt.IsZero() {
		header += " | Loaded " + m.loadedAt.Format("15:04:05")
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color("4")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Render(header)
}

// truncate shortens s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

// renderPie draws the sector distribution as horizontal bars. Labels below
// the minimum share show no percentage, like the pie they stand in for.
func (m model) renderPie(active bool) string {
	p := m.dash.Sectors
	d := p.Distribution
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d sector-tags counted", d.Total)) + "\n\n")

	if len(d.Slices) == 0 {
		b.WriteString("No sector data.")
		return b.String()
	}

	maxCount := d.Slices[0].Count
	for _, s := range d.Slices {
		maxCount = max(maxCount, s.Count)
	}
	barWidth := max(10, m.winWidth/3)

	for i, s := range d.Slices {
		barLength := max(1, int(float64(s.Count)/float64(maxCount)*float64(barWidth)))
		bar := lipgloss.NewStyle().
			Foreground(lipgloss.Color(piePalette[i%len(piePalette)])).
			Render(strings.Repeat("█", barLength))

		pct := ""
		if d.Labelled(i, p.MinLabelShare) {
			pct = fmt.Sprintf("%3.0f%%", d.Share(i)*100)
		}

		label := fmt.Sprintf("%-*s", labelWidth, truncate(s.Category, labelWidth))
		if s.Category == aggregate.Other {
			label = dimStyle.Render(label)
		}
		if active && i == m.cursor[0] {
			label = cursorStyle.Render(label)
		}
		b.WriteString(fmt.Sprintf("%s %5d %4s %s\n", label, s.Count, pct, bar))
	}
	return b.String()
}

// renderHeatmap draws a matrix with each cell filled from the scale.
func (m model) renderHeatmap(h aggregate.Heatmap, active bool) string {
	mat := h.Matrix
	var b strings.Builder
	b.WriteString(titleStyle.Render(h.Title) + "\n\n")

	if len(mat.Rows) == 0 || len(mat.Columns) == 0 {
		b.WriteString("No data.")
		return b.String()
	}

	b.WriteString(strings.Repeat(" ", labelWidth+1))
	for _, col := range mat.Columns {
		b.WriteString(fmt.Sprintf("%-*s ", cellWidth, truncate(col, cellWidth)))
	}
	b.WriteString("\n")

	for i, row := range mat.Rows {
		b.WriteString(fmt.Sprintf("%-*s ", labelWidth, truncate(row, labelWidth)))
		for j, v := range mat.Cells[i] {
			style := lipgloss.NewStyle().
				Background(lipgloss.Color(h.Colors[i][j].Hex())).
				Foreground(lipgloss.Color(aggregate.LabelColor(v, mat.Max).Hex())).
				Width(cellWidth).
				Align(lipgloss.Center)
			text := fmt.Sprintf("%d", v)
			if active && i == m.cursor[0] && j == m.cursor[1] {
				style = style.Bold(true).Underline(true)
				text = "[" + text + "]"
			}
			b.WriteString(style.Render(text) + " ")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + renderColorBar(h.Scale, mat.Max))
	if active {
		if desc := h.Describe(m.cursor[0], m.cursor[1]); desc != "" {
			b.WriteString("\n" + dimStyle.Render(desc))
		}
	}
	return b.String()
}

// renderColorBar is the legend from ColorFor(0, max) to ColorFor(max, max).
func renderColorBar(s aggregate.Scale, maxValue int) string {
	var b strings.Builder
	b.WriteString("0 ")
	for _, c := range s.Gradient(16) {
		b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render(" "))
	}
	b.WriteString(fmt.Sprintf(" %d", maxValue))
	return b.String()
}

// renderPanels renders the three charts framed, the active one highlighted.
func (m model) renderPanels() []string {
	panels := []string{
		m.renderPie(m.widget == pieWidget),
		m.renderHeatmap(m.dash.SectorMaturity, m.widget == maturityWidget),
		m.renderHeatmap(m.dash.SectorCountry, m.widget == countryWidget),
	}
	for i, p := range panels {
		if widget(i) == m.widget {
			panels[i] = activePanelStyle.Render(p)
		} else {
			panels[i] = panelStyle.Render(p)
		}
	}
	return panels
}

// sideBySide reports whether the pie and the maturity heatmap share a row.
func (m model) sideBySide(panels []string) bool {
	return lipgloss.Width(panels[0])+lipgloss.Width(panels[1]) <= m.winWidth
}

// renderCharts lays the three charts out, highlighting the active one.
func (m model) renderCharts() string {
	panels := m.renderPanels()
	if m.sideBySide(panels) {
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, panels[0], panels[1]),
			panels[2])
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

// Lines above the first chart row: margin, border and padding of the panel,
// then the chart's title block.
const (
	panelChrome  = 3
	chartHeading = 3
)

// cursorLine is the content line of the cursor row in the active chart.
func (m model) cursorLine() int {
	panels := m.renderPanels()
	top := 0
	switch {
	case m.sideBySide(panels):
		if m.widget == countryWidget {
			top = max(lipgloss.Height(panels[0]), lipgloss.Height(panels[1]))
		}
	default:
		for i := 0; i < int(m.widget); i++ {
			top += lipgloss.Height(panels[i])
		}
	}
	return top + panelChrome + chartHeading + m.cursor[0]
}

// renderLibrary lists the items matching the drill-down query.
func (m model) renderLibrary() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d use cases for %s", len(m.library), describeQuery(m.libraryQuery))))
	b.WriteString("\n\n")
	if len(m.library) == 0 {
		b.WriteString("No matching use cases.")
	}
	for _, r := range m.library {
		b.WriteString("• " + usecase.Title(r) + "\n")
		var facts []string
		for _, f := range []string{m.opts.SectorField, m.opts.CountryField, m.opts.MaturityField} {
			if v, ok := r.Text(f); ok && strings.TrimSpace(v) != "" {
				facts = append(facts, f+": "+strings.TrimSpace(v))
			}
		}
		if len(facts) > 0 {
			b.WriteString("  " + dimStyle.Render(strings.Join(facts, " | ")) + "\n")
		}
	}
	return libraryPanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func describeQuery(q aggregate.Query) string {
	parts := make([]string, 0, len(q))
	for _, p := range q {
		parts = append(parts, p.Key+"="+p.Value)
	}
	return strings.Join(parts, ", ")
}

// content is the scrollable part of the UI.
func (m model) content() string {
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).
			Render("Error: "+m.err.Error()) + "\n\npress r to retry"
	case m.loading && m.records == nil:
		return "Loading use cases…"
	case m.libraryQuery != nil:
		return m.renderLibrary()
	default:
		return m.renderCharts()
	}
}

// viewport splits the UI into the fixed header part and the content lines,
// with the number of lines left for content.
func (m model) viewport() (staticPart string, contentLines []string, availableHeight int) {
	staticPart = m.renderHeader() + "\n\n" + m.help.View(m.keys) + "\n\n"
	contentLines = strings.Split(m.content(), "\n")
	availableHeight = max(1, m.winHeight-lipgloss.Height(staticPart))
	return staticPart, contentLines, availableHeight
}

// maxScroll is the largest offset that still fills the screen.
func (m model) maxScroll() int {
	_, lines, available := m.viewport()
	return max(0, len(lines)-available)
}

// View renders the complete UI, including scrolling the content.
func (m model) View() string {
	// Apply scrolling only to the content portion.
	staticPart, contentLines, availableHeight := m.viewport()
	if m.winHeight == 0 {
		return staticPart + strings.Join(contentLines, "\n")
	}

	maxScroll := max(0, len(contentLines)-availableHeight)
	if m.scrollOffset > maxScroll {
		m.scrollOffset = maxScroll
	}
	visibleContent := strings.Join(contentLines[m.scrollOffset:min(m.scrollOffset+availableHeight, len(contentLines))], "\n")

	return staticPart + visibleContent
}
