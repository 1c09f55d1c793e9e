package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dtkav/casemap/aggregate"
	"github.com/dtkav/casemap/config"
	"github.com/dtkav/casemap/logging"
	"github.com/dtkav/casemap/usecase"
)

// -------------------------
// Model and Global Styles
// -------------------------

// widget is one of the three dashboard charts.
type widget int

const (
	pieWidget widget = iota
	maturityWidget
	countryWidget
	widgetCount
)

func (w widget) String() string {
	switch w {
	case pieWidget:
		return "Sectors"
	case maturityWidget:
		return "Sector × Maturity"
	case countryWidget:
		return "Sector × Country"
	}
	return "?"
}

// model holds the application state.
type model struct {
	// load fetches the full record set; every reload recomputes the dashboard.
	load loader
	// changes fires when the underlying source changed on disk. May be nil.
	changes <-chan struct{}
	opts    aggregate.Options

	records  []aggregate.Record
	dash     aggregate.Dashboard
	loading  bool
	err      error
	loadedAt time.Time

	// widget is the chart with the cursor; cursor is [row, col] inside it.
	widget widget
	cursor [2]int

	// Drill-down library view. Nil query means the charts are shown.
	libraryQuery aggregate.Query
	library      []aggregate.Record

	// Window dimensions.
	winWidth, winHeight int
	// scrollOffset tracks how far the content has been scrolled.
	scrollOffset int

	keys keyMap
	help help.Model
}

type keyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Drill  key.Binding
	Back   key.Binding
	Scroll key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Drill, k.Back, k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Up, k.Down, k.Left, k.Right},
		{k.Drill, k.Back, k.Scroll, k.Reload, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Prev:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "prev chart")),
	Next:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "next chart")),
	Up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
	Down:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
	Left:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
	Right:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
	Drill:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "filter library")),
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Scroll: key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "scroll")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// recordsMsg carries a freshly loaded record set.
type recordsMsg struct {
	records []aggregate.Record
	at      time.Time
}

// errMsg reports a failed load.
type errMsg struct{ err error }

// changedMsg is sent when the watched source changed.
type changedMsg struct{}

// panelStyle is a Lip Gloss style for panels.
var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("250")).
	Padding(1, 2).
	Margin(1)

// activePanelStyle is used for the chart holding the cursor.
var activePanelStyle = lipgloss.NewStyle().
	Border(lipgloss.ThickBorder()).
	BorderForeground(lipgloss.Color("39")).
	Padding(1, 2).
	Margin(1)

// libraryPanelStyle frames the filtered library.
var libraryPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(lipgloss.Color("205")).
	Padding(1, 2).
	Margin(1)

func newModel(load loader, changes <-chan struct{}, opts aggregate.Options) *model {
	return &model{
		load:    load,
		changes: changes,
		opts:    opts,
		loading: true,
		// Defaults for window dimensions; they will be updated on WindowSizeMsg.
		winWidth:  80,
		winHeight: 24,
		keys:      keys,
		help:      help.New(),
	}
}

// -------------------------
// Commands and Init
// -------------------------

// fetchCmd loads the records off the UI goroutine.
func (m *model) fetchCmd() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		records, err := load(ctx)
		if err != nil {
			return errMsg{err}
		}
		return recordsMsg{records: records, at: time.Now()}
	}
}

// waitForChange blocks until the source changes.
func (m *model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// Init starts the first load and, when watching, the change listener.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.waitForChange())
}

// -------------------------
// Update
// -------------------------

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case recordsMsg:
		m.setRecords(msg.records)
		m.loadedAt = msg.at
		m.clampScroll()
		logging.Debug("dashboard recomputed", "records", len(msg.records))
		return m, nil

	case errMsg:
		m.loading = false
		m.err = msg.err
		logging.Warn("load failed", "err", msg.err)
		return m, nil

	case changedMsg:
		m.loading = true
		return m, tea.Batch(m.fetchCmd(), m.waitForChange())

	case tea.WindowSizeMsg:
		m.winWidth = msg.Width
		m.winHeight = msg.Height
		m.help.Width = msg.Width
		m.clampScroll()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.Reload):
			m.loading = true
			return m, m.fetchCmd()

		case key.Matches(msg, m.keys.Back):
			m.closeLibrary()
			m.ensureCursorVisible()
			return m, nil

		// Scroll content with j/k
		case msg.String() == "k":
			m.scrollOffset--
			if m.scrollOffset < 0 {
				m.scrollOffset = 0
			}
			return m, nil

		case msg.String() == "j":
			if m.scrollOffset < m.maxScroll() {
				m.scrollOffset++
			}
			return m, nil
		}

		// Chart navigation only applies while the charts are shown.
		if m.libraryQuery != nil || m.err != nil {
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Prev):
			if m.widget > 0 {
				m.widget--
				m.resetCursor()
			}
		case key.Matches(msg, m.keys.Next):
			if m.widget < widgetCount-1 {
				m.widget++
				m.resetCursor()
			}
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(0, -1)
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(0, 1)
		case key.Matches(msg, m.keys.Left):
			m.moveCursor(-1, 0)
		case key.Matches(msg, m.keys.Right):
			m.moveCursor(1, 0)
		case key.Matches(msg, m.keys.Drill):
			m.drillDown()
		}
		return m, nil

	default:
		return m, nil
	}
}

// setRecords replaces the record set and recomputes everything from scratch.
func (m *model) setRecords(records []aggregate.Record) {
	m.records = records
	m.dash = aggregate.Build(records, m.opts)
	m.loading = false
	m.err = nil
	m.clampCursor()
	if m.libraryQuery != nil {
		m.library = usecase.Filter(m.records, m.libraryQuery, m.opts)
	}
}

// gridSize returns the rows and columns of the active chart.
func (m *model) gridSize() (rows, cols int) {
	switch m.widget {
	case pieWidget:
		return len(m.dash.Sectors.Distribution.Slices), 1
	case maturityWidget:
		mat := m.dash.SectorMaturity.Matrix
		return len(mat.Rows), len(mat.Columns)
	default:
		mat := m.dash.SectorCountry.Matrix
		return len(mat.Rows), len(mat.Columns)
	}
}

func (m *model) resetCursor() {
	m.cursor = [2]int{0, 0}
	m.scrollOffset = 0
	m.ensureCursorVisible()
}

// moveCursor moves by dx columns and dy rows. On the pie, left and right step
// through slices like up and down.
func (m *model) moveCursor(dx, dy int) {
	if m.widget == pieWidget {
		dy += dx
		dx = 0
	}
	m.cursor[0] += dy
	m.cursor[1] += dx
	m.clampCursor()
	m.ensureCursorVisible()
}

func (m *model) clampCursor() {
	rows, cols := m.gridSize()
	m.cursor[0] = clamp(m.cursor[0], 0, rows-1)
	m.cursor[1] = clamp(m.cursor[1], 0, cols-1)
}

// ensureCursorVisible scrolls just enough to show the cursor row.
func (m *model) ensureCursorVisible() {
	if m.libraryQuery != nil || m.err != nil || m.winHeight == 0 {
		return
	}
	_, _, available := m.viewport()
	line := m.cursorLine()
	if line < m.scrollOffset {
		m.scrollOffset = line
	} else if line >= m.scrollOffset+available {
		m.scrollOffset = line - available + 1
	}
	m.clampScroll()
}

// clampScroll keeps scrollOffset within the rendered content.
func (m *model) clampScroll() {
	m.scrollOffset = clamp(m.scrollOffset, 0, m.maxScroll())
}

// selected returns the drill-down query under the cursor.
func (m *model) selected() (aggregate.Query, bool) {
	i, j := m.cursor[0], m.cursor[1]
	switch m.widget {
	case pieWidget:
		return m.dash.Sectors.Select(i)
	case maturityWidget:
		return m.dash.SectorMaturity.Select(i, j)
	default:
		return m.dash.SectorCountry.Select(i, j)
	}
}

// drillDown opens the library filtered by the selection. Zero cells and the
// Other slice do nothing.
func (m *model) drillDown() {
	q, ok := m.selected()
	if !ok {
		return
	}
	m.libraryQuery = q
	m.library = usecase.Filter(m.records, q, m.opts)
	m.scrollOffset = 0
	logging.Info("drill down", "link", q.Link(aggregate.LibraryPath), "matches", len(m.library))
}

func (m *model) closeLibrary() {
	if m.libraryQuery == nil {
		return
	}
	m.libraryQuery = nil
	m.library = nil
	m.scrollOffset = 0
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// -------------------------
// Main
// -------------------------

var (
	configPath string
	verbose    bool
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "casemap",
	Short: "Explore a use-case catalogue as interactive charts",
	Long: `casemap aggregates a list of use cases by sector, country and maturity
level into a sector pie and two heatmaps. It can serve the list over HTTP,
import items into its store, print reports, or run the terminal dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			loaded.Logging.Level = "debug"
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		return logging.Init(logging.Options{Level: cfg.Logging.Level, File: cfg.Logging.File})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "casemap.yaml", "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
