package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/balkashynov/punch/internal/clock"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/parser"
)

// SessionLister is the part of the store the monitor polls
type SessionLister interface {
	ListActiveSessions(ctx context.Context, userID *uint) ([]models.SessionView, error)
}

type monitorKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Search  key.Binding
	Quit    key.Binding
}

func (k monitorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Refresh, k.Search, k.Quit}
}

func (k monitorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var monitorKeys = monitorKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// MonitorModel shows every open session and re-polls on an interval
type MonitorModel struct {
	ctx      context.Context
	lister   SessionLister
	clock    clock.Clock
	userID   *uint
	interval time.Duration

	width  int
	height int

	views       []models.SessionView
	visible     []models.SessionView // views after the filter
	table       table.Model
	help        help.Model
	lastRefresh time.Time
	err         error

	// Only results and ticks of the current generation schedule the next
	// poll. A manual refresh starts a new generation.
	gen int

	// Filter state
	searchActive bool
	searchQuery  string
}

// sessionsMsg carries a poll result
type sessionsMsg struct {
	views []models.SessionView
	err   error
	at    time.Time
	gen   int
}

// pollMsg asks for the next poll
type pollMsg struct {
	gen int
}

var monitorColumns = []table.Column{
	{Title: "User", Width: 14},
	{Title: "Name", Width: 20},
	{Title: "Activity", Width: 13},
	{Title: "Login", Width: 7},
	{Title: "Work", Width: 9},
	{Title: "Break", Width: 9},
	{Title: "Lunch", Width: 9},
	{Title: "Bathroom", Width: 9},
	{Title: "Meeting", Width: 9},
}

// NewMonitorModel creates the admin monitor. userID restricts it to one
// user when non-nil.
func NewMonitorModel(ctx context.Context, lister SessionLister, clk clock.Clock, userID *uint, interval time.Duration) MonitorModel {
	t := table.New(
		table.WithColumns(monitorColumns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		BorderBottom(true).
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorAccentMain)).
		Bold(false)
	t.SetStyles(styles)

	return MonitorModel{
		ctx:      ctx,
		lister:   lister,
		clock:    clk,
		userID:   userID,
		interval: interval,
		table:    t,
		help:     help.New(),
	}
}

// Init starts the first poll
func (m MonitorModel) Init() tea.Cmd {
	return m.poll()
}

func (m MonitorModel) poll() tea.Cmd {
	gen := m.gen
	return func() tea.Msg {
		views, err := m.lister.ListActiveSessions(m.ctx, m.userID)
		return sessionsMsg{views: views, err: err, at: m.clock.Now(), gen: gen}
	}
}

// Update handles messages
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsMsg:
		m.lastRefresh = msg.at
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.views = msg.views
			m.applyFilter()
		}
		if msg.gen != m.gen {
			return m, nil
		}
		return m, tickAfter(m.interval, pollMsg{gen: m.gen})

	case pollMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m, m.poll()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// header(2) + details(8) + help(1) + margins(3)
		rows := m.height - 14
		if rows < 3 {
			rows = 3
		}
		m.table.SetHeight(rows)
		return m, nil

	case tea.KeyMsg:
		if m.searchActive {
			return m.handleSearchKeys(msg)
		}

		switch {
		case key.Matches(msg, monitorKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, monitorKeys.Refresh):
			m.gen++
			return m, m.poll()
		case key.Matches(msg, monitorKeys.Search):
			m.searchActive = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleSearchKeys edits the filter query
func (m MonitorModel) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchActive = false
		m.searchQuery = ""
	case tea.KeyEnter:
		m.searchActive = false
	case tea.KeyBackspace:
		if len(m.searchQuery) > 0 {
			r := []rune(m.searchQuery)
			m.searchQuery = string(r[:len(r)-1])
		}
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyRunes, tea.KeySpace:
		m.searchQuery += string(msg.Runes)
	}
	m.applyFilter()
	return m, nil
}

// applyFilter rebuilds the visible rows from the last poll
func (m *MonitorModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.searchQuery))

	m.visible = nil
	for _, v := range m.views {
		if query == "" ||
			strings.Contains(strings.ToLower(v.Username), query) ||
			strings.Contains(strings.ToLower(v.FullName), query) {
			m.visible = append(m.visible, v)
		}
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, v := range m.visible {
		rows = append(rows, table.Row{
			v.Username,
			v.FullName,
			v.CurrentActivity.Label(),
			v.LoginTime.Local().Format("15:04"),
			parser.FormatSeconds(v.TotalWorkTime),
			parser.FormatSeconds(v.TotalBreakTime),
			parser.FormatSeconds(v.TotalLunchTime),
			parser.FormatSeconds(v.TotalBathroomTime),
			parser.FormatSeconds(v.TotalMeetingTime),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// selected returns the session under the cursor
func (m MonitorModel) selected() *models.SessionView {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return nil
	}
	return &m.visible[i]
}

// View renders the monitor
func (m MonitorModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
	header := headerStyle.Render(fmt.Sprintf("Active sessions: %d", len(m.visible)))
	if !m.lastRefresh.IsZero() {
		header += lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Render(fmt.Sprintf("  · refreshed %s · every %s", m.lastRefresh.Local().Format("15:04:05"), m.interval))
	}
	if m.err != nil {
		header += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("Error: "+m.err.Error())
	}

	var body string
	if len(m.visible) == 0 {
		body = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Render("No open sessions")
	} else {
		body = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Render(m.table.View())
	}

	var bottom string
	if m.searchActive || m.searchQuery != "" {
		bottom = m.renderSearchBar()
	} else {
		bottom = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText)).
			Width(m.width).
			Align(lipgloss.Center).
			Render(m.help.View(monitorKeys))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"",
		body,
		m.renderDetails(),
		bottom,
	)
}

// renderDetails describes the selected session
func (m MonitorModel) renderDetails() string {
	v := m.selected()
	if v == nil {
		return ""
	}

	now := m.clock.Now()
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Width(14)
	value := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true)
	activity := lipgloss.NewStyle().Foreground(lipgloss.Color(ActivityColor(v.CurrentActivity))).Bold(true)

	lines := []string{
		label.Render("Employee") + value.Render(fmt.Sprintf("%s (%s)", v.FullName, v.Username)),
		label.Render("Doing") + activity.Render(v.CurrentActivity.Label()),
		label.Render("Logged in") + value.Render(humanize.RelTime(v.LoginTime, now, "ago", "from now")),
		label.Render("Session") + value.Render(fmt.Sprintf("#%d on %s", v.SessionID, v.Date)),
	}

	return lipgloss.NewStyle().
		Padding(1, 1, 0, 1).
		Render(strings.Join(lines, "\n"))
}

// renderSearchBar renders the filter prompt
func (m MonitorModel) renderSearchBar() string {
	cursor := ""
	if m.searchActive {
		cursor = "█"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Width(m.width - 2).
		Render("Filter: " + m.searchQuery + cursor)
}
