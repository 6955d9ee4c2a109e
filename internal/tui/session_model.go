package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/punch/internal/clock"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/parser"
)

// Tracker is the part of the store the session timer drives
type Tracker interface {
	ChangeActivity(ctx context.Context, sessionID uint, activityType models.ActivityType) (*models.ActivityLog, error)
	EndActivity(ctx context.Context, sessionID uint) (*models.ActivityLog, error)
	EndSession(ctx context.Context, sessionID uint) (*models.Session, error)
	CurrentStatistics(ctx context.Context, sessionID uint) (*models.Stats, error)
}

type sessionKeyMap struct {
	Work     key.Binding
	Break    key.Binding
	Lunch    key.Binding
	Bathroom key.Binding
	Meeting  key.Binding
	Idle     key.Binding
	Stop     key.Binding
	Quit     key.Binding
}

func (k sessionKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Work, k.Break, k.Lunch, k.Bathroom, k.Meeting, k.Idle, k.Stop, k.Quit}
}

func (k sessionKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var sessionKeys = sessionKeyMap{
	Work:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "work")),
	Break:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "break")),
	Lunch:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "lunch")),
	Bathroom: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "bathroom")),
	Meeting:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "meeting")),
	Idle:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "pause activity")),
	Stop:     key.NewBinding(key.WithKeys("s", "S"), key.WithHelp("s", "end session")),
	Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "exit (keep session)")),
}

// SessionModel is the live timer for one open session
type SessionModel struct {
	ctx       context.Context
	tracker   Tracker
	clock     clock.Clock
	sessionID uint
	who       string

	width  int
	height int

	stats   *models.Stats
	now     time.Time
	notice  string
	err     error
	busy    bool // a store call is in flight
	shimmer *Shimmer
	help    help.Model

	// Exit state
	ended   *models.Session // set when the session was closed from the timer
	exiting bool            // left without closing the session
}

// timerTickMsg is sent every second to update the clock
type timerTickMsg struct{}

// statsMsg carries fresh statistics after a store call
type statsMsg struct {
	stats  *models.Stats
	notice string
	err    error
}

// sessionEndedMsg reports the outcome of ending the session
type sessionEndedMsg struct {
	session *models.Session
	err     error
}

// NewSessionModel creates the timer for an open session
func NewSessionModel(ctx context.Context, tracker Tracker, clk clock.Clock, sessionID uint, who string) SessionModel {
	return SessionModel{
		ctx:       ctx,
		tracker:   tracker,
		clock:     clk,
		sessionID: sessionID,
		who:       who,
		now:       clk.Now(),
		shimmer:   NewShimmer(DefaultShimmerConfig()),
		help:      help.New(),
	}
}

// Init loads the statistics and starts the tickers
func (m SessionModel) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(""),
		tickAfter(time.Second, timerTickMsg{}),
		m.shimmer.Tick(),
	)
}

// Ended returns the closed session when the user ended it from the timer
func (m SessionModel) Ended() *models.Session {
	return m.ended
}

// Exiting reports whether the user left with the session still open
func (m SessionModel) Exiting() bool {
	return m.exiting
}

// Update handles messages
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		m.now = m.clock.Now()
		if m.ended != nil || m.exiting {
			return m, nil
		}
		return m, tickAfter(time.Second, timerTickMsg{})

	case shimmerTickMsg:
		m.shimmer.Advance()
		if m.ended != nil || m.exiting {
			return m, nil
		}
		return m, m.shimmer.Tick()

	case statsMsg:
		m.busy = false
		m.now = m.clock.Now()
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if m.stats == nil || m.stats.CurrentActivity != msg.stats.CurrentActivity {
			m.shimmer.Reset()
		}
		m.stats = msg.stats
		m.notice = msg.notice
		m.err = nil
		return m, nil

	case sessionEndedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.ended = msg.session
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, sessionKeys.Quit) {
			m.exiting = true
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}

		switch {
		case key.Matches(msg, sessionKeys.Stop):
			m.busy = true
			return m, m.endSession()
		case key.Matches(msg, sessionKeys.Idle):
			if m.stats == nil || m.stats.CurrentActivity == "" {
				m.notice = "No activity is running"
				return m, nil
			}
			m.busy = true
			return m, m.endActivity()
		}

		if t, ok := activityForKey(msg); ok {
			if m.stats != nil && m.stats.CurrentActivity == t {
				m.notice = "Already " + strings.ToLower(t.Label())
				return m, nil
			}
			m.busy = true
			return m, m.changeActivity(t)
		}
	}

	return m, nil
}

// activityForKey maps activity bindings to their type
func activityForKey(msg tea.KeyMsg) (models.ActivityType, bool) {
	switch {
	case key.Matches(msg, sessionKeys.Work):
		return models.ActivityWork, true
	case key.Matches(msg, sessionKeys.Break):
		return models.ActivityBreak, true
	case key.Matches(msg, sessionKeys.Lunch):
		return models.ActivityLunch, true
	case key.Matches(msg, sessionKeys.Bathroom):
		return models.ActivityBathroom, true
	case key.Matches(msg, sessionKeys.Meeting):
		return models.ActivityMeeting, true
	}
	return "", false
}

func (m SessionModel) refresh(notice string) tea.Cmd {
	return func() tea.Msg {
		stats, err := m.tracker.CurrentStatistics(m.ctx, m.sessionID)
		return statsMsg{stats: stats, notice: notice, err: err}
	}
}

func (m SessionModel) changeActivity(t models.ActivityType) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.tracker.ChangeActivity(m.ctx, m.sessionID, t); err != nil {
			return statsMsg{err: err}
		}
		return m.refresh("Switched to " + string(t))()
	}
}

func (m SessionModel) endActivity() tea.Cmd {
	return func() tea.Msg {
		closed, err := m.tracker.EndActivity(m.ctx, m.sessionID)
		if err != nil {
			return statsMsg{err: err}
		}
		return m.refresh(fmt.Sprintf("Paused after %s of %s", parser.FormatSeconds(closed.Duration), closed.ActivityType))()
	}
}

func (m SessionModel) endSession() tea.Cmd {
	return func() tea.Msg {
		session, err := m.tracker.EndSession(m.ctx, m.sessionID)
		return sessionEndedMsg{session: session, err: err}
	}
}

// running returns the seconds spent in the open activity so far
func (m SessionModel) running() int64 {
	if m.stats == nil || m.stats.ActivitySince == nil {
		return 0
	}
	return models.TruncSeconds(m.now.Sub(*m.stats.ActivitySince))
}

// liveTotal is the accumulator of t plus the open activity if it is t
func (m SessionModel) liveTotal(t models.ActivityType) int64 {
	if m.stats == nil {
		return 0
	}
	var total int64
	switch t {
	case models.ActivityWork:
		total = m.stats.TotalWorkTime
	case models.ActivityBreak:
		total = m.stats.TotalBreakTime
	case models.ActivityLunch:
		total = m.stats.TotalLunchTime
	case models.ActivityBathroom:
		total = m.stats.TotalBathroomTime
	case models.ActivityMeeting:
		total = m.stats.TotalMeetingTime
	}
	if m.stats.CurrentActivity == t {
		total += m.running()
	}
	return total
}

// elapsed is the wall-clock time since login
func (m SessionModel) elapsed() int64 {
	if m.stats == nil {
		return 0
	}
	return models.TruncSeconds(m.now.Sub(m.stats.LoginTime))
}

// View renders the timer TUI
func (m SessionModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Width(m.width).
		Align(lipgloss.Center).
		Render(m.help.View(sessionKeys))

	// Available height for content (total minus help bar and gap)
	contentHeight := m.height - 2

	// Narrow view: just the timer panel
	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderTimerPanel(m.width, contentHeight),
			helpBar,
		)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight),
		"  ",
		m.renderTotalsPanel(rightWidth, contentHeight),
	)

	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

// renderTimerPanel renders the current activity and its big clock
func (m SessionModel) renderTimerPanel(width, height int) string {
	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)
	var components []string

	current := models.ActivityType("")
	if m.stats != nil {
		current = m.stats.CurrentActivity
	}

	label := strings.ToUpper(current.Label())
	components = append(components, center.Render(m.shimmer.Render(label, ActivityColor(current), "#FFFFFF")))

	whoStyle := center.Foreground(lipgloss.Color(ColorSecondaryText))
	components = append(components, whoStyle.Render(m.who))

	clockColor := ActivityColor(current)
	for _, line := range strings.Split(renderBigClock(m.running(), clockColor), "\n") {
		components = append(components, center.Render(line))
	}

	if m.stats != nil {
		since := "Logged in at " + m.stats.LoginTime.Local().Format("15:04:05")
		components = append(components, center.
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true).
			Render(since))
	}

	if m.err != nil {
		components = append(components, center.Foreground(lipgloss.Color(ColorError)).Render("Error: "+m.err.Error()))
	} else if m.notice != "" {
		components = append(components, center.Foreground(lipgloss.Color(ColorSuccess)).Render(m.notice))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(components, "\n\n"))
}

// renderTotalsPanel renders the per-activity totals of the session
func (m SessionModel) renderTotalsPanel(width, height int) string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Width(width-12).
		Padding(0, 1)
	b.WriteString(titleStyle.Render("TODAY"))
	b.WriteString("\n\n")

	rowStyle := lipgloss.NewStyle().Width(width - 8).Align(lipgloss.Center)
	for _, t := range models.ActivityTypes() {
		marker := "  "
		if m.stats != nil && m.stats.CurrentActivity == t {
			marker = "▶ "
		}
		name := lipgloss.NewStyle().Foreground(lipgloss.Color(ActivityColor(t))).Width(12).Render(t.Label())
		value := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true).Render(parser.FormatSeconds(m.liveTotal(t)))
		b.WriteString(rowStyle.Render(marker + name + " " + value))
		b.WriteString("\n")
	}

	sep := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder)).Render(strings.Repeat("─", min(width-12, 30)))
	b.WriteString(rowStyle.Render(sep))
	b.WriteString("\n")

	total := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true).Render(parser.FormatSeconds(m.elapsed()))
	b.WriteString(rowStyle.Render("  " + lipgloss.NewStyle().Width(12).Render("Total") + " " + total))

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(b.String())
}

// bigDigits is ASCII art for the clock, five rows per glyph
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// renderBigClock renders seconds as a five-row HH:MM:SS clock
func renderBigClock(seconds int64, color string) string {
	var lines [5]strings.Builder
	for _, r := range parser.FormatSeconds(seconds) {
		glyph, ok := bigDigits[r]
		if !ok {
			continue
		}
		for i := range lines {
			lines[i].WriteString(glyph[i])
			lines[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
	rendered := make([]string, len(lines))
	for i := range lines {
		rendered[i] = style.Render(lines[i].String())
	}
	return strings.Join(rendered, "\n")
}
