package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/parser"
)

// UserCreator is the part of the store the user form writes to
type UserCreator interface {
	AddUser(ctx context.Context, req db.NewUser) (uint, error)
}

// Step represents the current step in the wizard
type Step int

const (
	StepUsername Step = iota
	StepFullName
	StepRole
	StepPassword
	StepConfirm
	StepSave
)

var stepLabels = []string{"Username", "Full name", "Role", "Password", "Confirm password", "Save"}

// UserFormModel is a step-by-step wizard that creates a user
type UserFormModel struct {
	ctx     context.Context
	creator UserCreator

	currentStep Step
	inputs      []textinput.Model
	width       int
	height      int

	// State
	err           error
	validationErr string
	saving        bool
	completed     bool
	cancelled     bool
	createdID     uint
}

// userCreatedMsg reports the outcome of AddUser
type userCreatedMsg struct {
	id  uint
	err error
}

// NewUserFormModel creates the wizard; prefilled may carry username,
// full_name and role taken from flags
func NewUserFormModel(ctx context.Context, creator UserCreator, prefilled map[string]string) UserFormModel {
	inputs := make([]textinput.Model, StepSave)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 40
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		inputs[i].Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	}

	inputs[StepUsername].Placeholder = "login name (required)"
	inputs[StepUsername].CharLimit = 64
	inputs[StepFullName].Placeholder = "shown on reports (required)"
	inputs[StepFullName].CharLimit = 128
	inputs[StepRole].Placeholder = "employee or admin"
	inputs[StepRole].CharLimit = 16
	for _, s := range []Step{StepPassword, StepConfirm} {
		inputs[s].EchoMode = textinput.EchoPassword
		inputs[s].EchoCharacter = '•'
		inputs[s].CharLimit = 72 // bcrypt ignores anything longer
	}
	inputs[StepPassword].Placeholder = "password (required)"
	inputs[StepConfirm].Placeholder = "type it again"

	inputs[StepUsername].SetValue(prefilled["username"])
	inputs[StepFullName].SetValue(prefilled["full_name"])
	if role, ok := prefilled["role"]; ok {
		inputs[StepRole].SetValue(role)
	} else {
		inputs[StepRole].SetValue("employee")
	}
	inputs[StepUsername].Focus()

	return UserFormModel{
		ctx:         ctx,
		creator:     creator,
		currentStep: StepUsername,
		inputs:      inputs,
	}
}

// Init initializes the model
func (m UserFormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Completed returns the new user's ID once saved
func (m UserFormModel) Completed() (uint, bool) {
	return m.createdID, m.completed
}

// Cancelled reports whether the user left without saving
func (m UserFormModel) Cancelled() bool {
	return m.cancelled
}

// Update handles messages
func (m UserFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case userCreatedMsg:
		m.saving = false
		if msg.err != nil {
			m.validationErr = msg.err.Error()
			m.err = msg.err
			return m.goTo(StepUsername)
		}
		m.completed = true
		m.createdID = msg.id
		return m, tea.Quit

	case tea.KeyMsg:
		if m.saving {
			if msg.Type == tea.KeyCtrlC {
				m.cancelled = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleEnter()
		case tea.KeyTab, tea.KeyDown:
			if err := m.validateStep(m.currentStep); err != "" {
				m.validationErr = err
				return m, nil
			}
			return m.goTo(m.currentStep + 1)
		case tea.KeyShiftTab, tea.KeyUp:
			return m.goTo(m.currentStep - 1)
		}
	}

	var cmd tea.Cmd
	if m.currentStep < StepSave {
		m.inputs[m.currentStep], cmd = m.inputs[m.currentStep].Update(msg)
	}
	return m, cmd
}

// handleEnter validates the current step and moves on, saving at the end
func (m UserFormModel) handleEnter() (tea.Model, tea.Cmd) {
	m.validationErr = ""

	if m.currentStep == StepSave {
		for s := StepUsername; s < StepSave; s++ {
			if err := m.validateStep(s); err != "" {
				m.validationErr = err
				return m.goTo(s)
			}
		}
		m.saving = true
		return m, m.save()
	}

	if err := m.validateStep(m.currentStep); err != "" {
		m.validationErr = err
		return m, nil
	}
	return m.goTo(m.currentStep + 1)
}

// validateStep returns a message when step holds an unusable value
func (m UserFormModel) validateStep(step Step) string {
	value := strings.TrimSpace(m.value(step))
	switch step {
	case StepUsername:
		if value == "" {
			return "Username is required"
		}
		if strings.ContainsAny(value, " \t") {
			return "Username cannot contain spaces"
		}
	case StepFullName:
		if value == "" {
			return "Full name is required"
		}
	case StepRole:
		if _, err := parser.ParseRole(value); err != nil {
			return err.Error()
		}
	case StepPassword:
		if m.value(StepPassword) == "" {
			return "Password is required"
		}
	case StepConfirm:
		if m.value(StepConfirm) != m.value(StepPassword) {
			return "Passwords do not match"
		}
	}
	return ""
}

func (m UserFormModel) value(step Step) string {
	if step < 0 || step >= StepSave {
		return ""
	}
	return m.inputs[step].Value()
}

// goTo moves focus to step, clamped to the wizard
func (m UserFormModel) goTo(step Step) (UserFormModel, tea.Cmd) {
	if step < StepUsername {
		step = StepUsername
	}
	if step > StepSave {
		step = StepSave
	}
	if m.currentStep < StepSave {
		m.inputs[m.currentStep].Blur()
	}
	m.currentStep = step
	if step < StepSave {
		m.inputs[step].Focus()
	}
	return m, textinput.Blink
}

// save creates the user in the store
func (m UserFormModel) save() tea.Cmd {
	role, _ := parser.ParseRole(m.value(StepRole))
	req := db.NewUser{
		Username: strings.TrimSpace(m.value(StepUsername)),
		FullName: strings.TrimSpace(m.value(StepFullName)),
		Role:     role,
		Password: m.value(StepPassword),
	}
	return func() tea.Msg {
		id, err := m.creator.AddUser(m.ctx, req)
		return userCreatedMsg{id: id, err: err}
	}
}

// View renders the wizard
func (m UserFormModel) View() string {
	if m.cancelled || m.completed {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright))
	b.WriteString(titleStyle.Render("👤 New user"))
	b.WriteString("\n\n")

	current := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	done := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	future := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))

	for i, label := range stepLabels {
		step := Step(i)
		if step == StepSave {
			b.WriteString("\n")
		}
		switch {
		case step == m.currentStep:
			b.WriteString(current.Render("▶ " + label))
		case step < m.currentStep:
			b.WriteString(done.Render("✓ " + label))
		default:
			b.WriteString(future.Render("  " + label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.currentStep < StepSave {
		b.WriteString(stepLabels[m.currentStep] + "\n")
		b.WriteString(m.inputs[m.currentStep].View())
	} else if m.saving {
		b.WriteString("Saving...")
	} else {
		role, _ := parser.ParseRole(m.value(StepRole))
		b.WriteString(fmt.Sprintf("Create %s (%s) as %s?\nPress Enter to save",
			strings.TrimSpace(m.value(StepUsername)),
			strings.TrimSpace(m.value(StepFullName)),
			role))
	}

	if m.validationErr != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Bold(true)
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("❌ " + m.validationErr))
	}

	b.WriteString("\n\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true)
	b.WriteString(helpStyle.Render("Enter: Next | Tab/↓: Next | Shift+Tab/↑: Back | Esc: Cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1, 2).
		Render(b.String())
}
