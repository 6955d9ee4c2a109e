package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/punch/internal/clock"
	"github.com/balkashynov/punch/internal/models"
)

// ErrCancelled is returned when the user leaves a form without saving
var ErrCancelled = errors.New("cancelled")

// tickAfter delivers msg once after d
func tickAfter(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// RunSessionTUI runs the session timer. It returns the closed session
// when the user ended it from the timer, or nil when they left with the
// session still open.
func RunSessionTUI(ctx context.Context, tracker Tracker, clk clock.Clock, sessionID uint, who string) (*models.Session, error) {
	model := NewSessionModel(ctx, tracker, clk, sessionID, who)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	if m, ok := finalModel.(SessionModel); ok {
		return m.Ended(), nil
	}
	return nil, nil
}

// RunMonitorTUI runs the admin monitor until the user quits
func RunMonitorTUI(ctx context.Context, lister SessionLister, clk clock.Clock, userID *uint, interval time.Duration) error {
	model := NewMonitorModel(ctx, lister, clk, userID, interval)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// RunUserFormTUI runs the new user wizard and returns the created ID
func RunUserFormTUI(ctx context.Context, creator UserCreator, prefilled map[string]string) (uint, error) {
	model := NewUserFormModel(ctx, creator, prefilled)

	p := tea.NewProgram(model, tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return 0, err
	}

	m, ok := finalModel.(UserFormModel)
	if !ok {
		return 0, ErrCancelled
	}
	if id, done := m.Completed(); done {
		return id, nil
	}
	return 0, ErrCancelled
}
