package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/punch/internal/models"
)

// ReportFilter narrows a historical report. Zero values impose no
// constraint.
type ReportFilter struct {
	UserID *uint
	From   string // YYYY-MM-DD, inclusive
	To     string // YYYY-MM-DD, inclusive
}

func (f ReportFilter) validate() error {
	for _, d := range []string{f.From, f.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrValidation, d)
		}
	}
	return nil
}

// inverted reports whether From is after To
func (f ReportFilter) inverted() bool {
	// YYYY-MM-DD sorts lexically
	return f.From != "" && f.To != "" && f.From > f.To
}

// ListActiveSessions returns every open session, newest login first,
// optionally restricted to one user
func (s *Store) ListActiveSessions(ctx context.Context, userID *uint) ([]models.SessionView, error) {
	var views []models.SessionView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := sessionsWithOwner(tx).Where("time_records.logout_time IS NULL")
		if userID != nil {
			q = q.Where("time_records.user_id = ?", *userID)
		}

		var sessions []models.Session
		if err := q.Order("time_records.login_time DESC").Order("time_records.id DESC").Find(&sessions).Error; err != nil {
			return err
		}
		views = toViews(sessions)
		return nil
	})
	if err != nil {
		return nil, s.fail("list active sessions", err)
	}
	return views, nil
}

// HistoricalReport returns sessions matching filter, newest date first
// and then by username
func (s *Store) HistoricalReport(ctx context.Context, filter ReportFilter) ([]models.SessionView, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}
	if filter.inverted() {
		return []models.SessionView{}, nil
	}

	var views []models.SessionView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := sessionsWithOwner(tx)
		if filter.UserID != nil {
			q = q.Where("time_records.user_id = ?", *filter.UserID)
		}
		if filter.From != "" {
			q = q.Where("time_records.date >= ?", filter.From)
		}
		if filter.To != "" {
			q = q.Where("time_records.date <= ?", filter.To)
		}

		var sessions []models.Session
		err := q.Order("time_records.date DESC").
			Order(clause.OrderByColumn{Column: clause.Column{Table: "User", Name: "username"}}).
			Order("time_records.login_time ASC").
			Find(&sessions).Error
		if err != nil {
			return err
		}
		views = toViews(sessions)
		return nil
	})
	if err != nil {
		return nil, s.fail("historical report", err,
			zap.String("from", filter.From),
			zap.String("to", filter.To))
	}
	return views, nil
}

// sessionsWithOwner joins each session with its user and preloads only
// the open activity log
func sessionsWithOwner(tx *gorm.DB) *gorm.DB {
	return tx.Model(&models.Session{}).
		Joins("User").
		Preload("Logs", "end_time IS NULL")
}

func toViews(sessions []models.Session) []models.SessionView {
	views := make([]models.SessionView, 0, len(sessions))
	for _, session := range sessions {
		var current models.ActivityType
		if len(session.Logs) > 0 {
			current = session.Logs[0].ActivityType
		}
		views = append(views, models.NewSessionView(session, current))
	}
	return views
}
