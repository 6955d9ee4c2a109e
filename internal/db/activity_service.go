package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/punch/internal/models"
)

// StartActivity begins activityType in an open session, closing the
// current activity first. Starting the activity that is already running
// is a state error.
func (s *Store) StartActivity(ctx context.Context, sessionID uint, activityType models.ActivityType) (*models.ActivityLog, error) {
	return s.transition(ctx, "start activity", sessionID, activityType)
}

// ChangeActivity closes the open activity and opens activityType in one
// transaction, so the session never shows two open activities or none.
func (s *Store) ChangeActivity(ctx context.Context, sessionID uint, activityType models.ActivityType) (*models.ActivityLog, error) {
	return s.transition(ctx, "change activity", sessionID, activityType)
}

func (s *Store) transition(ctx context.Context, op string, sessionID uint, activityType models.ActivityType) (*models.ActivityLog, error) {
	if !activityType.Valid() {
		return nil, fmt.Errorf("%w: unknown activity type %q", ErrValidation, string(activityType))
	}

	unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var started *models.ActivityLog
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOpenSession(tx, sessionID); err != nil {
			return err
		}

		active, err := openLog(tx, sessionID)
		if err != nil {
			return err
		}
		if active != nil && active.ActivityType == activityType {
			return fmt.Errorf("%w: %s is already running in session #%d", ErrState, activityType, sessionID)
		}

		// the closing and opening timestamps are the same instant
		now := s.clock.Now()
		if active != nil {
			if err := closeLog(tx, active, now); err != nil {
				return err
			}
		}

		started, err = startLog(tx, sessionID, activityType, now)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err,
			zap.Uint("session_id", sessionID),
			zap.String("activity", string(activityType)))
	}

	return started, nil
}

// EndActivity closes the open activity of a session and folds its
// duration into the session totals. The session stays open.
func (s *Store) EndActivity(ctx context.Context, sessionID uint) (*models.ActivityLog, error) {
	unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var closed *models.ActivityLog
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadOpenSession(tx, sessionID); err != nil {
			return err
		}

		active, err := openLog(tx, sessionID)
		if err != nil {
			return err
		}
		if active == nil {
			return fmt.Errorf("%w: no activity is running in session #%d", ErrState, sessionID)
		}

		if err := closeLog(tx, active, s.clock.Now()); err != nil {
			return err
		}
		closed = active
		return nil
	})
	if err != nil {
		return nil, s.fail("end activity", err, zap.Uint("session_id", sessionID))
	}

	return closed, nil
}

// CurrentActivity returns the open activity of a session, or nil
func (s *Store) CurrentActivity(ctx context.Context, sessionID uint) (*models.ActivityLog, error) {
	active, err := openLog(s.db.WithContext(ctx), sessionID)
	if err != nil {
		return nil, s.fail("current activity", err, zap.Uint("session_id", sessionID))
	}
	return active, nil
}

// CurrentStatistics reports the session's accumulators and the
// wall-clock time since login
func (s *Store) CurrentStatistics(ctx context.Context, sessionID uint) (*models.Stats, error) {
	var stats *models.Stats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: session #%d", ErrNotFound, sessionID)
			}
			return err
		}

		active, err := openLog(tx, sessionID)
		if err != nil {
			return err
		}

		stats = &models.Stats{
			SessionID:         session.ID,
			LoginTime:         session.LoginTime,
			LogoutTime:        session.LogoutTime,
			TotalWorkTime:     session.TotalWorkTime,
			TotalBreakTime:    session.TotalBreakTime,
			TotalLunchTime:    session.TotalLunchTime,
			TotalBathroomTime: session.TotalBathroomTime,
			TotalMeetingTime:  session.TotalMeetingTime,
			TotalTime:         session.ElapsedSeconds(s.clock.Now()),
		}
		if active != nil {
			since := active.StartTime
			stats.CurrentActivity = active.ActivityType
			stats.ActivitySince = &since
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("current statistics", err, zap.Uint("session_id", sessionID))
	}

	return stats, nil
}

// ListActivityLogs returns every log of a session in start order
func (s *Store) ListActivityLogs(ctx context.Context, sessionID uint) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := s.db.WithContext(ctx).
		Where("record_id = ?", sessionID).
		Order("start_time ASC").Order("id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, s.fail("list activity logs", err, zap.Uint("session_id", sessionID))
	}
	return logs, nil
}

// openLog returns the session's open log or nil
func openLog(tx *gorm.DB, sessionID uint) (*models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := tx.Where("record_id = ? AND end_time IS NULL", sessionID).
		Order("id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	switch len(logs) {
	case 0:
		return nil, nil
	case 1:
		return &logs[0], nil
	}
	return nil, fmt.Errorf("session #%d has %d open activities", sessionID, len(logs))
}

// startLog opens a new activity log at now
func startLog(tx *gorm.DB, sessionID uint, activityType models.ActivityType, now time.Time) (*models.ActivityLog, error) {
	log := models.ActivityLog{
		RecordID:     sessionID,
		ActivityType: activityType,
		StartTime:    now,
	}
	if err := tx.Create(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// closeLog stamps the end of log, computes its whole-second duration and
// adds it to the matching accumulator of the owning session
func closeLog(tx *gorm.DB, log *models.ActivityLog, now time.Time) error {
	column, err := log.ActivityType.TotalColumn()
	if err != nil {
		return err
	}
	duration := models.TruncSeconds(now.Sub(log.StartTime))

	res := tx.Model(&models.ActivityLog{}).
		Where("id = ? AND end_time IS NULL", log.ID).
		Updates(map[string]interface{}{
			"end_time": now,
			"duration": duration,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("%w: activity #%d is already closed", ErrState, log.ID)
	}

	res = tx.Model(&models.Session{}).
		Where("id = ?", log.RecordID).
		UpdateColumn(column, gorm.Expr("? + ?", clause.Column{Name: column}, duration))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("session #%d vanished while closing activity #%d", log.RecordID, log.ID)
	}

	log.EndTime = &now
	log.Duration = duration
	return nil
}
