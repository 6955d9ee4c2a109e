package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
)

// Today returns the store's current calendar date as YYYY-MM-DD
func (s *Store) Today() string {
	return s.clock.Now().Format(models.DateLayout)
}

// StartSession opens today's work session for a user and starts the
// work activity. If the user already has an open session for today its
// id is returned and nothing changes.
func (s *Store) StartSession(ctx context.Context, userID uint, today string) (uint, error) {
	if _, err := time.Parse(models.DateLayout, today); err != nil {
		return 0, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrValidation, today)
	}

	unlock := s.userLocks.Lock(userID)
	defer unlock()

	var sessionID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user #%d", ErrNotFound, userID)
			}
			return err
		}

		// Check if there's already an open session for today
		var existing models.Session
		err := tx.Where("user_id = ? AND date = ? AND logout_time IS NULL", userID, today).
			First(&existing).Error
		if err == nil {
			sessionID = existing.ID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := s.clock.Now()
		session := models.Session{
			UserID:    userID,
			LoginTime: now,
			Date:      today,
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		if _, err := startLog(tx, session.ID, models.ActivityWork, now); err != nil {
			return err
		}

		sessionID = session.ID
		return nil
	})
	if err != nil {
		return 0, s.fail("start session", err, zap.Uint("user_id", userID))
	}

	return sessionID, nil
}

// EndSession closes the open activity, if any, and stamps the logout time
func (s *Store) EndSession(ctx context.Context, sessionID uint) (*models.Session, error) {
	unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var session models.Session
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		open, err := loadOpenSession(tx, sessionID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		active, err := openLog(tx, sessionID)
		if err != nil {
			return err
		}
		if active != nil {
			if err := closeLog(tx, active, now); err != nil {
				return err
			}
		}

		res := tx.Model(&models.Session{}).
			Where("id = ? AND logout_time IS NULL", sessionID).
			Update("logout_time", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%w: session #%d is already closed", ErrState, sessionID)
		}

		if err := tx.First(&session, open.ID).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("end session", err, zap.Uint("session_id", sessionID))
	}

	return &session, nil
}

// OpenSessionFor returns the user's open session for the given date
func (s *Store) OpenSessionFor(ctx context.Context, userID uint, date string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND logout_time IS NULL", userID, date).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no open session for user #%d on %s", ErrNotFound, userID, date)
		}
		return nil, s.fail("find open session", err, zap.Uint("user_id", userID))
	}
	return &session, nil
}

// GetSession retrieves a session by ID
func (s *Store) GetSession(ctx context.Context, sessionID uint) (*models.Session, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session #%d", ErrNotFound, sessionID)
		}
		return nil, s.fail("get session", err, zap.Uint("session_id", sessionID))
	}
	return &session, nil
}

// lockSession resolves the session's owner and takes the owner's lock
// shared and the session's lock exclusively
func (s *Store) lockSession(ctx context.Context, sessionID uint) (func(), error) {
	var session models.Session
	err := s.db.WithContext(ctx).Select("id", "user_id").First(&session, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session #%d", ErrNotFound, sessionID)
		}
		return nil, s.fail("lock session", err, zap.Uint("session_id", sessionID))
	}

	unlockUser := s.userLocks.RLock(session.UserID)
	unlockSession := s.sessionLocks.Lock(sessionID)
	return func() {
		unlockSession()
		unlockUser()
	}, nil
}

// loadOpenSession fetches a session inside tx and requires it to be open
func loadOpenSession(tx *gorm.DB, sessionID uint) (*models.Session, error) {
	var session models.Session
	if err := tx.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// deleted between lock and transaction
			return nil, fmt.Errorf("%w: session #%d", ErrNotFound, sessionID)
		}
		return nil, err
	}
	if !session.IsOpen() {
		return nil, fmt.Errorf("%w: session #%d is already closed", ErrState, sessionID)
	}
	return &session, nil
}
