package db

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
)

// errInvalidCredentials covers both an unknown user and a wrong password
var errInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrNotFound)

// HashPassword hashes a password using bcrypt
func (s *Store) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	return string(bytes), err
}

// dummy returns a hash to compare against when the username is unknown,
// so both failure paths cost one bcrypt comparison
func (s *Store) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("punch-dummy-password"), s.bcryptCost)
		if err != nil {
			s.logger.Error("generate dummy hash failed", zap.Error(err))
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// Authenticate verifies credentials and returns the caller's identity
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.Identity, error) {
	if username == "" || password == "" {
		return nil, errInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, errInvalidCredentials
		}
		return nil, s.fail("authenticate", err, zap.String("username", username))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	identity := user.Identity()
	return &identity, nil
}
