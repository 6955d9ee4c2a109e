package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
)

// NewUser holds the data needed to create a user
type NewUser struct {
	Username string
	Password string
	FullName string
	Role     models.Role
}

// UserUpdate holds the editable fields of a user.
// A nil or empty Password keeps the stored credential.
type UserUpdate struct {
	Password *string
	FullName string
	Role     models.Role
}

// ImportResult summarizes a bulk import
type ImportResult struct {
	Added   []string
	Skipped []string // usernames that already existed
}

func (u NewUser) normalize() NewUser {
	u.Username = strings.TrimSpace(u.Username)
	u.FullName = strings.TrimSpace(u.FullName)
	u.Role = models.Role(strings.ToLower(strings.TrimSpace(string(u.Role))))
	return u
}

func (u NewUser) validate() error {
	var missing []string
	if u.Username == "" {
		missing = append(missing, "username")
	}
	if u.Password == "" {
		missing = append(missing, "password")
	}
	if u.FullName == "" {
		missing = append(missing, "full name")
	}
	if u.Role == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: role must be employee or admin, got %q", ErrValidation, u.Role)
	}
	return nil
}

// AddUser creates a user and returns its ID
func (s *Store) AddUser(ctx context.Context, req NewUser) (uint, error) {
	req = req.normalize()
	if err := req.validate(); err != nil {
		return 0, err
	}

	hashedPassword, err := s.HashPassword(req.Password)
	if err != nil {
		return 0, s.fail("hash password", err)
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hashedPassword,
		FullName:     req.FullName,
		Role:         req.Role,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: username %q", ErrDuplicate, req.Username)
		}
		return tx.Create(&user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a concurrent insert
		return 0, fmt.Errorf("%w: username %q", ErrDuplicate, req.Username)
	}
	if err != nil {
		return 0, s.fail("add user", err, zap.String("username", req.Username))
	}

	return user.ID, nil
}

// UpdateUser changes a user's name and role and, when given, password
func (s *Store) UpdateUser(ctx context.Context, id uint, req UserUpdate) error {
	fullName := strings.TrimSpace(req.FullName)
	role := models.Role(strings.ToLower(strings.TrimSpace(string(req.Role))))

	if fullName == "" || role == "" {
		return fmt.Errorf("%w: full name and role required", ErrValidation)
	}
	if !role.Valid() {
		return fmt.Errorf("%w: role must be employee or admin, got %q", ErrValidation, role)
	}

	updates := map[string]interface{}{
		"full_name": fullName,
		"role":      role,
	}
	if req.Password != nil && *req.Password != "" {
		hashedPassword, err := s.HashPassword(*req.Password)
		if err != nil {
			return s.fail("hash password", err)
		}
		updates["password_hash"] = hashedPassword
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user #%d", ErrNotFound, id)
			}
			return err
		}
		return tx.Model(&user).Updates(updates).Error
	})
	if err != nil {
		return s.fail("update user", err, zap.Uint("user_id", id))
	}
	return nil
}

// DeleteUser removes a user together with all of its sessions and their
// activity logs in one transaction. Tracker operations on the user are
// excluded for the duration.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	unlock := s.userLocks.Lock(id)
	defer unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user #%d", ErrNotFound, id)
			}
			return err
		}

		sessionIDs := tx.Model(&models.Session{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("record_id IN (?)", sessionIDs).Delete(&models.ActivityLog{}).Error; err != nil {
			return fmt.Errorf("delete activity logs: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return s.failTx("delete user", err, zap.Uint("user_id", id))
	}

	s.logger.Info("user deleted", zap.Uint("user_id", id))
	return nil
}

// GetUser returns a specific user by ID
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user #%d", ErrNotFound, id)
		}
		return nil, s.fail("get user", err, zap.Uint("user_id", id))
	}
	return &user, nil
}

// GetUserByUsername returns the user whose username matches exactly
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return nil, s.fail("get user by username", err, zap.String("username", username))
	}
	return &user, nil
}

// ResolveUsername finds a user by exact username, falling back to a
// case-insensitive match only when exactly one account matches.
func (s *Store) ResolveUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if !errors.Is(err, ErrNotFound) {
		return user, err
	}

	username = strings.TrimSpace(username)
	var users []models.User
	err = s.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", username).
		Order("username ASC").
		Limit(2).
		Find(&users).Error
	if err != nil {
		return nil, s.fail("resolve username", err, zap.String("username", username))
	}

	switch len(users) {
	case 0:
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
	case 1:
		return &users[0], nil
	}
	return nil, fmt.Errorf("%w: %q matches several users differing only in case; use the exact username", ErrValidation, username)
}

// ListUsers returns all users ordered by username
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, s.fail("list users", err)
	}
	return users, nil
}

// ImportUsers validates every row first and adds nothing if any row is
// invalid. Valid rows are then added one by one; usernames that already
// exist are skipped.
func (s *Store) ImportUsers(ctx context.Context, users []NewUser) (*ImportResult, error) {
	var invalid []string
	for i := range users {
		users[i] = users[i].normalize()
		if err := users[i].validate(); err != nil {
			invalid = append(invalid, fmt.Sprint(i+1))
		}
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: %d invalid rows (rows: %s)", ErrValidation, len(invalid), strings.Join(invalid, ", "))
	}

	result := &ImportResult{}
	for _, u := range users {
		_, err := s.AddUser(ctx, u)
		switch {
		case err == nil:
			result.Added = append(result.Added, u.Username)
		case errors.Is(err, ErrDuplicate):
			result.Skipped = append(result.Skipped, u.Username)
		default:
			return result, err
		}
	}

	s.logger.Info("users imported",
		zap.Int("added", len(result.Added)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}
