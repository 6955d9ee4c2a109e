package db

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/clock"
)

// Store is the attendance core: sessions, activities, users and reports
// over one relational store. Every method scopes the connection to its
// own context and transaction; nothing is shared between calls except
// the pool and the per-key locks.
type Store struct {
	db         *gorm.DB
	clock      clock.Clock
	logger     *zap.Logger
	bcryptCost int

	// tracker operations hold a user's lock shared and the session's
	// lock exclusively; DeleteUser and StartSession hold the user's lock
	// exclusively
	userLocks    *keyedLocks
	sessionLocks *keyedLocks

	dummyOnce sync.Once
	dummyHash []byte
}

// Option customizes a Store
type Option func(*Store)

// WithClock replaces the wall clock
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger used for persistence failures
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithBcryptCost sets the cost for new password hashes
func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.bcryptCost = cost }
}

// NewStore wraps an open gorm connection
func NewStore(gdb *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:           gdb,
		clock:        clock.Real(),
		logger:       zap.NewNop(),
		bcryptCost:   bcrypt.DefaultCost,
		userLocks:    newKeyedLocks(),
		sessionLocks: newKeyedLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying connection for maintenance commands
func (s *Store) DB() *gorm.DB {
	return s.db
}
