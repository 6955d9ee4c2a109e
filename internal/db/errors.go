package db

import (
	"errors"

	"go.uber.org/zap"
)

// Error kinds returned by Store operations. Callers match them with
// errors.Is; the caller-facing kinds carry detail in the wrapped message.
var (
	ErrValidation  = errors.New("validation failed")
	ErrDuplicate   = errors.New("already exists")
	ErrNotFound    = errors.New("not found")
	ErrState       = errors.New("invalid state")
	ErrPersistence = errors.New("persistence failure")
	ErrTransaction = errors.New("transaction failed and was rolled back")
)

// isKind reports whether err already is one of the Store's error kinds
func isKind(err error) bool {
	for _, kind := range []error{ErrValidation, ErrDuplicate, ErrNotFound, ErrState, ErrPersistence, ErrTransaction} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// fail passes error kinds through untouched and turns anything else
// into an opaque ErrPersistence after logging the cause.
func (s *Store) fail(op string, err error, fields ...zap.Field) error {
	if isKind(err) {
		return err
	}
	s.logger.Error(op+" failed", append(fields, zap.Error(err))...)
	return ErrPersistence
}

// failTx is fail for cascading transactions: the caller sees ErrTransaction
func (s *Store) failTx(op string, err error, fields ...zap.Field) error {
	if isKind(err) {
		return err
	}
	s.logger.Error(op+" rolled back", append(fields, zap.Error(err))...)
	return ErrTransaction
}
