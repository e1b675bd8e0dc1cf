package postgres

import (
	"errors"
	"fmt"

	"github.com/uptrace/bun/driver/pgdriver"

	"webnova-quiz-service/internal/domain"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func sqlState(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}

// classify turns retryable transaction failures into domain.ErrConflict.
func classify(op string, err error) error {
	switch sqlState(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
