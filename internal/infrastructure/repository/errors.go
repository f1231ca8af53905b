package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Common repository errors
var (
	ErrNotFound     = errors.New("entity not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
	ErrCheckFailed  = errors.New("check constraint violation")
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsDuplicateKeyViolation checks if the error is a unique constraint violation
func IsDuplicateKeyViolation(err error) bool {
	return err != nil && pgCode(err) == pgUniqueViolation
}

// IsNotFound checks if the error indicates a record was not found
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}

// WrapRepositoryError maps driver errors onto the repository sentinels, keeping the
// original error in the chain
func WrapRepositoryError(err error, operation string) error {
	if err == nil {
		return nil
	}

	switch {
	case IsNotFound(err):
		return fmt.Errorf("%s: %w", operation, ErrNotFound)
	case IsDuplicateKeyViolation(err):
		return fmt.Errorf("%s: %w: %w", operation, ErrDuplicateKey, err)
	case pgCode(err) == pgCheckViolation:
		return fmt.Errorf("%s: %w: %w", operation, ErrCheckFailed, err)
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
