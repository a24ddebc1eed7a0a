package repository

import (
	"errors"
	"fmt"

	dbpkg "dailyart/shared/pkg/db"
)

// ErrRowMissing is returned when a conditional update matched no row.
var ErrRowMissing = errors.New("row missing")

// Driver-neutral storage errors, see dbpkg.Classify.
var (
	ErrDuplicateKey = dbpkg.ErrDuplicateKey
	ErrForeignKey   = dbpkg.ErrForeignKey
	ErrTimeout      = dbpkg.ErrTimeout
)

func wrapErr(op string, err error) error {
	return fmt.Errorf("failed to %s: %w", op, dbpkg.Classify(err))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
