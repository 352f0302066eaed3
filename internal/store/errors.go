package store

import (
	"errors"
	"strings"
)

// ErrIntegrity indicates a write that would violate referential integrity,
// such as enrichment for a track that was never ingested.
var ErrIntegrity = errors.New("integrity violation")

// SQLITE_CONSTRAINT_FOREIGNKEY extended result code.
const sqliteForeignKeyCode = 787

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteForeignKeyCode {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
