package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgnc/pgnc-upload/internal/db/schema"
)

// PostgreSQL error codes given a dedicated reason.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeUniqueViolation     = "23505"
	pgCodeForeignKeyViolation = "23503"
	pgCodeNotNullViolation    = "23502"
	pgCodeCheckViolation      = "23514"

	// Class 22 - Data Exception
	pgClassDataException = "22"
)

// describeInsertError turns a storage-layer failure into a reason an
// operator can act on.
func describeInsertError(err error) string {
	var nm *schema.NotMatchedError
	if errors.As(err, &nm) {
		return nm.Error()
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err.Error()
	}

	switch {
	case pgErr.Code == pgCodeUniqueViolation:
		return withDetail(fmt.Sprintf("already exists (unique constraint %s)", pgErr.ConstraintName), pgErr)
	case pgErr.Code == pgCodeForeignKeyViolation:
		return withDetail(fmt.Sprintf("references a missing row (foreign key %s)", pgErr.ConstraintName), pgErr)
	case pgErr.Code == pgCodeNotNullViolation:
		return fmt.Sprintf("required value missing for column %s", pgErr.ColumnName)
	case pgErr.Code == pgCodeCheckViolation:
		return withDetail(fmt.Sprintf("value rejected by check constraint %s", pgErr.ConstraintName), pgErr)
	case strings.HasPrefix(pgErr.Code, pgClassDataException):
		return fmt.Sprintf("invalid value: %s", pgErr.Message)
	default:
		return fmt.Sprintf("%s (SQLSTATE %s)", pgErr.Message, pgErr.Code)
	}
}

func withDetail(reason string, pgErr *pgconn.PgError) string {
	if pgErr.Detail == "" {
		return reason
	}
	return reason + ": " + pgErr.Detail
}
