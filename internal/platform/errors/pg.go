package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgCodes maps the SQLSTATEs the ledger can raise to our codes; anything else is ErrorCodeDB
var pgCodes = map[string]ErrorCode{
	"23505": ErrorCodeConflict,    // unique_violation
	"23502": ErrorCodeValidation,  // not_null_violation
	"23514": ErrorCodeValidation,  // check_violation
	"22001": ErrorCodeValidation,  // string_data_right_truncation
	"42P01": ErrorCodeUnavailable, // undefined_table, migrations not applied
	"25006": ErrorCodeUnavailable, // read_only_sql_transaction
	"57P03": ErrorCodeUnavailable, // cannot_connect_now
}

// transient SQLSTATEs: serialization_failure, deadlock_detected, lock_not_available, cannot_connect_now
var pgTransient = map[string]bool{"40001": true, "40P01": true, "55P03": true, "57P03": true}

// pgx sometimes reports these without a PgError, e.g. on commit
var pgTransientText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
	"terminating connection due to administrator command",
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	ok := stderrs.As(err, &pe)
	return pe, ok
}

// FromPostgres wraps err with msg and a code derived from its SQLSTATE.
// nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code := ErrorCodeDB
	if pe, ok := pgError(err); ok {
		if c, known := pgCodes[pe.Code]; known {
			code = c
		}
	}
	return Wrap(err, code, msg)
}

// AttachFieldFromPg sets the field to the column a Postgres error names, when it names one
func AttachFieldFromPg(err error) error {
	if pe, ok := pgError(err); ok && strings.TrimSpace(pe.ColumnName) != "" {
		return WithField(err, strings.TrimSpace(pe.ColumnName))
	}
	return err
}

// transientPG reports whether err is a database condition worth retrying.
// Context cancellation never is
func transientPG(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pe, ok := pgError(err); ok {
		return pgTransient[pe.Code]
	}
	s := strings.ToLower(err.Error())
	for _, t := range pgTransientText {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
