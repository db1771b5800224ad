package errors

import (
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pgErr(code, col string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ColumnName: col}
}

func TestFromPostgres(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorCode
	}{
		{pgErr("23505", ""), ErrorCodeConflict},
		{pgErr("23502", ""), ErrorCodeValidation},
		{pgErr("22001", ""), ErrorCodeValidation},
		{fmt.Errorf("exec: %w", pgErr("42P01", "")), ErrorCodeUnavailable},
		{pgErr("57P03", ""), ErrorCodeUnavailable},
		{pgErr("40001", ""), ErrorCodeDB},
		{stderrs.New("conn closed"), ErrorCodeDB},
	}
	for _, tc := range cases {
		err := FromPostgres(tc.err, "ledger")
		if CodeOf(err) != tc.want || !stderrs.Is(err, tc.err) {
			t.Errorf("%v: code %v, want %v", tc.err, CodeOf(err), tc.want)
		}
	}
	if FromPostgres(nil, "ledger") != nil {
		t.Fatal("nil must stay nil")
	}
}

func TestAttachFieldFromPg(t *testing.T) {
	err := AttachFieldFromPg(FromPostgres(pgErr("23502", " company_key "), "ledger"))
	if e, ok := As(err); !ok || e.Field() != "company_key" {
		t.Fatalf("field = %+v", e)
	}
	plain := Wrap(stderrs.New("x"), ErrorCodeDB, "ledger")
	if AttachFieldFromPg(plain) != plain {
		t.Fatal("non pg error changed")
	}
}
