package pg

import (
	"context"
	"strings"
	"time"

	"mywallet/internal/platform/logger"

	"github.com/jackc/pgx/v5"
)

// Tracer is a pgx.QueryTracer that logs finished statements.
// Slow or failed statements log at warn; the rest only when All is set
type Tracer struct {
	Log  logger.Logger
	Slow time.Duration
	All  bool
}

var now = time.Now

type startKey struct{}

type started struct {
	sql  string
	args int
	at   time.Time
}

// TraceQueryStart implements pgx.QueryTracer
func (t *Tracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, d pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, startKey{}, started{sql: d.SQL, args: len(d.Args), at: now()})
}

// TraceQueryEnd implements pgx.QueryTracer
func (t *Tracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, d pgx.TraceQueryEndData) {
	s, ok := ctx.Value(startKey{}).(started)
	if !ok {
		return
	}
	elapsed := now().Sub(s.at)
	slow := t.Slow > 0 && elapsed >= t.Slow

	evt := t.Log.Info()
	switch {
	case slow || d.Err != nil:
		evt = t.Log.Warn()
	case !t.All:
		return
	}
	// args are counted, never logged; ledger rows carry portal usernames
	evt.Dur("elapsed", elapsed).
		Bool("slow", slow).
		Str("sql", squash(s.sql)).
		Int("args", s.args).
		Int64("rows", d.CommandTag.RowsAffected()).
		Err(d.Err).
		Msg("pg query")
}

// squash collapses whitespace runs so multi line statements log on one line
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
