// Package repo persists the MeroShare apply ledger in Postgres
package repo

import (
	"context"
	"errors"

	"mywallet/internal/modkit/repokit"
	perr "mywallet/internal/platform/errors"
	"mywallet/internal/platform/store"
	"mywallet/internal/services/meroshare/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the ledger table. Rows are append-only; the newest row per key wins
type Storage interface {
	Latest(ctx context.Context, key domain.LedgerKey) (domain.LedgerRecord, error)
	Insert(ctx context.Context, rec domain.LedgerRecord) error
	Recent(ctx context.Context, dpID, username string, limit int) ([]domain.LedgerRecord, error)
}

// Latest returns perr.ErrNotFound when the key has no rows
func (s *pg) Latest(ctx context.Context, key domain.LedgerKey) (domain.LedgerRecord, error) {
	const sql = `
		SELECT status, quantity, message, matched, run_id, recorded_at
		FROM meroshare_apply_ledger
		WHERE dp_id = $1 AND username = $2 AND company = $3
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`
	return store.One(ctx, s.q, func(r store.Row) (domain.LedgerRecord, error) {
		rec := domain.LedgerRecord{Key: key}
		var status string
		if err := r.Scan(&status, &rec.Quantity, &rec.Message, &rec.Matched, &rec.RunID, &rec.RecordedAt); err != nil {
			return rec, err
		}
		rec.Status = domain.Status(status)
		return rec, nil
	}, sql, key.DPID, key.Username, key.Company)
}

// Insert appends one outcome
func (s *pg) Insert(ctx context.Context, rec domain.LedgerRecord) error {
	const sql = `
		INSERT INTO meroshare_apply_ledger
			(dp_id, username, company, status, quantity, message, matched, run_id, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	return store.ExecOne(ctx, s.q, sql,
		rec.Key.DPID, rec.Key.Username, rec.Key.Company,
		string(rec.Status), rec.Quantity, rec.Message, rec.Matched, rec.RunID, rec.RecordedAt,
	)
}

// Recent lists the newest rows for one account across all issues
func (s *pg) Recent(ctx context.Context, dpID, username string, limit int) ([]domain.LedgerRecord, error) {
	const sql = `
		SELECT company, status, quantity, message, matched, run_id, recorded_at
		FROM meroshare_apply_ledger
		WHERE dp_id = $1 AND username = $2
		ORDER BY recorded_at DESC, id DESC
		LIMIT $3
	`
	return store.Many(ctx, s.q, func(r store.Row) (domain.LedgerRecord, error) {
		rec := domain.LedgerRecord{Key: domain.LedgerKey{DPID: dpID, Username: username}}
		var status string
		err := r.Scan(&rec.Key.Company, &status, &rec.Quantity, &rec.Message, &rec.Matched, &rec.RunID, &rec.RecordedAt)
		rec.Status = domain.Status(status)
		return rec, err
	}, sql, dpID, username, limit)
}

// Ledger serves domain.LedgerPort from a Postgres TxRunner
type Ledger struct {
	db repokit.TxRunner
	b  repokit.Binder[Storage]
}

var _ domain.LedgerPort = (*Ledger)(nil)

// NewLedger binds the Postgres storage to db
func NewLedger(db repokit.TxRunner) *Ledger {
	return &Ledger{db: db, b: NewPG()}
}

// LastApplied implements domain.LedgerPort
func (l *Ledger) LastApplied(ctx context.Context, key domain.LedgerKey) (domain.LedgerRecord, bool, error) {
	rec, err := repokit.MustBind(l.b, l.db).Latest(ctx, key)
	switch {
	case errors.Is(err, perr.ErrNotFound):
		return domain.LedgerRecord{}, false, nil
	case err != nil:
		return domain.LedgerRecord{}, false, perr.FromPostgres(err, "read apply ledger")
	}
	return rec, true, nil
}

// Record implements domain.LedgerPort
func (l *Ledger) Record(ctx context.Context, rec domain.LedgerRecord) error {
	if rec.Key.Company == "" {
		return perr.Validationf("ledger record needs a company")
	}
	err := repokit.WithTx(ctx, l.db, func(q repokit.Queryer) error {
		return repokit.MustBind(l.b, q).Insert(ctx, rec)
	})
	return perr.AttachFieldFromPg(perr.FromPostgres(err, "write apply ledger"))
}

// DefaultHistoryLimit caps History when the caller passes zero
const DefaultHistoryLimit = 50

// History lists the newest recorded outcomes for an account, newest first
func (l *Ledger) History(ctx context.Context, dpID, username string, limit int) ([]domain.LedgerRecord, error) {
	if dpID == "" || username == "" {
		return nil, perr.Validationf("history needs a dp id and username")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	recs, err := repokit.MustBind(l.b, l.db).Recent(ctx, dpID, username, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "read apply ledger")
	}
	return recs, nil
}
