// Package store owns the optional Postgres backend and the narrow seams repos query through
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mywallet/internal/platform/logger"

	"github.com/rs/zerolog"
)

// Row is a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set. pgx.Rows satisfies it
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports what a write did. pgconn.CommandTag satisfies it
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the surface repos read and write through
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also run fn inside one transaction.
// fn's error rolls the transaction back
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// ErrDisabled is returned when the backend is needed but not configured
var ErrDisabled = errors.New("store: backend disabled")

// Store holds the configured backends; a zero Store has none
type Store struct {
	Log logger.Logger

	// PG is nil unless Config.PG.Enabled
	PG TxRunner
}

// Option customises Open
type Option func(*Store)

// WithLogger sets the logger used for boot retries and query tracing
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.Log = l }
}

// Open builds a Store, connecting only the backends cfg enables
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	if !cfg.PG.Enabled {
		return s, nil
	}
	a, err := openPG(ctx, cfg, s.Log)
	if err != nil {
		return nil, err
	}
	s.PG = a
	return s, nil
}

// SQLDB returns a database/sql view of the PG pool for migrations.
// It shares the pool; closing the Store closes both
func (s *Store) SQLDB() (*sql.DB, error) {
	if s == nil || s.PG == nil {
		return nil, ErrDisabled
	}
	d, ok := s.PG.(interface{ SQLDB() *sql.DB })
	if !ok {
		return nil, fmt.Errorf("store: %T has no database/sql view", s.PG)
	}
	return d.SQLDB(), nil
}

// Close releases every open backend
func (s *Store) Close(context.Context) error {
	if s == nil {
		return nil
	}
	if c, ok := s.PG.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
