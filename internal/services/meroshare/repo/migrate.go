package repo

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	perr "mywallet/internal/platform/errors"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the embedded schema files
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return sub
}

// Migrate applies pending ledger migrations and returns the versions it ran
func Migrate(ctx context.Context, db *sql.DB) ([]int64, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, Migrations())
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "init migrations")
	}
	res, err := p.Up(ctx)
	if err != nil {
		return nil, perr.FromPostgres(err, "apply migrations")
	}
	applied := make([]int64, 0, len(res))
	for _, r := range res {
		if r.Source != nil {
			applied = append(applied, r.Source.Version)
		}
	}
	return applied, nil
}
