// Package pg opens pgx pools and traces their queries through zerolog
package pg

import (
	"context"
	"time"

	"mywallet/internal/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Config configures a pool
type Config struct {
	URL      string
	AppName  string
	MaxConns int32

	// LogSQL logs every statement regardless of the root level
	LogSQL bool
	// SlowQuery logs statements at warn once they take at least this long; zero disables
	SlowQuery time.Duration
}

// swapped in tests
var newPool = pgxpool.NewWithConfig

// Open parses cfg, attaches a Tracer when any tracing is enabled and builds the pool.
// mut, when set, sees the parsed pool config last. pgxpool dials lazily so an
// unreachable server surfaces on the first Ping, not here
func Open(ctx context.Context, cfg Config, log logger.Logger, mut func(*pgxpool.Config)) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.AppName != "" {
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.LogSQL || cfg.SlowQuery > 0 {
		tl := log.With().Str("component", "pg").Logger()
		if cfg.LogSQL {
			tl = tl.Level(zerolog.DebugLevel)
		}
		pcfg.ConnConfig.Tracer = &Tracer{Log: tl, Slow: cfg.SlowQuery, All: cfg.LogSQL}
	}
	if mut != nil {
		mut(pcfg)
	}
	return newPool(ctx, pcfg)
}
