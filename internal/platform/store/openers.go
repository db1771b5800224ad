package store

import (
	"context"
	"fmt"
	"time"

	"mywallet/internal/platform/logger"
	"mywallet/internal/platform/store/pg"
)

const (
	defaultConnectRetries = 20
	defaultPingTimeout    = 3 * time.Second
)

// openPG builds the pool and waits for the server, backing off from 150ms up to 2s between pings
func openPG(ctx context.Context, cfg Config, log logger.Logger) (*pgAdapter, error) {
	pool, err := pg.Open(ctx, pg.Config{
		URL:       cfg.PG.URL,
		AppName:   cfg.AppName,
		MaxConns:  cfg.PG.MaxConns,
		LogSQL:    cfg.PG.LogSQL,
		SlowQuery: time.Duration(cfg.PG.SlowQueryMs) * time.Millisecond,
	}, log, nil)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = defaultConnectRetries
	}
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	wait := 150 * time.Millisecond
	for i := 1; ; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		err = pool.Ping(pctx)
		cancel()
		if err == nil {
			return newPGAdapter(pool), nil
		}
		if ctx.Err() != nil || i == attempts {
			break
		}
		log.Warn().Err(err).Int("attempt", i).Dur("retry_in", wait).Msg("postgres not ready")
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
		wait = min(wait*2, 2*time.Second)
	}

	pool.Close()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, err)
}
