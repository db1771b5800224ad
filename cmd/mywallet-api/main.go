// @title         MyWallet API
// @version       0.1.0
// @description   MeroShare IPO automation: login checks, applications, allotment results and portfolio sync

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mywallet/internal/platform/config"
	"mywallet/internal/platform/logger"
	phttp "mywallet/internal/platform/net/http"
	"mywallet/internal/platform/store"

	"mywallet/internal/services/api"
	"mywallet/internal/services/meroshare/repo"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_") // optional ledger database

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx,
		store.Config{AppName: "mywallet-api", PG: store.PGFromConf(pgCfg)},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if st.PG == nil {
		l.Warn().Msg("SERVICE_PGSQL_DBURL not set; running without the apply ledger")
	} else if pgCfg.MayBool("MIGRATE", true) {
		db, err := st.SQLDB()
		if err != nil {
			l.Panic().Err(err).Msg("sql view failed")
		}
		applied, err := repo.Migrate(ctx, db)
		if err != nil {
			l.Panic().Err(err).Msg("migrations failed")
		}
		l.Info().Ints64("applied", applied).Msg("migrations done")
	}

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	go func() {
		<-ctx.Done()
		// give in flight automation runs a chance to release their browsers
		sctx, cancel := context.WithTimeout(context.Background(), apiCfg.MayDuration("SHUTDOWN_GRACE", 20*time.Second))
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			l.Error().Err(err).Msg("http shutdown")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
