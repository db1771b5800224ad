package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"

	"mywallet/internal/adapters/browser"
	"mywallet/internal/platform/config"
	perr "mywallet/internal/platform/errors"
	"mywallet/internal/platform/logger"
	"mywallet/internal/platform/store"

	"mywallet/internal/services/meroshare/domain"
	meromod "mywallet/internal/services/meroshare/module"
	"mywallet/internal/services/meroshare/repo"
	"mywallet/internal/services/meroshare/service"

	"github.com/google/subcommands"
)

// app carries what every subcommand shares
type app struct {
	cfg config.Conf
	out io.Writer

	// seams
	openService func(ctx context.Context) (domain.ServicePort, func(), error)
	openStore   func(ctx context.Context) (*store.Store, error)
	openLedger  func(ctx context.Context) (historian, func(), error)
}

// historian reads recorded apply outcomes
type historian interface {
	History(ctx context.Context, dpID, username string, limit int) ([]domain.LedgerRecord, error)
}

func newApp(cfg config.Conf, out io.Writer) *app {
	a := &app{cfg: cfg, out: out}
	a.openStore = a.defaultStore
	a.openService = a.defaultService
	a.openLedger = a.defaultLedger
	return a
}

func (a *app) commands() []subcommands.Command {
	return []subcommands.Command{
		&loginCmd{app: a},
		&applyCmd{app: a},
		&allotmentCmd{app: a},
		&portfolioCmd{app: a},
		&historyCmd{app: a},
		&migrateCmd{app: a},
	}
}

// defaultStore opens the optional ledger database (SERVICE_PGSQL_*)
func (a *app) defaultStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx,
		store.Config{AppName: "mywallet-meroshare", PG: store.PGFromConf(a.cfg.Prefix("SERVICE_PGSQL_"))},
		store.WithLogger(*logger.Get()),
	)
}

// defaultService wires the rod provider and, when a database is configured, the ledger
func (a *app) defaultService(ctx context.Context) (domain.ServicePort, func(), error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "open ledger database")
	}
	closeStore := func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close store")
		}
	}

	var ledger domain.LedgerPort
	if st.PG != nil {
		ledger = repo.NewLedger(st.PG)
	}

	so, err := meromod.FromConfig(a.cfg).Service(browser.NewRodProvider(), ledger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return service.New(so), closeStore, nil
}

// defaultLedger requires a configured database
func (a *app) defaultLedger(ctx context.Context) (historian, func(), error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "open ledger database")
	}
	if st.PG == nil {
		return nil, nil, perr.Validationf("SERVICE_PGSQL_DBURL is required")
	}
	return repo.NewLedger(st.PG), func() { _ = st.Close(context.Background()) }, nil
}

// run opens the service, invokes call and prints its result
// the exit status is a failure when call errors or ok reports false
func run[T any](ctx context.Context, a *app, call func(context.Context, domain.ServicePort) (T, error), ok func(T) bool) subcommands.ExitStatus {
	svc, done, err := a.openService(ctx)
	if err != nil {
		return a.fail(err)
	}
	defer done()

	res, err := call(ctx, svc)
	if err != nil {
		return a.fail(err)
	}
	if err := a.print(res); err != nil {
		return subcommands.ExitFailure
	}
	if !ok(res) {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// errorBody mirrors the API error envelope closely enough for scripts
type errorBody struct {
	Error     perr.Wire `json:"error"`
	Status    int       `json:"status"`
	Retryable bool      `json:"retryable"`
}

func (a *app) fail(err error) subcommands.ExitStatus {
	status, wire := perr.HTTP(err)
	_ = a.print(errorBody{Error: wire, Status: status, Retryable: perr.Retryable(err)})
	if perr.IsCode(err, perr.ErrorCodeValidation) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// accountFlags binds the login fields; defaults come from MEROSHARE_*
type accountFlags struct {
	dpID, username, password string
	show                     bool
}

func (f *accountFlags) set(fs *flag.FlagSet, env config.Conf) {
	fs.StringVar(&f.dpID, "dp", env.MayString("DP_ID", ""), "depository participant id (MEROSHARE_DP_ID)")
	fs.StringVar(&f.username, "user", env.MayString("USERNAME", ""), "portal username (MEROSHARE_USERNAME)")
	fs.StringVar(&f.password, "password", env.MayString("PASSWORD", ""), "portal password (MEROSHARE_PASSWORD)")
	fs.BoolVar(&f.show, "show", false, "show the browser window")
}

func (f *accountFlags) account() domain.Account {
	return domain.Account{DPID: f.dpID, Username: f.username, Password: f.password}
}

func (f *accountFlags) options() domain.AutomationOptions {
	return domain.AutomationOptions{ShowBrowser: f.show}
}

func (a *app) env() config.Conf { return a.cfg.Prefix("MEROSHARE_") }
