package main

import (
	"context"
	"errors"
	"flag"

	perr "mywallet/internal/platform/errors"
	"mywallet/internal/platform/store"

	"mywallet/internal/services/meroshare/domain"
	"mywallet/internal/services/meroshare/repo"

	"github.com/google/subcommands"
)

type loginCmd struct {
	*app
	acct accountFlags
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "check that the portal accepts the credentials" }
func (*loginCmd) Usage() string {
	return `mywallet-meroshare login [-dp <id>] [-user <name>] [-password <secret>] [-show]

  Logs in and reports whether the dashboard was reached.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) { c.acct.set(f, c.env()) }

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	in := domain.LoginInput{Account: c.acct.account(), Options: c.acct.options()}
	return run(ctx, c.app,
		func(ctx context.Context, s domain.ServicePort) (domain.LoginResult, error) { return s.TestLogin(ctx, in) },
		func(r domain.LoginResult) bool { return r.Success },
	)
}

type applyCmd struct {
	*app
	acct     accountFlags
	crn, pin string
	company  string
	quantity int
}

func (*applyCmd) Name() string     { return "apply" }
func (*applyCmd) Synopsis() string { return "apply for an open IPO, or report an existing application" }
func (*applyCmd) Usage() string {
	return `mywallet-meroshare apply -company <name> [-quantity <kitta>] [-crn <crn>] [-pin <pin>] [account flags]

  Finds the issue among the open ones and submits an application.
  A quantity of 0 applies for the minimum shown on the form.
  Exits non-zero unless the portal confirms an application.
`
}

func (c *applyCmd) SetFlags(f *flag.FlagSet) {
	env := c.env()
	c.acct.set(f, env)
	f.StringVar(&c.crn, "crn", env.MayString("CRN", ""), "bank CRN (MEROSHARE_CRN)")
	f.StringVar(&c.pin, "pin", env.MayString("PIN", ""), "transaction PIN (MEROSHARE_PIN)")
	f.StringVar(&c.company, "company", "", "issue name, matched loosely")
	f.IntVar(&c.quantity, "quantity", 0, "kitta to apply for; 0 means the minimum")
}

func (c *applyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.company == "" && f.NArg() > 0 {
		c.company = f.Arg(0)
	}
	in := domain.ApplyInput{
		Credentials: domain.Credentials{Account: c.acct.account(), CRN: c.crn, PIN: c.pin},
		Company:     c.company,
		Quantity:    c.quantity,
		Options:     c.acct.options(),
	}
	return run(ctx, c.app,
		func(ctx context.Context, s domain.ServicePort) (domain.ApplicationOutcome, error) { return s.Apply(ctx, in) },
		func(o domain.ApplicationOutcome) bool { return o.Status.Confirmed() },
	)
}

type allotmentCmd struct {
	*app
	acct    accountFlags
	company string
}

func (*allotmentCmd) Name() string     { return "allotment" }
func (*allotmentCmd) Synopsis() string { return "read the allotment result of an applied issue" }
func (*allotmentCmd) Usage() string {
	return `mywallet-meroshare allotment -company <name> [account flags]
`
}

func (c *allotmentCmd) SetFlags(f *flag.FlagSet) {
	c.acct.set(f, c.env())
	f.StringVar(&c.company, "company", "", "issue name, matched loosely")
}

func (c *allotmentCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.company == "" && f.NArg() > 0 {
		c.company = f.Arg(0)
	}
	in := domain.AllotmentInput{Account: c.acct.account(), Company: c.company, Options: c.acct.options()}
	return run(ctx, c.app,
		func(ctx context.Context, s domain.ServicePort) (domain.AllotmentResult, error) {
			return s.CheckAllotment(ctx, in)
		},
		func(r domain.AllotmentResult) bool { return r.Found },
	)
}

type portfolioCmd struct {
	*app
	acct accountFlags
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "list current holdings" }
func (*portfolioCmd) Usage() string {
	return `mywallet-meroshare portfolio [account flags]
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) { c.acct.set(f, c.env()) }

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	in := domain.PortfolioInput{Account: c.acct.account(), Options: c.acct.options()}
	return run(ctx, c.app,
		func(ctx context.Context, s domain.ServicePort) (domain.PortfolioResult, error) {
			return s.SyncPortfolio(ctx, in)
		},
		func(domain.PortfolioResult) bool { return true },
	)
}

type historyCmd struct {
	*app
	dpID, username string
	limit          int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list recorded apply outcomes for an account" }
func (*historyCmd) Usage() string {
	return `mywallet-meroshare history [-dp <id>] [-user <name>] [-limit <n>]

  Reads the apply ledger, newest first. Requires SERVICE_PGSQL_DBURL.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	env := c.env()
	f.StringVar(&c.dpID, "dp", env.MayString("DP_ID", ""), "depository participant id (MEROSHARE_DP_ID)")
	f.StringVar(&c.username, "user", env.MayString("USERNAME", ""), "portal username (MEROSHARE_USERNAME)")
	f.IntVar(&c.limit, "limit", repo.DefaultHistoryLimit, "rows to show")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	l, done, err := c.openLedger(ctx)
	if err != nil {
		return c.fail(err)
	}
	defer done()

	recs, err := l.History(ctx, c.dpID, c.username, c.limit)
	if err != nil {
		return c.fail(err)
	}
	if err := c.print(map[string]any{"records": recs, "count": len(recs)}); err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type migrateCmd struct {
	*app
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply ledger schema migrations" }
func (*migrateCmd) Usage() string {
	return `mywallet-meroshare migrate

  Requires SERVICE_PGSQL_DBURL.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (c *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	st, err := c.openStore(ctx)
	if err != nil {
		return c.fail(err)
	}
	defer func() { _ = st.Close(context.Background()) }()

	db, err := st.SQLDB()
	if errors.Is(err, store.ErrDisabled) {
		return c.fail(perr.Validationf("SERVICE_PGSQL_DBURL is required"))
	}
	if err != nil {
		return c.fail(err)
	}
	applied, err := repo.Migrate(ctx, db)
	if err != nil {
		return c.fail(err)
	}
	if err := c.print(map[string]any{"applied": applied}); err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
