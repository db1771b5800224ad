// Package service contains the MeroShare automation workflows: login check, IPO apply,
// allotment check and portfolio sync. Every call owns exactly one browser session
package service

import (
	"context"
	"time"

	"mywallet/internal/adapters/browser"
	"mywallet/internal/adapters/meroshare"
	"mywallet/internal/platform/logger"
	"mywallet/internal/platform/net/http/bind"
	"mywallet/internal/services/meroshare/domain"
	"mywallet/internal/services/meroshare/guardrails"

	"github.com/google/uuid"
)

// Service is the public service port
type Service interface{ domain.ServicePort }

// DefaultMinQuantity is applied when the form shows no minimum
const DefaultMinQuantity = 10

// DefaultGateWindow bounds how old a ledger record may be and still gate an apply.
// Issue windows close within days; a later FPO or rights issue under the same name must reach the portal
const DefaultGateWindow = 14 * 24 * time.Hour

// Options control service behavior
type Options struct {
	// Provider is required
	Provider browser.Provider

	// Browser is the environment descriptor, resolved once at wiring time
	Browser browser.Options

	// Portal configures the navigator (base url, locators, waits)
	Portal meroshare.Config

	Timeouts guardrails.Timeouts

	// MinQuantity is the fallback when the form shows no minimum; zero means DefaultMinQuantity
	MinQuantity int

	// Ledger is optional; when set every apply outcome is recorded
	Ledger domain.LedgerPort

	// LedgerGate short-circuits Apply on a prior confirmed ledger record
	LedgerGate bool
	// GateWindow is how long a confirmed record gates; zero means DefaultGateWindow
	GateWindow time.Duration
}

// Svc implements the service port
type Svc struct {
	provider browser.Provider
	browser  browser.Options
	portal   meroshare.Config
	timeouts guardrails.Timeouts
	minQty   int
	ledger   domain.LedgerPort
	gate     bool
	window   time.Duration
	log      logger.Logger

	// seams
	newRunID func() string
	now      func() time.Time
}

var _ Service = (*Svc)(nil)

// New constructs the service
func New(opt Options) *Svc {
	if opt.Provider == nil {
		panic("meroshare.Service requires a non nil browser Provider")
	}
	if opt.MinQuantity <= 0 {
		opt.MinQuantity = DefaultMinQuantity
	}
	if opt.GateWindow <= 0 {
		opt.GateWindow = DefaultGateWindow
	}
	return &Svc{
		provider: opt.Provider,
		browser:  opt.Browser,
		portal:   opt.Portal,
		timeouts: opt.Timeouts,
		minQty:   opt.MinQuantity,
		ledger:   opt.Ledger,
		gate:     opt.LedgerGate && opt.Ledger != nil,
		window:   opt.GateWindow,
		log:      *logger.Named("meroshare"),
		newRunID: uuid.NewString,
		now:      time.Now,
	}
}

// validate rejects missing or malformed input before anything is launched
func validate(in any) error {
	return bind.Struct(in)
}

// TestLogin performs the login sequence only
func (s *Svc) TestLogin(ctx context.Context, in domain.LoginInput) (domain.LoginResult, error) {
	if err := validate(in); err != nil {
		return domain.LoginResult{}, err
	}
	runID, err := s.session(ctx, "login", in.Options, func(ctx context.Context, p *meroshare.Portal) error {
		return p.Login(ctx, in.DPID, in.Username, in.Password)
	})
	if err != nil {
		return domain.LoginResult{}, err
	}
	s.log.Info().Str("run_id", runID).Str("dp", in.DPID).Str("username", in.Username).Msg("login ok")
	return domain.LoginResult{Success: true, Message: "Login successful", RunID: runID}, nil
}
