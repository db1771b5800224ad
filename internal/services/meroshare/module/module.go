// Package module wires the MeroShare automation service into the API using modkit
package module

import (
	"mywallet/internal/adapters/browser"
	modkit "mywallet/internal/modkit"
	"mywallet/internal/modkit/httpkit"
	"mywallet/internal/platform/logger"
	"mywallet/internal/platform/net/middleware"

	"mywallet/internal/services/meroshare/domain"
	"mywallet/internal/services/meroshare/guardrails"
	mhttp "mywallet/internal/services/meroshare/http"
	"mywallet/internal/services/meroshare/repo"
	"mywallet/internal/services/meroshare/service"
)

// Module implements the meroshare API module
type Module struct {
	built    modkit.Built
	auth     middleware.AuthPort
	inflight *guardrails.Inflight
	svc      service.Service
}

// Ports lets callers inject a browser provider; tests use a scripted one
type Ports struct {
	Provider browser.Provider
}

// New constructs the meroshare module. It panics on an unreadable locators file or a malformed token list
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meroshare"),
		modkit.WithPrefix("/meroshare"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)
	log := logger.Named("meroshare")

	var provider browser.Provider = browser.NewRodProvider()
	if p, ok := b.Ports.(Ports); ok && p.Provider != nil {
		provider = p.Provider
	}

	var ledger domain.LedgerPort
	if deps.PG != nil {
		ledger = repo.NewLedger(deps.PG)
	} else if cfg.LedgerGate {
		log.Warn().Msg("MERO_LEDGER_GATE set without a database; gate disabled")
	}

	so, err := cfg.Service(provider, ledger)
	if err != nil {
		panic(err)
	}

	var auth middleware.AuthPort
	if len(cfg.APITokens) > 0 {
		fn, err := httpkit.StaticTokens(cfg.APITokens)
		if err != nil {
			panic(err)
		}
		auth = httpkit.NewPortFunc(fn)
	} else {
		log.Warn().Msg("MERO_API_TOKENS not set; automation routes are open")
	}

	m := &Module{
		built:    b,
		auth:     auth,
		inflight: guardrails.NewInflight(),
		svc:      service.New(so),
	}
	log.Info().
		Str("mode", string(cfg.Mode)).
		Str("base_url", cfg.BaseURL).
		Dur("call_timeout", cfg.CallTimeout).
		Bool("ledger", ledger != nil).
		Bool("ledger_gate", cfg.LedgerGate && ledger != nil).
		Int("api_tokens", len(cfg.APITokens)).
		Msg("meroshare module ready")

	return m
}

// MountRoutes mounts the automation routes under the module prefix, behind bearer auth when tokens are set
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) {
		httpkit.Protected(rr, m.auth, func(pr httpkit.Router) {
			mhttp.Register(pr, m.svc, m.inflight)
		})
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports exposes the service port for cross module lookups
func (m *Module) Ports() any { return m.svc }
