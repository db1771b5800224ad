// Package module mounts the meta endpoints: health, readiness, version and service info
package module

import (
	"time"

	modkit "mywallet/internal/modkit"
	"mywallet/internal/modkit/httpkit"
	str "mywallet/internal/platform/strings"

	metahttp "mywallet/internal/services/api/meta/http"
)

// ServiceName is reported by /meta endpoints
const ServiceName = "mywallet-api"

// Module implements modkit.Module
type Module struct {
	built modkit.Built
	deps  metahttp.Deps
}

// New constructs the meta module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	hd := metahttp.Deps{ServiceName: ServiceName, StartedAt: time.Now(), Checks: map[string]metahttp.Pinger{"pg": nil}}
	// the ledger adapter pings; a nil TxRunner must stay a nil Pinger
	if p, ok := deps.PG.(metahttp.Pinger); ok {
		hd.Checks["pg"] = p
	}
	return &Module{built: b, deps: hd}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Name implements modkit.Module
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta module name") }

// Ports implements modkit.Module; meta exports nothing
func (m *Module) Ports() any { return nil }
