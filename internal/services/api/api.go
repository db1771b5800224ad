// Package api provides the HTTP API for the application
package api

import (
	"mywallet/internal/platform/config"
	"mywallet/internal/platform/logger"
	phttp "mywallet/internal/platform/net/http"
	"mywallet/internal/platform/net/middleware"
	"mywallet/internal/platform/store"

	"mywallet/internal/modkit"
	"mywallet/internal/modkit/httpkit"
	"mywallet/internal/modkit/module"
	"mywallet/internal/modkit/swaggerkit"

	metamod "mywallet/internal/services/api/meta/module"
	meromod "mywallet/internal/services/meroshare/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool

	// Mods extend or replace the default module list (tests inject scripted providers here)
	Mods []module.Module
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
	}

	mods := opt.Mods
	if len(mods) == 0 {
		mods = []module.Module{
			metamod.New(deps),
			meromod.New(deps),
		}
	}

	// automation calls outlive the default request budget
	stack := httpkit.StackFromConfig(deps.Cfg, meromod.FromConfig(deps.Cfg).RequestTimeout())

	r.Use(middleware.Heartbeat("/health"))
	httpkit.MountAPIV1(r, httpkit.CommonStack(stack), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}
