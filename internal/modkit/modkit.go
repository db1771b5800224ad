// Package modkit wires API modules: shared deps, build options and mounting
package modkit

import (
	"mywallet/internal/modkit/module"
	"mywallet/internal/modkit/repokit"
	"mywallet/internal/platform/config"
	"mywallet/internal/platform/logger"
)

// Module is the contract every API module satisfies
type Module = module.Module

// Deps holds core dependencies passed to modules
type Deps struct {
	Log logger.Logger
	Cfg config.Conf

	// PG is nil when no database is configured; modules must degrade
	PG repokit.TxRunner
}
