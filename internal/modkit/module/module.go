// Package module defines the contract for API modules and a registry of the
// modules a process mounted
package module

import phttp "mywallet/internal/platform/net/http"

// Module mounts routes and may expose ports for other modules
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
