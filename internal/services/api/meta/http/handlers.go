// Package http serves the meta endpoints
package http

import (
	"context"
	"net/http"
	"slices"
	"time"

	"mywallet/internal/core/version"
	"mywallet/internal/modkit/httpkit"
	"mywallet/internal/modkit/module"
)

// Pinger is a dependency readiness can probe
type Pinger interface {
	Ping(context.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time

	// Checks are probed by /ready in name order. A nil Pinger is reported as skipped
	Checks map[string]Pinger
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck is one dependency probe; Status is ok, fail or skipped
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadyResponse is ok unless a configured dependency failed
type ReadyResponse struct {
	Status string       `json:"status"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// ServiceResponse is the uptime and module listing
type ServiceResponse struct {
	Name    string   `json:"name"`
	Started string   `json:"started"`
	Uptime  int64    `json:"uptime"`
	Modules []string `json:"modules"`
}

const readyTimeout = 2 * time.Second

type handlers struct{ deps Deps }

// Register mounts health, ready, version and service on r
func Register(r httpkit.Router, d Deps) {
	h := handlers{deps: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

func (h handlers) health(*http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: stamp(h.deps.StartedAt),
		Now:     stamp(time.Now()),
	}, nil
}

// ready answers 503 when any configured dependency fails its ping
func (h handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	res := ReadyResponse{Status: "ok", Checks: []ReadyCheck{}, Now: stamp(time.Now())}
	names := make([]string, 0, len(h.deps.Checks))
	for name := range h.deps.Checks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		c := ReadyCheck{Name: name, Status: "ok"}
		switch p := h.deps.Checks[name]; {
		case p == nil:
			c.Status = "skipped"
		default:
			if err := p.Ping(ctx); err != nil {
				c.Status, c.Error = "fail", err.Error()
				res.Status = "fail"
			}
		}
		res.Checks = append(res.Checks, c)
	}

	if res.Status != "ok" {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: res}, nil
	}
	return res, nil
}

func (h handlers) version(*http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}

func (h handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: stamp(h.deps.StartedAt),
		Uptime:  int64(time.Since(h.deps.StartedAt) / time.Second),
		Modules: module.Names(),
	}, nil
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }
