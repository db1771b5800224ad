// Package httpkit is what modules use to mount routes. It re-exports the
// platform http types so modules do not import internal/platform/net/http
package httpkit

import (
	"net/http"

	phttp "mywallet/internal/platform/net/http"
)

type (
	// Envelope is the response body of every endpoint
	Envelope = phttp.Envelope

	// Response lets a handler choose its own status
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is the routing surface modules mount against
	Router = phttp.Router
)

// PostJSON mounts fn under POST path, decoding a T body first
func PostJSON[T any](r Router, path string, fn func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(fn))
}

// Get mounts a body-less fn under GET path
func Get(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Get(path, phttp.CallHandler(fn))
}
