// Package httpkit provides tiny HTTP helpers and adapters
package httpkit

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	perrs "mywallet/internal/platform/errors"
)

// TokenFunc resolves a bearer token to a caller name
type TokenFunc func(token string) (caller string, err error)

// Port implements middleware.AuthPort by reading Authorization and delegating to a TokenFunc
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a simple parser function
func NewPortFunc(fn TokenFunc) *Port {
	return &Port{parse: fn}
}

// Parse extracts the caller from an Authorization Bearer token
// returns unauthorized when the header is missing, malformed, or the parser returns an error
func (p *Port) Parse(r *http.Request) (string, error) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	if s == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	const prefix = "bearer"
	if !strings.HasPrefix(strings.ToLower(s), prefix) {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	raw := strings.TrimSpace(s[len(prefix):])
	if raw == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}

	if p.parse == nil {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}

	caller, err := p.parse(raw)
	if err != nil {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	return caller, nil
}

// StaticTokens builds a TokenFunc from "name:token" pairs.
// Tokens are compared in constant time; the matching name becomes the caller
func StaticTokens(pairs []string) (TokenFunc, error) {
	type entry struct{ name, token []byte }
	entries := make([]entry, 0, len(pairs))
	for _, p := range pairs {
		name, tok, ok := strings.Cut(strings.TrimSpace(p), ":")
		if !ok || name == "" || tok == "" {
			return nil, fmt.Errorf("api token %q: want name:token", name)
		}
		entries = append(entries, entry{name: []byte(name), token: []byte(tok)})
	}
	return func(token string) (string, error) {
		got := []byte(token)
		match := ""
		for _, e := range entries {
			if subtle.ConstantTimeCompare(got, e.token) == 1 && match == "" {
				match = string(e.name)
			}
		}
		if match == "" {
			return "", perrs.Unauthorizedf("unknown token")
		}
		return match, nil
	}, nil
}
