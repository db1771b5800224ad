// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyCaller ctxKey = "caller"

// WithRequest annotates context with the request id
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	return ctx
}

// WithCaller annotates context with the name of the authenticated API token
func WithCaller(ctx context.Context, caller string) context.Context {
	if caller != "" {
		ctx = context.WithValue(ctx, keyCaller, caller)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// Caller returns the caller name on the context if present
func Caller(ctx context.Context) string {
	if v, ok := ctx.Value(keyCaller).(string); ok {
		return v
	}
	return ""
}
