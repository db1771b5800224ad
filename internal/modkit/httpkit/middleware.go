package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"mywallet/internal/platform/config"
	phttp "mywallet/internal/platform/net/http"
	"mywallet/internal/platform/net/middleware"
)

// DefaultRequestTimeout bounds a request when no timeout is configured
const DefaultRequestTimeout = 30 * time.Second

// Stack configures CommonStack
type Stack struct {
	// Timeout must exceed the slowest handler; automation calls run for minutes
	Timeout     time.Duration
	SlowRequest time.Duration
	MaxInFlight int
	CORSOrigins []string
}

// StackFromConfig reads API_SLOW_REQUEST, API_MAX_INFLIGHT and API_CORS_ORIGINS.
// timeout comes from the caller since it depends on the mounted modules
func StackFromConfig(c config.Conf, timeout time.Duration) Stack {
	ac := c.Prefix("API_")
	return Stack{
		Timeout:     timeout,
		SlowRequest: ac.MayDuration("SLOW_REQUEST", 2*time.Minute),
		MaxInFlight: ac.MayInt("MAX_INFLIGHT", 8),
		CORSOrigins: ac.MayCSV("CORS_ORIGINS", nil),
	}
}

// CommonStack returns the middleware applied to every /api route
func CommonStack(s Stack) []func(http.Handler) http.Handler {
	if s.Timeout <= 0 {
		s.Timeout = DefaultRequestTimeout
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.LogContext,
		middleware.RealIP(),
		middleware.AccessLog(s.SlowRequest),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: s.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Throttle(s.MaxInFlight),
		middleware.Timeout(s.Timeout),
	}
}

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}
