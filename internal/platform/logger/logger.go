// Package logger owns the process zerolog logger and the request and run
// fields carried on a context
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"mywallet/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logging type passed around the project
type Logger = zerolog.Logger

// Options configures Init
type Options struct {
	Level        string // trace..panic; unknown means debug
	Format       string // console or json
	Service      string
	Component    string
	Writer       io.Writer // stdout when nil
	WithCaller   bool
	SampleEvery  int // keep one event in N when N > 1
	StaticFields map[string]string
}

// FromEnv reads LOG_* through raw, which does not log
func FromEnv() Options {
	env := raw.New().Prefix("LOG_")
	return Options{
		Level:       env.Get("LEVEL", "debug"),
		Format:      strings.ToLower(env.Get("FORMAT", "console")),
		Service:     env.Get("SERVICE", "mywallet"),
		Component:   env.Get("COMPONENT", ""),
		WithCaller:  env.GetBool("CALLER", false),
		SampleEvery: env.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	once sync.Once
	root *Logger
)

// Init builds the root logger. Only the first call, or the first Get, has any effect
func Init(opt Options) {
	once.Do(func() { root = build(opt) })
}

// Get returns the root logger, initialising it from the environment if needed
func Get() *Logger {
	Init(FromEnv())
	return root
}

func build(opt Options) *Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opt.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.DebugLevel
	}

	w := opt.Writer
	if w == nil {
		w = os.Stdout
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	fields := map[string]string{"service": opt.Service, "component": opt.Component}
	for k, v := range opt.StaticFields {
		fields[k] = v
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fields["go_version"] = bi.GoVersion
	}

	zc := zerolog.New(w).Level(lvl).With().Timestamp()
	for k, v := range fields {
		if v != "" {
			zc = zc.Str(k, v)
		}
	}
	if opt.WithCaller {
		zc = zc.Caller()
	}
	l := zc.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return &l
}

// Named returns a child of the root logger tagged with component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

// scope is what a context carries for C
type scope struct {
	requestID string
	caller    string
	runID     string
	op        string
}

type scopeKey struct{}

func scoped(ctx context.Context, fn func(*scope)) context.Context {
	s, _ := ctx.Value(scopeKey{}).(scope)
	fn(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithRequest records the inbound request id
func WithRequest(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return scoped(ctx, func(s *scope) { s.requestID = id })
}

// WithCaller records the authenticated API caller
func WithCaller(ctx context.Context, caller string) context.Context {
	if caller == "" {
		return ctx
	}
	return scoped(ctx, func(s *scope) { s.caller = caller })
}

// WithRun records an automation run and the operation it serves
func WithRun(ctx context.Context, runID, op string) context.Context {
	return scoped(ctx, func(s *scope) {
		if runID != "" {
			s.runID = runID
		}
		if op != "" {
			s.op = op
		}
	})
}

// C returns the root logger with whatever ctx recorded
func C(ctx context.Context) *Logger {
	s, ok := ctx.Value(scopeKey{}).(scope)
	if !ok {
		return Get()
	}
	zc := Get().With()
	for _, f := range [...][2]string{
		{"request_id", s.requestID},
		{"caller", s.caller},
		{"run_id", s.runID},
		{"op", s.op},
	} {
		if f[1] != "" {
			zc = zc.Str(f[0], f[1])
		}
	}
	l := zc.Logger()
	return &l
}
