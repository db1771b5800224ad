package service

import (
	"context"
	"errors"
	"runtime/debug"

	"mywallet/internal/adapters/meroshare"
	perr "mywallet/internal/platform/errors"
	"mywallet/internal/platform/logger"
	"mywallet/internal/services/meroshare/domain"
	"mywallet/internal/services/meroshare/guardrails"
)

// session is the call boundary. It acquires one browser session, hands a navigator to fn and
// releases the session exactly once on every path, panics included. Errors leaving it are
// always project errors
func (s *Svc) session(
	ctx context.Context,
	op string,
	ao domain.AutomationOptions,
	fn func(ctx context.Context, p *meroshare.Portal) error,
) (runID string, err error) {
	runID = s.newRunID()
	ctx = logger.WithRun(ctx, runID, op)
	ctx, cancel := guardrails.ForCall(ctx, s.timeouts)
	defer cancel()
	log := logger.C(ctx)

	opts := s.browser
	opts.Visible = opts.Visible || ao.ShowBrowser

	sess, err := s.provider.Acquire(ctx, opts)
	if err != nil {
		log.Error().Err(err).Str("mode", string(opts.Mode)).Msg("browser acquire failed")
		if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
			err = perr.Wrap(err, perr.ErrorCodeUnavailable, "Automation unavailable")
		}
		return runID, err
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("automation panic")
			err = perr.Newf(perr.ErrorCodeAutomation, "automation failed: %v", r)
		}
		if cerr := sess.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("browser close failed")
		}
	}()

	log.Debug().Bool("visible", opts.Visible).Msg("session acquired")
	return runID, boundary(ctx, fn(ctx, meroshare.New(sess.Page(), s.portal)))
}

// boundary converts whatever a flow returned into a project error
func boundary(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	log := logger.C(ctx)
	if e, ok := perr.As(err); ok {
		switch e.Code() {
		case perr.ErrorCodeAutomation, perr.ErrorCodeUnknown:
			log.Error().Err(err).Str("state", e.Op()).Str("field", e.Field()).Msg("automation failed")
		default:
			log.Info().Err(err).Str("state", e.Op()).Str("code", e.Code().String()).Msg("automation stopped")
		}
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn().Err(err).Msg("call budget exhausted")
		return perr.Wrap(err, perr.ErrorCodeTimeout, "call budget exhausted")
	case errors.Is(err, context.Canceled):
		return perr.Wrap(err, perr.ErrorCodeUnknown, "call canceled")
	}
	log.Error().Err(err).Msg("automation failed")
	return perr.Wrap(err, perr.ErrorCodeAutomation, "automation failed")
}
