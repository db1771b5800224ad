// Package guardrails holds cross cutting safety helpers for MeroShare automation calls
package guardrails

import (
	"context"
	"time"
)

// Timeouts is the budget bundle for a single automation call.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Call is the overall budget from browser launch to teardown
	Call time.Duration

	// Ledger caps each ledger read or write
	Ledger time.Duration
}

// ForCall returns a context limited by the call budget without extending any parent deadline
func ForCall(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Call)
}

// ForLedger returns a sub context for a ledger round trip.
// It survives cancellation of the call so an outcome observed at the last moment is still recorded
func ForLedger(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	d := t.Ledger
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(context.WithoutCancel(parent), d)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		d := time.Until(dl)
		if d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout chooses the tighter of the requested duration and any parent remainder
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
