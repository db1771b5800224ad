package meroshare

import (
	"context"
	"time"

	perr "mywallet/internal/platform/errors"
	"mywallet/internal/platform/logger"
)

// Condition is one named page state a wait can settle on
type Condition struct {
	Name  string
	Check func(ctx context.Context) (bool, error)
}

// ErrWaitTimeout is returned when no condition held before the shared timeout
var ErrWaitTimeout = perr.New(perr.ErrorCodeTimeout, "wait timed out")

// WaitFirst polls conds in order every tick until one holds and returns its name.
// All conditions share one timeout. Probe errors count as "not yet" since the page may be
// mid-navigation; the last one is logged when the wait expires.
// Cancellation of the parent ctx is returned as is so callers can tell it from a timeout
func WaitFirst(ctx context.Context, timeout, every time.Duration, conds ...Condition) (string, error) {
	if len(conds) == 0 {
		return "", perr.Automationf("wait without conditions")
	}
	if every <= 0 {
		every = 200 * time.Millisecond
	}

	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tick := time.NewTicker(every)
	defer tick.Stop()

	var lastErr error
	for {
		for _, c := range conds {
			ok, err := c.Check(wctx)
			if err != nil {
				lastErr = err
				continue
			}
			if ok {
				return c.Name, nil
			}
		}

		select {
		case <-wctx.Done():
			if err := ctx.Err(); err != nil {
				return "", err
			}
			if lastErr != nil {
				logger.C(ctx).Debug().Err(lastErr).Dur("timeout", timeout).Msg("wait expired with probe errors")
			}
			return "", ErrWaitTimeout
		case <-tick.C:
		}
	}
}

// sleep pauses for d unless ctx ends first
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
