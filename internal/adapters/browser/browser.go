// Package browser acquires a single automated browser page per call.
//
// Contract:
//   - One Session per call, one Page per Session. Callers close the Session exactly once.
//   - Page methods are instant probes or single actions; waiting is the caller's job so
//     timeouts stay visible at the flow level.
//   - Snapshot returns live HTML with form state reflected into attributes, so all reading
//     is done on plain markup with goquery.
//   - The provider never retries; a failed launch is an unavailable error.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	perr "mywallet/internal/platform/errors"
)

// Mode selects how the browser binary is obtained
type Mode string

const (
	// ModeProduction downloads and runs a managed headless build
	ModeProduction Mode = "production"
	// ModeLocal probes an installed browser on the developer host
	ModeLocal Mode = "local"
)

// ParseMode maps a config string onto a Mode, defaulting to production
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeLocal)) {
		return ModeLocal
	}
	return ModeProduction
}

// Options describe the environment a session is acquired for.
// Resolved once at wiring time and copied per call
type Options struct {
	Mode    Mode
	Visible bool
	// BinHint is an explicit executable path tried first in local mode
	BinHint string
}

// Key names a keyboard key understood by Page.Press
type Key string

// KeyEnter confirms dropdowns and forms
const KeyEnter Key = "Enter"

// Page is the single tab a session exposes
type Page interface {
	// Navigate loads url and waits for the document to load
	Navigate(ctx context.Context, url string) error
	// URL returns the current location including the hash route
	URL(ctx context.Context) (string, error)
	// Has reports whether selector matches at least one element right now
	Has(ctx context.Context, selector string) (bool, error)
	// Snapshot returns the document HTML with live input values, checked and selected state
	// written back into attributes
	Snapshot(ctx context.Context) (string, error)
	// Click clicks the first element matching selector
	Click(ctx context.Context, selector string) error
	// ClickText clicks the first element matching selector whose text contains text (case-insensitive)
	ClickText(ctx context.Context, selector, text string) error
	// ClickWithin clicks inside the index-th container match: the first target whose text contains
	// text, or the first target when text is empty. A non-empty expect must still appear in the
	// container's text, otherwise nothing is clicked and the error wraps ErrMoved
	ClickWithin(ctx context.Context, container string, index int, expect, target, text string) error
	// Type replaces the value of the first input matching selector, one key event per rune
	Type(ctx context.Context, selector, text string, delay time.Duration) error
	// Select chooses the option with the given value on the first select matching selector
	Select(ctx context.Context, selector, value string) error
	// Check ticks the first checkbox matching selector if it is not already ticked
	Check(ctx context.Context, selector string) error
	// Press sends a key to the focused element
	Press(ctx context.Context, key Key) error
}

// Session owns a browser process and its page
type Session interface {
	Page() Page
	Close() error
}

// Provider acquires sessions
type Provider interface {
	Acquire(ctx context.Context, opts Options) (Session, error)
}

// ErrNoElement is wrapped by every "nothing matched" error from a Page
var ErrNoElement = perr.New(perr.ErrorCodeAutomation, "no matching element")

// Missing builds an error for a selector that matched nothing
func Missing(selector string) error {
	return perr.WithField(
		perr.Wrap(ErrNoElement, perr.ErrorCodeAutomation, fmt.Sprintf("nothing matches %q", selector)),
		selector,
	)
}

// ErrMoved is wrapped when a container no longer shows what it was picked for
var ErrMoved = perr.New(perr.ErrorCodeAutomation, "container changed")

// Moved builds an error for the index-th container match that stopped showing expect
func Moved(container string, index int, expect string) error {
	return perr.WithField(
		perr.Wrap(ErrMoved, perr.ErrorCodeAutomation, fmt.Sprintf("%s #%d no longer shows %q", container, index, expect)),
		container,
	)
}

// ContainsFold reports whether s contains sub ignoring case and runs of whitespace
func ContainsFold(s, sub string) bool {
	return strings.Contains(squash(s), squash(sub))
}

func squash(s string) string { return strings.ToLower(strings.Join(strings.Fields(s), " ")) }
