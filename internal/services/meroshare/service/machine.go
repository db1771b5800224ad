package service

import (
	"context"
	"errors"
	"strconv"

	"mywallet/internal/adapters/browser"
	"mywallet/internal/adapters/meroshare"
	perr "mywallet/internal/platform/errors"
	"mywallet/internal/platform/logger"
	"mywallet/internal/services/meroshare/domain"
)

// State is a step of the apply flow
type State string

// Apply flow states; the last six are terminal
const (
	StateStart         State = "start"
	StateLoggedIn      State = "logged_in"
	StateSectionLoaded State = "section_loaded"
	StateMatched       State = "matched"
	StateForm          State = "form"
	StateTermsAccepted State = "terms_accepted"
	StatePINEntry      State = "pin_entry"
	StateSubmitted     State = "submitted"

	StateSuccess        State = "success"
	StateFailed         State = "failed"
	StateUnconfirmed    State = "unconfirmed"
	StateAlreadyApplied State = "already_applied"
	StateNotFound       State = "not_found"
	StateNoOpenIssues   State = "no_open_issues"
)

var terminal = map[State]domain.Status{
	StateSuccess:        domain.StatusApplied,
	StateFailed:         domain.StatusRejected,
	StateUnconfirmed:    domain.StatusUnconfirmed,
	StateAlreadyApplied: domain.StatusAlreadyApplied,
	StateNotFound:       domain.StatusNotFound,
	StateNoOpenIssues:   domain.StatusNoOpenIssues,
}

// Terminal reports whether the flow stops at s
func (s State) Terminal() bool {
	_, ok := terminal[s]
	return ok
}

// UnconfirmedMessage is reported when the submission outcome was never observed
const UnconfirmedMessage = "Applied but unconfirmed - check manually"

// machine drives one apply attempt. Handlers are pure steps; only run moves between states
type machine struct {
	p      *meroshare.Portal
	in     domain.ApplyInput
	minQty int

	state    State
	trail    []string
	handlers map[State]func(context.Context) (State, error)

	match    Match
	quantity string
	message  string
}

func newMachine(p *meroshare.Portal, in domain.ApplyInput, minQty int) *machine {
	m := &machine{p: p, in: in, minQty: minQty, state: StateStart}
	m.handlers = map[State]func(context.Context) (State, error){
		StateStart:         m.login,
		StateLoggedIn:      m.openSection,
		StateSectionLoaded: m.discover,
		StateMatched:       m.act,
		StateForm:          m.fillForm,
		StateTermsAccepted: m.proceed,
		StatePINEntry:      m.submit,
		StateSubmitted:     m.confirm,
	}
	return m
}

// run dispatches until a terminal state; a handler error stops the flow where it happened
func (m *machine) run(ctx context.Context) error {
	log := logger.C(ctx)
	m.trail = append(m.trail, string(m.state))
	for !m.state.Terminal() {
		h, ok := m.handlers[m.state]
		if !ok {
			return perr.Automationf("no handler for state %s", m.state)
		}
		next, err := h(ctx)
		if err != nil {
			log.Debug().Str("state", string(m.state)).Err(err).Msg("apply step failed")
			return perr.WithOp(err, string(m.state))
		}
		log.Debug().Str("from", string(m.state)).Str("to", string(next)).Msg("transition")
		m.state = next
		m.trail = append(m.trail, string(next))
	}
	return nil
}

// outcome renders the terminal state
func (m *machine) outcome() domain.ApplicationOutcome {
	st := terminal[m.state]
	out := domain.ApplicationOutcome{
		Success:    st.Confirmed(),
		Status:     st,
		Message:    m.message,
		Quantity:   m.quantity,
		Company:    m.match.Entry.Name,
		StatusCode: st.HTTPStatus(),
		Trail:      append([]string(nil), m.trail...),
	}
	switch st {
	case domain.StatusAlreadyApplied:
		out.AlreadyApplied = true
	case domain.StatusNotFound, domain.StatusNoOpenIssues:
		out.Discovered = m.match.Discovered
	}
	return out
}

func (m *machine) login(ctx context.Context) (State, error) {
	if err := m.p.Login(ctx, m.in.DPID, m.in.Username, m.in.Password); err != nil {
		return "", err
	}
	return StateLoggedIn, nil
}

func (m *machine) openSection(ctx context.Context) (State, error) {
	if _, err := m.p.GotoSection(ctx, meroshare.SectionApply); err != nil {
		return "", err
	}
	return StateSectionLoaded, nil
}

func (m *machine) discover(ctx context.Context) (State, error) {
	l, err := m.p.ScanListing(ctx)
	if err != nil {
		return "", err
	}
	m.match = Discover(l, m.in.Company, meroshare.ActionApply, meroshare.ActionEdit)
	logger.C(ctx).Debug().
		Str("kind", string(m.match.Kind)).
		Int("scanned", len(m.match.Discovered)).
		Str("matched", m.match.Entry.Name).
		Msg("discovery")

	switch m.match.Kind {
	case MatchNoOpenIssues:
		m.message = "No active IPOs found today"
		return StateNoOpenIssues, nil
	case MatchNotFound:
		m.message = notFoundMessage(m.match.Discovered)
		return StateNotFound, nil
	}
	return StateMatched, nil
}

// act clicks the matched entry's action. The edit branch reads the applied quantity and
// stops; nothing on that path can reach a submit button
func (m *machine) act(ctx context.Context) (State, error) {
	if m.match.Kind == MatchEdit {
		if err := m.p.Act(ctx, m.match.Entry, meroshare.ActionEdit); err != nil {
			return "", err
		}
		qty, err := m.p.AppliedQuantity(ctx)
		if err != nil {
			return "", err
		}
		m.quantity = qty
		m.message = "Already applied"
		if qty != "" {
			m.message = "Already applied for " + qty + " kitta"
		}
		return StateAlreadyApplied, nil
	}

	if err := m.p.Act(ctx, m.match.Entry, meroshare.ActionApply); err != nil {
		return "", err
	}
	if err := m.p.AwaitForm(ctx); err != nil {
		return "", err
	}
	return StateForm, nil
}

// resolveQuantity keeps an explicit positive request, else the detected minimum, else the fallback
func resolveQuantity(requested, detected int, found bool, fallback int) int {
	if requested > 0 {
		return requested
	}
	if found && detected > 0 {
		return detected
	}
	return fallback
}

func (m *machine) fillForm(ctx context.Context) (State, error) {
	log := logger.C(ctx)

	detected, found, err := m.p.MinimumQuantity(ctx)
	if err != nil {
		return "", err
	}
	if !found {
		log.Warn().Int("fallback", m.minQty).Msg("minimum quantity not shown; using fallback")
	}
	qty := resolveQuantity(m.in.Quantity, detected, found, m.minQty)

	bank, err := m.p.SelectBank(ctx)
	if err != nil {
		return "", err
	}
	if err := m.p.Settle(ctx); err != nil {
		return "", err
	}
	if _, ok, err := m.p.SelectAccount(ctx); err != nil {
		return "", err
	} else if !ok {
		log.Warn().Msg("account selector absent; continuing")
	}

	if err := m.p.FillKitta(ctx, qty); err != nil {
		return "", err
	}
	if err := m.p.FillCRN(ctx, m.in.CRN); err != nil {
		return "", err
	}
	if err := m.p.AcceptDisclaimer(ctx); err != nil {
		return "", err
	}

	m.quantity = strconv.Itoa(qty)
	log.Debug().Int("quantity", qty).Int("detected_min", detected).Str("bank", bank.Label).Msg("form filled")
	return StateTermsAccepted, nil
}

func (m *machine) proceed(ctx context.Context) (State, error) {
	if err := m.p.Proceed(ctx); err != nil {
		return "", err
	}
	if err := m.p.AwaitPIN(ctx); err != nil {
		return "", err
	}
	return StatePINEntry, nil
}

func (m *machine) submit(ctx context.Context) (State, error) {
	if err := m.p.EnterPIN(ctx, m.in.PIN); err != nil {
		return "", err
	}
	if err := m.p.Submit(ctx); err != nil {
		if errors.Is(err, browser.ErrNoElement) {
			return "", err
		}
		// the press may have reached the portal before the driver failed
		logger.C(ctx).Warn().Err(err).Msg("submit click failed after dispatch")
		m.message = UnconfirmedMessage
		return StateUnconfirmed, nil
	}
	return StateSubmitted, nil
}

// confirm waits for the toast. From here on the application may exist on the portal,
// so any failure to observe it is reported as unconfirmed and never as an error
func (m *machine) confirm(ctx context.Context) (State, error) {
	kind, text, err := m.p.AwaitToast(ctx)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("confirmation wait failed after submit")
		kind = meroshare.ToastNone
	}
	switch kind {
	case meroshare.ToastSuccess:
		m.message = text
		if m.message == "" {
			m.message = "Share applied successfully"
		}
		return StateSuccess, nil
	case meroshare.ToastError:
		m.message = text
		if m.message == "" {
			m.message = "Application rejected by the portal"
		}
		return StateFailed, nil
	}
	m.message = UnconfirmedMessage
	return StateUnconfirmed, nil
}
