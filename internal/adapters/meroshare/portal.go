// Package meroshare drives the MeroShare portal through a browser.Page: login with the
// DP dropdown, section navigation, listing scans and the two-step ASBA form.
// All markup knowledge lives in Locators; all waits go through WaitFirst
package meroshare

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"mywallet/internal/adapters/browser"
	perr "mywallet/internal/platform/errors"
	"mywallet/internal/platform/logger"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the public portal
const DefaultBaseURL = "https://meroshare.cdsc.com.np"

// Section is a navigable area of the portal
type Section string

// Sections
const (
	SectionApply     Section = "apply"
	SectionReport    Section = "report"
	SectionPortfolio Section = "portfolio"
)

var routes = map[Section]string{
	SectionApply:     "/#/asba",
	SectionReport:    "/#/asba",
	SectionPortfolio: "/#/portfolio",
}

// Waits bounds every wait the navigator performs
type Waits struct {
	Login     time.Duration
	Section   time.Duration
	Toast     time.Duration
	Dropdown  time.Duration
	Populate  time.Duration
	Settle    time.Duration
	Keystroke time.Duration
	Poll      time.Duration
}

// DefaultWaits match what the portal needs on a slow day
func DefaultWaits() Waits {
	return Waits{
		Login:     30 * time.Second,
		Section:   30 * time.Second,
		Toast:     30 * time.Second,
		Dropdown:  5 * time.Second,
		Populate:  5 * time.Second,
		Settle:    1500 * time.Millisecond,
		Keystroke: 50 * time.Millisecond,
		Poll:      250 * time.Millisecond,
	}
}

// Config configures a Portal
type Config struct {
	BaseURL  string
	AuthPath string
	Locators Locators
	Waits    Waits
}

// Toast is the outcome banner shown after submission
type Toast string

// Toast kinds; ToastNone means nothing appeared in time
const (
	ToastSuccess Toast = "success"
	ToastError   Toast = "error"
	ToastNone    Toast = "none"
)

// Portal is the navigator bound to one page
type Portal struct {
	page browser.Page
	cfg  Config
	log  logger.Logger
}

// New binds a navigator to page; zero config fields fall back to defaults
func New(page browser.Page, cfg Config) *Portal {
	if page == nil {
		panic("meroshare.New: nil page")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.AuthPath == "" {
		cfg.AuthPath = "#/dashboard"
	}
	if cfg.Locators.Username == nil {
		cfg.Locators = DefaultLocators()
	}
	def := DefaultWaits()
	fill := func(d *time.Duration, v time.Duration) {
		if *d <= 0 {
			*d = v
		}
	}
	fill(&cfg.Waits.Login, def.Login)
	fill(&cfg.Waits.Section, def.Section)
	fill(&cfg.Waits.Toast, def.Toast)
	fill(&cfg.Waits.Dropdown, def.Dropdown)
	fill(&cfg.Waits.Populate, def.Populate)
	fill(&cfg.Waits.Poll, def.Poll)
	if cfg.Waits.Settle < 0 {
		cfg.Waits.Settle = 0
	}
	if cfg.Waits.Keystroke < 0 {
		cfg.Waits.Keystroke = 0
	}
	return &Portal{page: page, cfg: cfg, log: *logger.Named("meroshare")}
}

func (p *Portal) url(route string) string { return p.cfg.BaseURL + route }

// Login signs in and returns nil once the authenticated area is reached.
// Timeout is retryable; an error toast or the rate-limit phrase is an auth rejection
func (p *Portal) Login(ctx context.Context, dp, username, password string) error {
	loc := p.cfg.Locators
	log := logger.C(ctx).With().Str("dp", dp).Str("username", username).Logger()

	if err := p.page.Navigate(ctx, p.url("/#/login")); err != nil {
		return p.fail(ctx, err, "open login page")
	}
	if _, err := p.wait(ctx, p.cfg.Waits.Section, p.present("login_form", loc.Username)); err != nil {
		return p.fail(ctx, err, "login page did not load")
	}

	if err := p.chooseDP(ctx, dp); err != nil {
		return err
	}
	if err := p.fill(ctx, loc.Username, "username", username); err != nil {
		return err
	}
	if err := p.fill(ctx, loc.Password, "password", password); err != nil {
		return err
	}
	if err := p.click(ctx, loc.LoginSubmit, "login_submit"); err != nil {
		return err
	}

	which, err := p.wait(ctx, p.cfg.Waits.Login,
		Condition{Name: "authenticated", Check: func(ctx context.Context) (bool, error) {
			u, err := p.page.URL(ctx)
			return strings.Contains(u, p.cfg.AuthPath), err
		}},
		p.present("error_toast", loc.ErrorToast),
		Condition{Name: "rate_limited", Check: func(ctx context.Context) (bool, error) {
			_, ok, err := p.line(ctx, loc.Labels.RateLimit)
			return ok, err
		}},
	)
	if err != nil {
		return p.fail(ctx, err, "login did not complete")
	}

	switch which {
	case "error_toast":
		msg := p.text(ctx, loc.ErrorToast)
		if msg == "" {
			msg = "Invalid Credentials"
		}
		log.Info().Str("toast", msg).Msg("login rejected")
		return perr.Unauthorizedf("%s", msg)
	case "rate_limited":
		line, _, _ := p.line(ctx, loc.Labels.RateLimit)
		log.Warn().Str("text", line).Msg("login rate limited")
		return perr.Unauthorizedf("Invalid Credentials: %s", line)
	}
	log.Debug().Msg("logged in")
	return nil
}

// chooseDP opens the searchable DP dropdown, types the id and picks the matching option.
// When the dropdown does not cooperate it confirms blindly with Enter
func (p *Portal) chooseDP(ctx context.Context, dp string) error {
	loc := p.cfg.Locators
	log := logger.C(ctx)

	blind := func(reason string) error {
		log.Warn().Str("reason", reason).Msg("dp dropdown degraded; confirming with enter")
		if err := p.page.Press(ctx, browser.KeyEnter); err != nil {
			return p.fail(ctx, err, "confirm dp")
		}
		return nil
	}

	if err := p.click(ctx, loc.DPDropdown, "dp_dropdown"); err != nil {
		if ctx.Err() != nil {
			return p.fail(ctx, ctx.Err(), "open dp dropdown")
		}
		return blind("dropdown not clickable")
	}
	if _, err := p.wait(ctx, p.cfg.Waits.Dropdown, p.present("dp_search", loc.DPSearch)); err != nil {
		if errors.Is(err, ErrWaitTimeout) {
			return blind("search box did not open")
		}
		return p.fail(ctx, err, "open dp dropdown")
	}
	if err := p.fill(ctx, loc.DPSearch, "dp_search", dp); err != nil {
		return err
	}
	if _, err := p.wait(ctx, p.cfg.Waits.Dropdown, p.present("dp_option", loc.DPOption)); err != nil {
		if errors.Is(err, ErrWaitTimeout) {
			return blind("no dp options")
		}
		return p.fail(ctx, err, "search dp")
	}

	html, err := p.page.Snapshot(ctx)
	if err != nil {
		return p.fail(ctx, err, "read dp options")
	}
	for _, sel := range loc.DPOption {
		doc, err := parseDoc(html)
		if err != nil {
			return err
		}
		match := ""
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if t := clean(s.Text()); browser.ContainsFold(t, dp) {
				match = t
				return false
			}
			return true
		})
		if match == "" {
			continue
		}
		if err := p.page.ClickText(ctx, sel, match); err == nil {
			return nil
		}
	}
	return blind("no option matches dp")
}

// GotoSection navigates to s and waits for cards, a table, or the empty-state marker
func (p *Portal) GotoSection(ctx context.Context, s Section) (Layout, error) {
	loc := p.cfg.Locators
	route, ok := routes[s]
	if !ok {
		return "", perr.Automationf("unknown section %q", s)
	}
	if err := p.page.Navigate(ctx, p.url(route)); err != nil {
		return "", p.fail(ctx, err, "open "+string(s))
	}

	if s == SectionReport {
		if _, err := p.wait(ctx, p.cfg.Waits.Section, p.present("report_tab", loc.ReportTab)); err != nil {
			return "", p.fail(ctx, err, "report tab did not load")
		}
		if err := p.clickText(ctx, loc.ReportTab, loc.Labels.ReportTab); err != nil {
			return "", err
		}
		if err := sleep(ctx, p.cfg.Waits.Settle); err != nil {
			return "", p.fail(ctx, err, "open report")
		}
	}

	conds := []Condition{
		p.present(string(LayoutCards), loc.Cards),
		p.present(string(LayoutTable), loc.Rows),
	}
	if s == SectionPortfolio {
		conds = []Condition{p.present(string(LayoutTable), loc.HoldingsRows)}
	}
	conds = append(conds, Condition{Name: string(LayoutEmpty), Check: p.emptyMarker})

	which, err := p.wait(ctx, p.cfg.Waits.Section, conds...)
	if err != nil {
		return "", p.fail(ctx, err, string(s)+" section did not load")
	}
	logger.C(ctx).Debug().Str("section", string(s)).Str("layout", which).Msg("section loaded")
	return Layout(which), nil
}

// ScanListing parses the current list section
func (p *Portal) ScanListing(ctx context.Context) (Listing, error) {
	html, err := p.page.Snapshot(ctx)
	if err != nil {
		return Listing{}, p.fail(ctx, err, "read listing")
	}
	return ParseListing(html, p.cfg.Locators)
}

// Act clicks the button for a on entry e. The container must still show e.Name,
// so a list re-rendered since the scan never gets the click
func (p *Portal) Act(ctx context.Context, e Entry, a Action) error {
	label, ok := e.labels[a]
	if !ok {
		return perr.Automationf("%q offers no %s action", e.Name, a)
	}
	for _, sel := range p.cfg.Locators.Actions {
		err := p.page.ClickWithin(ctx, e.Container, e.Index, e.Name, sel, label)
		if err == nil {
			return nil
		}
		if errors.Is(err, browser.ErrMoved) {
			return perr.WithField(perr.Wrapf(err, perr.ErrorCodeAutomation, "listing changed before %s on %q", label, e.Name), string(a))
		}
		if !errors.Is(err, browser.ErrNoElement) {
			return p.fail(ctx, err, "click "+label)
		}
	}
	return perr.WithField(perr.Automationf("%s button for %q disappeared", label, e.Name), string(a))
}

// AwaitForm waits for the application form to render
func (p *Portal) AwaitForm(ctx context.Context) error {
	loc := p.cfg.Locators
	if _, err := p.wait(ctx, p.cfg.Waits.Section,
		p.present("kitta", loc.Kitta),
		p.present("bank", loc.Bank),
	); err != nil {
		return p.fail(ctx, err, "application form did not open")
	}
	return nil
}

// Fields reads the form groups on the current page
func (p *Portal) Fields(ctx context.Context) ([]Field, error) {
	html, err := p.page.Snapshot(ctx)
	if err != nil {
		return nil, p.fail(ctx, err, "read form")
	}
	return ParseFields(html, p.cfg.Locators)
}

// MinimumQuantity reads the "Minimum Quantity" group; ok is false when it is absent or unreadable
func (p *Portal) MinimumQuantity(ctx context.Context) (int, bool, error) {
	fields, err := p.Fields(ctx)
	if err != nil {
		return 0, false, err
	}
	v, ok := FieldValue(fields, p.cfg.Locators.Labels.MinQuantity)
	if !ok {
		return 0, false, nil
	}
	n, ok := ParseQuantity(v)
	return n, ok && n > 0, nil
}

// AppliedQuantity waits briefly for the bound kitta value of an existing application.
// Empty string means it never populated
func (p *Portal) AppliedQuantity(ctx context.Context) (string, error) {
	loc := p.cfg.Locators
	var qty string
	_, err := p.wait(ctx, p.cfg.Waits.Populate, Condition{Name: "applied_kitta", Check: func(ctx context.Context) (bool, error) {
		html, err := p.page.Snapshot(ctx)
		if err != nil {
			return false, err
		}
		v, err := FirstAttr(html, loc.Kitta, "value")
		if err != nil || v == "" {
			fields, ferr := ParseFields(html, loc)
			if ferr != nil {
				return false, ferr
			}
			v, _ = FieldValue(fields, "applied kitta")
		}
		qty = v
		return v != "", nil
	}})
	if errors.Is(err, ErrWaitTimeout) {
		logger.C(ctx).Warn().Msg("applied quantity did not populate")
		return "", nil
	}
	if err != nil {
		return "", p.fail(ctx, err, "read applied quantity")
	}
	return qty, nil
}

// SelectBank picks the first real bank; the form cannot proceed without one
func (p *Portal) SelectBank(ctx context.Context) (Option, error) {
	o, _, err := p.selectFirst(ctx, p.cfg.Locators.Bank, "bank", true)
	return o, err
}

// SelectAccount picks the first real account if the selector exists; absence is tolerated
func (p *Portal) SelectAccount(ctx context.Context) (Option, bool, error) {
	return p.selectFirst(ctx, p.cfg.Locators.Account, "account", false)
}

func (p *Portal) selectFirst(ctx context.Context, list []string, name string, required bool) (Option, bool, error) {
	sel, ok, err := p.resolve(ctx, list)
	if err != nil {
		return Option{}, false, p.fail(ctx, err, "find "+name)
	}
	if !ok {
		if required {
			return Option{}, false, missing(name)
		}
		logger.C(ctx).Warn().Str("field", name).Msg("optional select absent")
		return Option{}, false, nil
	}

	var choice Option
	_, err = p.wait(ctx, p.cfg.Waits.Populate, Condition{Name: name + "_options", Check: func(ctx context.Context) (bool, error) {
		html, err := p.page.Snapshot(ctx)
		if err != nil {
			return false, err
		}
		opts, err := SelectOptions(html, sel)
		if err != nil {
			return false, err
		}
		o, ok := FirstChoice(opts)
		choice = o
		return ok, nil
	}})
	if err != nil {
		if errors.Is(err, ErrWaitTimeout) && !required {
			logger.C(ctx).Warn().Str("field", name).Msg("optional select has no options")
			return Option{}, false, nil
		}
		if errors.Is(err, ErrWaitTimeout) {
			return Option{}, false, perr.WithField(perr.Automationf("%s has no selectable option", name), name)
		}
		return Option{}, false, p.fail(ctx, err, "read "+name+" options")
	}

	if err := p.page.Select(ctx, sel, choice.Value); err != nil {
		return Option{}, false, p.fail(ctx, err, "select "+name)
	}
	return choice, true, nil
}

// Settle gives dependent fields time to bind after a change
func (p *Portal) Settle(ctx context.Context) error {
	if err := sleep(ctx, p.cfg.Waits.Settle); err != nil {
		return p.fail(ctx, err, "settle")
	}
	return nil
}

// FillKitta types the quantity to apply for
func (p *Portal) FillKitta(ctx context.Context, qty int) error {
	return p.fill(ctx, p.cfg.Locators.Kitta, "kitta", strconv.Itoa(qty))
}

// FillCRN types the CRN
func (p *Portal) FillCRN(ctx context.Context, crn string) error {
	return p.fill(ctx, p.cfg.Locators.CRN, "crn", crn)
}

// AcceptDisclaimer ticks the declaration checkbox
func (p *Portal) AcceptDisclaimer(ctx context.Context) error {
	sel, ok, err := p.resolve(ctx, p.cfg.Locators.Disclaimer)
	if err != nil {
		return p.fail(ctx, err, "find disclaimer")
	}
	if !ok {
		return missing("disclaimer")
	}
	if err := p.page.Check(ctx, sel); err != nil {
		return p.fail(ctx, err, "tick disclaimer")
	}
	return nil
}

// Proceed submits the first form step
func (p *Portal) Proceed(ctx context.Context) error {
	return p.clickText(ctx, p.cfg.Locators.Buttons, p.cfg.Locators.Labels.Proceed)
}

// AwaitPIN waits for the transaction PIN step
func (p *Portal) AwaitPIN(ctx context.Context) error {
	_, err := p.wait(ctx, p.cfg.Waits.Section, p.present("pin", p.cfg.Locators.PIN))
	if errors.Is(err, ErrWaitTimeout) {
		return perr.WithField(perr.Automationf("required field pin did not appear after %s", p.cfg.Locators.Labels.Proceed), "pin")
	}
	if err != nil {
		return p.fail(ctx, err, "await pin")
	}
	return nil
}

// EnterPIN types the transaction PIN
func (p *Portal) EnterPIN(ctx context.Context, pin string) error {
	return p.fill(ctx, p.cfg.Locators.PIN, "pin", pin)
}

// Submit clicks the final Apply button; after this the application may exist on the portal.
// An error wrapping browser.ErrNoElement means no click was sent
func (p *Portal) Submit(ctx context.Context) error {
	return p.clickText(ctx, p.cfg.Locators.Buttons, p.cfg.Locators.Labels.Submit)
}

// AwaitToast waits for the success or error banner and returns its text.
// ToastNone with a nil error means nothing appeared within the toast wait
func (p *Portal) AwaitToast(ctx context.Context) (Toast, string, error) {
	loc := p.cfg.Locators
	which, err := p.wait(ctx, p.cfg.Waits.Toast,
		p.present(string(ToastSuccess), loc.SuccessToast),
		p.present(string(ToastError), loc.ErrorToast),
	)
	if errors.Is(err, ErrWaitTimeout) {
		return ToastNone, "", nil
	}
	if err != nil {
		return ToastNone, "", p.fail(ctx, err, "await confirmation")
	}
	if which == string(ToastSuccess) {
		return ToastSuccess, p.text(ctx, loc.SuccessToast), nil
	}
	return ToastError, p.text(ctx, loc.ErrorToast), nil
}

// Holdings parses the portfolio table currently shown
func (p *Portal) Holdings(ctx context.Context) ([]Holding, error) {
	html, err := p.page.Snapshot(ctx)
	if err != nil {
		return nil, p.fail(ctx, err, "read holdings")
	}
	return ParseHoldings(html, p.cfg.Locators)
}

// ReadAllotment waits for the report detail and reads its status fields
func (p *Portal) ReadAllotment(ctx context.Context) (Allotment, error) {
	var out Allotment
	_, err := p.wait(ctx, p.cfg.Waits.Section, Condition{Name: "report_detail", Check: func(ctx context.Context) (bool, error) {
		fields, err := p.Fields(ctx)
		if err != nil {
			return false, err
		}
		a, ok := ParseAllotment(fields)
		out = a
		return ok, nil
	}})
	if err != nil {
		return Allotment{}, p.fail(ctx, err, "report detail did not load")
	}
	return out, nil
}

// helpers

func (p *Portal) wait(ctx context.Context, timeout time.Duration, conds ...Condition) (string, error) {
	return WaitFirst(ctx, timeout, p.cfg.Waits.Poll, conds...)
}

// resolve returns the first selector in list that matches right now
func (p *Portal) resolve(ctx context.Context, list []string) (string, bool, error) {
	for _, sel := range list {
		ok, err := p.page.Has(ctx, sel)
		if err != nil {
			return "", false, err
		}
		if ok {
			return sel, true, nil
		}
	}
	return "", false, nil
}

func (p *Portal) present(name string, list []string) Condition {
	return Condition{Name: name, Check: func(ctx context.Context) (bool, error) {
		_, ok, err := p.resolve(ctx, list)
		return ok, err
	}}
}

func (p *Portal) emptyMarker(ctx context.Context) (bool, error) {
	html, err := p.page.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	doc, err := parseDoc(html)
	if err != nil {
		return false, err
	}
	return hasNoRecords(doc.Selection, p.cfg.Locators), nil
}

func (p *Portal) fill(ctx context.Context, list []string, name, value string) error {
	sel, ok, err := p.resolve(ctx, list)
	if err != nil {
		return p.fail(ctx, err, "find "+name)
	}
	if !ok {
		return missing(name)
	}
	if err := p.page.Type(ctx, sel, value, p.cfg.Waits.Keystroke); err != nil {
		return p.fail(ctx, err, "type "+name)
	}
	return nil
}

func (p *Portal) click(ctx context.Context, list []string, name string) error {
	sel, ok, err := p.resolve(ctx, list)
	if err != nil {
		return p.fail(ctx, err, "find "+name)
	}
	if !ok {
		return missing(name)
	}
	if err := p.page.Click(ctx, sel); err != nil {
		return p.fail(ctx, err, "click "+name)
	}
	return nil
}

func (p *Portal) clickText(ctx context.Context, list []string, label string) error {
	for _, sel := range list {
		err := p.page.ClickText(ctx, sel, label)
		if err == nil {
			return nil
		}
		if !errors.Is(err, browser.ErrNoElement) {
			return p.fail(ctx, err, "click "+label)
		}
	}
	return missing("button:" + label)
}

func (p *Portal) text(ctx context.Context, list []string) string {
	html, err := p.page.Snapshot(ctx)
	if err != nil {
		return ""
	}
	t, _ := FirstText(html, list)
	return t
}

func (p *Portal) line(ctx context.Context, phrase string) (string, bool, error) {
	html, err := p.page.Snapshot(ctx)
	if err != nil {
		return "", false, err
	}
	return LineContaining(html, phrase)
}

// missing is the error for a required element that is not on the page
func missing(field string) error {
	return perr.WithField(perr.Wrapf(browser.ErrNoElement, perr.ErrorCodeAutomation, "required field %s not found", field), field)
}

// fail classifies err from a navigator step: wait expiry and deadline are timeouts,
// cancellation keeps its cause, project errors pass through, anything else is automation
func (p *Portal) fail(ctx context.Context, err error, what string) error {
	switch {
	case errors.Is(err, ErrWaitTimeout):
		return perr.Wrapf(err, perr.ErrorCodeTimeout, "%s in time", what)
	case errors.Is(err, context.DeadlineExceeded):
		return perr.Wrapf(err, perr.ErrorCodeTimeout, "%s: call budget exhausted", what)
	case errors.Is(err, context.Canceled):
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "%s: canceled", what)
	}
	if _, ok := perr.As(err); ok {
		return err
	}
	p.log.Debug().Err(err).Str("step", what).Msg("driver failure")
	return perr.Wrapf(err, perr.ErrorCodeAutomation, "%s", what)
}
