package module

import (
	"time"

	"mywallet/internal/adapters/browser"
	"mywallet/internal/adapters/meroshare"
	"mywallet/internal/platform/config"
	"mywallet/internal/services/meroshare/domain"
	"mywallet/internal/services/meroshare/guardrails"
	"mywallet/internal/services/meroshare/service"
)

// DefaultCallTimeout bounds one automation call end to end
const DefaultCallTimeout = 3 * time.Minute

// Options controls browser environment, portal waits, the apply ledger and route auth
type Options struct {
	Mode        browser.Mode
	BrowserBin  string
	ShowBrowser bool

	BaseURL      string
	LocatorsFile string
	Waits        meroshare.Waits

	CallTimeout   time.Duration
	LedgerTimeout time.Duration
	MinQuantity   int
	LedgerGate    bool
	GateWindow    time.Duration

	// APITokens are "name:token" pairs; when set the HTTP routes require a bearer token
	APITokens []string
}

// FromConfig reads MERO_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	mc := cfg.Prefix("MERO_")
	def := meroshare.DefaultWaits()
	return Options{
		Mode:         browser.ParseMode(mc.MayEnum("MODE", string(browser.ModeProduction), string(browser.ModeProduction), string(browser.ModeLocal))),
		BrowserBin:   mc.MayString("BROWSER_BIN", ""),
		ShowBrowser:  mc.MayBool("SHOW_BROWSER", false),
		BaseURL:      mc.MayString("BASE_URL", meroshare.DefaultBaseURL),
		LocatorsFile: mc.MayString("LOCATORS_FILE", ""),
		Waits: meroshare.Waits{
			Login:     mc.MayDuration("LOGIN_TIMEOUT", def.Login),
			Section:   mc.MayDuration("SECTION_TIMEOUT", def.Section),
			Toast:     mc.MayDuration("TOAST_TIMEOUT", def.Toast),
			Dropdown:  mc.MayDuration("DROPDOWN_TIMEOUT", def.Dropdown),
			Populate:  mc.MayDuration("POPULATE_TIMEOUT", def.Populate),
			Settle:    mc.MayDuration("SETTLE", def.Settle),
			Keystroke: mc.MayDuration("KEYSTROKE", def.Keystroke),
			Poll:      mc.MayDuration("POLL", def.Poll),
		},
		CallTimeout:   mc.MayDuration("CALL_TIMEOUT", DefaultCallTimeout),
		LedgerTimeout: mc.MayDuration("LEDGER_TIMEOUT", 5*time.Second),
		MinQuantity:   mc.MayInt("MIN_QUANTITY", service.DefaultMinQuantity),
		LedgerGate:    mc.MayBool("LEDGER_GATE", false),
		GateWindow:    mc.MayDuration("LEDGER_GATE_WINDOW", service.DefaultGateWindow),
		APITokens:     mc.MayCSV("API_TOKENS", nil),
	}
}

// Browser returns the environment descriptor handed to the provider on every call
func (o Options) Browser() browser.Options {
	return browser.Options{Mode: o.Mode, Visible: o.ShowBrowser, BinHint: o.BrowserBin}
}

// Service resolves locators and assembles service options. ledger may be nil
func (o Options) Service(p browser.Provider, ledger domain.LedgerPort) (service.Options, error) {
	loc, err := meroshare.LoadLocators(o.LocatorsFile)
	if err != nil {
		return service.Options{}, err
	}
	return service.Options{
		Provider: p,
		Browser:  o.Browser(),
		Portal: meroshare.Config{
			BaseURL:  o.BaseURL,
			Locators: loc,
			Waits:    o.Waits,
		},
		Timeouts:    guardrails.Timeouts{Call: o.CallTimeout, Ledger: o.LedgerTimeout},
		MinQuantity: o.MinQuantity,
		Ledger:      ledger,
		LedgerGate:  o.LedgerGate,
		GateWindow:  o.GateWindow,
	}, nil
}

// RequestTimeout is how long the HTTP layer lets an automation request run
func (o Options) RequestTimeout() time.Duration {
	return o.CallTimeout + 15*time.Second
}
