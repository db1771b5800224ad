package browser

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	perr "mywallet/internal/platform/errors"
	"mywallet/internal/platform/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// snapshotJS clones the document and mirrors live form state into attributes
const snapshotJS = `() => {
	const root = document.documentElement.cloneNode(true);
	const live = document.querySelectorAll('input,select,textarea');
	const copy = root.querySelectorAll('input,select,textarea');
	live.forEach((el, i) => {
		const c = copy[i];
		if (!c) return;
		if (el.tagName === 'SELECT') {
			Array.from(el.options).forEach((o, j) => {
				if (!c.options[j]) return;
				if (o.selected) c.options[j].setAttribute('selected', 'selected');
				else c.options[j].removeAttribute('selected');
			});
		} else if (el.type === 'checkbox' || el.type === 'radio') {
			if (el.checked) c.setAttribute('checked', 'checked');
			else c.removeAttribute('checked');
		} else {
			c.setAttribute('value', el.value);
		}
	});
	return root.outerHTML;
}`

// RodProvider launches Chromium through go-rod with a stealth page
type RodProvider struct {
	bins binResolver
	log  logger.Logger
}

// NewRodProvider returns a provider that resolves binaries per Options.Mode
func NewRodProvider() *RodProvider {
	return &RodProvider{bins: defaultResolver(), log: *logger.Named("browser")}
}

// Acquire launches a browser, connects, and opens one stealth page.
// Any partial launch is torn down before an error is returned
func (p *RodProvider) Acquire(ctx context.Context, opts Options) (Session, error) {
	bin, err := p.bins.resolve(ctx, opts)
	if err != nil {
		return nil, err
	}

	l := launcher.New().
		Context(ctx).
		Bin(bin).
		Headless(!opts.Visible).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Leakless(true)

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		l.Cleanup()
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "Automation unavailable: browser launch failed")
	}

	b := rod.New().ControlURL(u).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "Automation unavailable: browser connect failed")
	}

	page, err := stealth.Page(b)
	if err != nil {
		_ = b.Close()
		l.Kill()
		l.Cleanup()
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "Automation unavailable: page open failed")
	}

	p.log.Debug().Str("bin", bin).Str("mode", string(opts.Mode)).Bool("visible", opts.Visible).Msg("browser launched")
	return &rodSession{browser: b, launcher: l, page: &rodPage{p: page}, log: p.log}, nil
}

type rodSession struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rodPage
	log      logger.Logger

	once sync.Once
	err  error
}

func (s *rodSession) Page() Page { return s.page }

// Close shuts the browser down; later calls return the first result
func (s *rodSession) Close() error {
	s.once.Do(func() {
		s.err = s.browser.Close()
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.log.Debug().Err(s.err).Msg("browser closed")
	})
	return s.err
}

type rodPage struct {
	p *rod.Page
}

func (r *rodPage) at(ctx context.Context) *rod.Page { return r.p.Context(ctx) }

func (r *rodPage) Navigate(ctx context.Context, url string) error {
	pg := r.at(ctx)
	if err := pg.Navigate(url); err != nil {
		return driverErr(err, "navigate")
	}
	return driverErr(pg.WaitLoad(), "wait load")
}

func (r *rodPage) URL(ctx context.Context) (string, error) {
	info, err := r.at(ctx).Info()
	if err != nil {
		return "", driverErr(err, "page info")
	}
	return info.URL, nil
}

func (r *rodPage) Has(ctx context.Context, selector string) (bool, error) {
	ok, _, err := r.at(ctx).Has(selector)
	return ok, driverErr(err, "probe")
}

func (r *rodPage) Snapshot(ctx context.Context) (string, error) {
	obj, err := r.at(ctx).Eval(snapshotJS)
	if err != nil {
		return "", driverErr(err, "snapshot")
	}
	return obj.Value.Str(), nil
}

func (r *rodPage) first(ctx context.Context, selector string) (*rod.Element, error) {
	ok, el, err := r.at(ctx).Has(selector)
	if err != nil {
		return nil, driverErr(err, "probe")
	}
	if !ok {
		return nil, Missing(selector)
	}
	return el, nil
}

func (r *rodPage) Click(ctx context.Context, selector string) error {
	el, err := r.first(ctx, selector)
	if err != nil {
		return err
	}
	return click(el)
}

func (r *rodPage) ClickText(ctx context.Context, selector, text string) error {
	els, err := r.at(ctx).Elements(selector)
	if err != nil {
		return driverErr(err, "query")
	}
	el, err := withText(els, text)
	if err != nil {
		return err
	}
	if el == nil {
		return Missing(selector + " ~ " + text)
	}
	return click(el)
}

func (r *rodPage) ClickWithin(ctx context.Context, container string, index int, expect, target, text string) error {
	boxes, err := r.at(ctx).Elements(container)
	if err != nil {
		return driverErr(err, "query")
	}
	if index < 0 || index >= len(boxes) {
		return Missing(container)
	}
	if expect != "" {
		t, err := boxes[index].Text()
		if err != nil {
			return driverErr(err, "read text")
		}
		if !ContainsFold(t, expect) {
			return Moved(container, index, expect)
		}
	}
	els, err := boxes[index].Elements(target)
	if err != nil {
		return driverErr(err, "query")
	}
	el, err := withText(els, text)
	if err != nil {
		return err
	}
	if el == nil {
		return Missing(container + " " + target + " ~ " + text)
	}
	return click(el)
}

func (r *rodPage) Type(ctx context.Context, selector, text string, delay time.Duration) error {
	el, err := r.first(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return driverErr(err, "select text")
	}
	if err := el.Type(input.Backspace); err != nil {
		return driverErr(err, "clear")
	}
	for _, ch := range text {
		if keyed(ch) {
			err = el.Type(input.Key(ch))
		} else {
			err = el.Input(string(ch))
		}
		if err != nil {
			return driverErr(err, "type")
		}
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return driverErr(ctx.Err(), "type")
			case <-t.C:
			}
		}
	}
	return nil
}

func (r *rodPage) Select(ctx context.Context, selector, value string) error {
	el, err := r.first(ctx, selector)
	if err != nil {
		return err
	}
	opt := `option[value="` + strings.ReplaceAll(value, `"`, `\"`) + `"]`
	return driverErr(el.Select([]string{opt}, true, rod.SelectorTypeCSSSector), "select")
}

func (r *rodPage) Check(ctx context.Context, selector string) error {
	el, err := r.first(ctx, selector)
	if err != nil {
		return err
	}
	checked, err := el.Property("checked")
	if err != nil {
		return driverErr(err, "read checked")
	}
	if checked.Bool() {
		return nil
	}
	return click(el)
}

func (r *rodPage) Press(ctx context.Context, key Key) error {
	switch key {
	case KeyEnter:
		return driverErr(r.at(ctx).Keyboard.Press(input.Enter), "press")
	default:
		return perr.Automationf("unsupported key %q", key)
	}
}

func click(el *rod.Element) error {
	if err := el.ScrollIntoView(); err != nil {
		return driverErr(err, "scroll")
	}
	return driverErr(el.Click(proto.InputMouseButtonLeft, 1), "click")
}

// keyed reports whether ch has a key on the US layout rod dispatches key events for.
// Everything else is inserted as text
func keyed(ch rune) bool { return ch >= ' ' && ch <= '~' }

// withText returns the first element whose text contains text, or the first element when text is empty
func withText(els rod.Elements, text string) (*rod.Element, error) {
	for _, el := range els {
		if text == "" {
			return el, nil
		}
		t, err := el.Text()
		if err != nil {
			return nil, driverErr(err, "read text")
		}
		if ContainsFold(t, text) {
			return el, nil
		}
	}
	return nil, nil
}

// driverErr classifies rod failures; deadline expiry is a timeout, everything else automation
func driverErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := perr.As(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return perr.Wrapf(err, perr.ErrorCodeTimeout, "browser %s timed out", op)
	}
	return perr.Wrapf(err, perr.ErrorCodeAutomation, "browser %s failed", op)
}
