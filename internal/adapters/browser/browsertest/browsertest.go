// Package browsertest provides an in-memory browser.Page backed by goquery so
// flows can be driven against static markup in tests
package browsertest

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mywallet/internal/adapters/browser"

	"github.com/PuerkitoBio/goquery"
)

// Click records one click and the text of the element that received it
type Click struct {
	Selector  string
	Container string
	Index     int
	Text      string
	Label     string
}

// Page is a scripted browser.Page. Hooks run after the action is recorded and may swap markup
type Page struct {
	mu  sync.Mutex
	doc *goquery.Document
	url string

	Navigations []string
	Clicks      []Click
	Typed       map[string]string
	Selected    map[string]string
	Checked     []string
	Pressed     []browser.Key

	OnNavigate func(p *Page, url string)
	OnClick    func(p *Page, c Click)
	OnPress    func(p *Page, k browser.Key)
	// ClickErr runs after OnClick; a non-nil result is returned from a click that already landed
	ClickErr func(c Click) error

	// Err, when set, is returned by every method; simulates a dead browser
	Err error
}

// NewPage returns a page showing html at url
func NewPage(url, html string) *Page {
	p := &Page{url: url, Typed: map[string]string{}, Selected: map[string]string{}}
	p.SetHTML(html)
	return p
}

// SetHTML replaces the document
func (p *Page) SetHTML(html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err) // x/net/html does not fail on string input
	}
	p.mu.Lock()
	p.doc = doc
	p.mu.Unlock()
}

// SetURL moves the page without loading markup
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
}

// Mutate runs fn against the live document
func (p *Page) Mutate(fn func(doc *goquery.Document)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.doc)
}

// ClicksLabelled counts clicks whose element text contains label
func (p *Page) ClicksLabelled(label string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.Clicks {
		if browser.ContainsFold(c.Label, label) {
			n++
		}
	}
	return n
}

// Navigate records the url and fires OnNavigate
func (p *Page) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	if p.Err != nil {
		defer p.mu.Unlock()
		return p.Err
	}
	p.url = url
	p.Navigations = append(p.Navigations, url)
	hook := p.OnNavigate
	p.mu.Unlock()
	if hook != nil {
		hook(p, url)
	}
	return nil
}

// URL returns the current url
func (p *Page) URL(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, p.Err
}

// Has reports whether selector matches
func (p *Page) Has(_ context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return false, p.Err
	}
	return p.doc.Find(selector).Length() > 0, nil
}

// Snapshot returns the current markup; form writes are already reflected as attributes
func (p *Page) Snapshot(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	return p.doc.Html()
}

// Click clicks the first match of selector
func (p *Page) Click(ctx context.Context, selector string) error {
	return p.click(Click{Selector: selector}, func(doc *goquery.Document) *goquery.Selection {
		return doc.Find(selector).First()
	})
}

// ClickText clicks the first match of selector containing text
func (p *Page) ClickText(ctx context.Context, selector, text string) error {
	return p.click(Click{Selector: selector, Text: text}, func(doc *goquery.Document) *goquery.Selection {
		return withText(doc.Find(selector), text)
	})
}

// ClickWithin clicks a target inside the index-th container once it still shows expect
func (p *Page) ClickWithin(ctx context.Context, container string, index int, expect, target, text string) error {
	if expect != "" {
		p.mu.Lock()
		box := p.doc.Find(container)
		moved := p.Err == nil && index >= 0 && index < box.Length() && !browser.ContainsFold(box.Eq(index).Text(), expect)
		p.mu.Unlock()
		if moved {
			return browser.Moved(container, index, expect)
		}
	}
	c := Click{Selector: target, Container: container, Index: index, Text: text}
	return p.click(c, func(doc *goquery.Document) *goquery.Selection {
		box := doc.Find(container)
		if index < 0 || index >= box.Length() {
			return box.Slice(0, 0)
		}
		return withText(box.Eq(index).Find(target), text)
	})
}

func (p *Page) click(c Click, find func(*goquery.Document) *goquery.Selection) error {
	p.mu.Lock()
	if p.Err != nil {
		defer p.mu.Unlock()
		return p.Err
	}
	el := find(p.doc)
	if el.Length() == 0 {
		p.mu.Unlock()
		return browser.Missing(strings.TrimSpace(c.Container + " " + c.Selector + " " + c.Text))
	}
	c.Label = strings.TrimSpace(el.Text())
	p.Clicks = append(p.Clicks, c)
	hook, after := p.OnClick, p.ClickErr
	p.mu.Unlock()
	if hook != nil {
		hook(p, c)
	}
	if after != nil {
		return after(c)
	}
	return nil
}

// Type writes text into the value attribute of the first match
func (p *Page) Type(_ context.Context, selector, text string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	el := p.doc.Find(selector).First()
	if el.Length() == 0 {
		return browser.Missing(selector)
	}
	el.SetAttr("value", text)
	p.Typed[selector] = text
	return nil
}

// Select marks the option with value as selected
func (p *Page) Select(_ context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	sel := p.doc.Find(selector).First()
	if sel.Length() == 0 {
		return browser.Missing(selector)
	}
	opts := sel.Find("option")
	target := opts.FilterFunction(func(_ int, o *goquery.Selection) bool {
		v, _ := o.Attr("value")
		return v == value
	})
	if target.Length() == 0 {
		return browser.Missing(selector + " option=" + value)
	}
	opts.RemoveAttr("selected")
	target.First().SetAttr("selected", "selected")
	p.Selected[selector] = value
	return nil
}

// Check sets the checked attribute
func (p *Page) Check(_ context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	el := p.doc.Find(selector).First()
	if el.Length() == 0 {
		return browser.Missing(selector)
	}
	el.SetAttr("checked", "checked")
	p.Checked = append(p.Checked, selector)
	return nil
}

// Press records the key and fires OnPress
func (p *Page) Press(_ context.Context, k browser.Key) error {
	p.mu.Lock()
	if p.Err != nil {
		defer p.mu.Unlock()
		return p.Err
	}
	p.Pressed = append(p.Pressed, k)
	hook := p.OnPress
	p.mu.Unlock()
	if hook != nil {
		hook(p, k)
	}
	return nil
}

func withText(s *goquery.Selection, text string) *goquery.Selection {
	if text == "" {
		return s.First()
	}
	return s.FilterFunction(func(_ int, el *goquery.Selection) bool {
		return browser.ContainsFold(el.Text(), text)
	}).First()
}

// Session wraps a Page and counts Close calls
type Session struct {
	P        *Page
	CloseErr error
	closes   atomic.Int32
}

// Page returns the wrapped page
func (s *Session) Page() browser.Page { return s.P }

// Close counts the call
func (s *Session) Close() error {
	s.closes.Add(1)
	return s.CloseErr
}

// Closes reports how many times Close ran
func (s *Session) Closes() int { return int(s.closes.Load()) }

// Provider hands out sessions built by NewPage, or fails with Err
type Provider struct {
	mu       sync.Mutex
	NewPage  func() *Page
	Err      error
	Sessions []*Session
	Opts     []browser.Options
}

// Acquire records the attempt and returns a fresh session
func (p *Provider) Acquire(_ context.Context, opts browser.Options) (browser.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Opts = append(p.Opts, opts)
	if p.Err != nil {
		return nil, p.Err
	}
	page := NewPage("about:blank", "<html><body></body></html>")
	if p.NewPage != nil {
		page = p.NewPage()
	}
	s := &Session{P: page}
	p.Sessions = append(p.Sessions, s)
	return s, nil
}

// Launches counts Acquire calls, failed ones included
func (p *Provider) Launches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Opts)
}

// Closes sums Close calls over every session handed out
func (p *Provider) Closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.Sessions {
		n += s.Closes()
	}
	return n
}

var (
	_ browser.Page     = (*Page)(nil)
	_ browser.Session  = (*Session)(nil)
	_ browser.Provider = (*Provider)(nil)
)
