// Package merosharetest simulates the MeroShare portal on top of browsertest.Page.
// It renders the markup the default locators expect and advances on clicks the way
// the real single-page app does, so navigator and service flows can run without a browser
package merosharetest

import (
	stderrs "errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"mywallet/internal/adapters/browser"
	"mywallet/internal/adapters/browser/browsertest"

	"github.com/PuerkitoBio/goquery"
)

// BaseURL is what tests point the navigator at
const BaseURL = "https://meroshare.test"

// Issue is one IPO as the simulated portal knows it
type Issue struct {
	Name string
	// Applied issues offer Edit instead of Apply
	Applied      bool
	AppliedKitta int
	// MinKitta renders a "Minimum Quantity" group when > 0
	MinKitta int
	// Status and AllottedKitta populate the report detail; empty Status hides the issue from the report
	Status        string
	AllottedKitta int
}

// Holding is one portfolio row as rendered
type Holding struct {
	Scrip   string
	Balance string
	Closing string
	LTP     string
}

// Submit selects what the final Apply click produces
type Submit string

// Submit outcomes
const (
	SubmitSuccess Submit = "success"
	SubmitError   Submit = "error"
	SubmitSilent  Submit = "silent"
	// SubmitDropped lands the click but the driver reports a failure and no toast follows
	SubmitDropped Submit = "dropped"
)

// Site is the simulated portal. Configure fields before calling Page
type Site struct {
	DP       string
	DPName   string
	Username string
	Password string

	Issues   []Issue
	Table    bool
	Holdings []Holding

	Banks      []string
	Accounts   []string
	NoAccounts bool

	Submit        Submit
	SubmitMessage string

	// Failure switches
	BadLogin       bool
	RateLimited    bool
	AccountLocked  bool
	LoginHangs     bool
	DropdownBroken bool
	NoPINStep      bool

	mu          sync.Mutex
	page        *browsertest.Page
	loggedIn    bool
	chosenDP    string
	issue       int
	submissions int
}

// Page builds the scripted page bound to this site
func (s *Site) Page() *browsertest.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page != nil {
		return s.page
	}
	p := browsertest.NewPage("about:blank", "<html><body></body></html>")
	p.OnNavigate = s.onNavigate
	p.OnClick = s.onClick
	p.OnPress = s.onPress
	p.ClickErr = s.clickErr
	s.page = p
	return p
}

// Submissions counts final Apply clicks
func (s *Site) Submissions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions
}

// ChosenDP returns the DP option text picked at login, "enter" when confirmed blindly
func (s *Site) ChosenDP() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chosenDP
}

func (s *Site) onNavigate(p *browsertest.Page, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	route := url
	if i := strings.Index(url, "#"); i >= 0 {
		route = url[i:]
	}
	switch {
	case !s.loggedIn || route == "#/login":
		p.SetURL(BaseURL + "/#/login")
		p.SetHTML(page(loginHTML))
	case route == "#/asba":
		p.SetHTML(page(tabs() + s.listingHTML("Apply", s.applyIssues())))
	case route == "#/portfolio":
		p.SetHTML(page(s.holdingsHTML()))
	default:
		p.SetHTML(page("<h1>Dashboard</h1>"))
	}
}

func (s *Site) onPress(p *browsertest.Page, k browser.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k == browser.KeyEnter && s.chosenDP == "" {
		s.chosenDP = "enter"
	}
}

func (s *Site) onClick(p *browsertest.Page, c browsertest.Click) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case strings.Contains(c.Selector, "select2-selection"):
		if s.DropdownBroken {
			return
		}
		name := s.DPName
		if name == "" {
			name = "TEST CAPITAL LTD."
		}
		p.Mutate(func(doc *goquery.Document) {
			doc.Find("#dp-drop").SetHtml(`<input class="select2-search__field" type="search">` +
				`<ul class="select2-results__options">` +
				`<li class="select2-results__option">OTHER SECURITIES LTD. (19900)</li>` +
				fmt.Sprintf(`<li class="select2-results__option">%s (%s)</li>`, html.EscapeString(name), html.EscapeString(s.DP)) +
				`</ul>`)
		})

	case strings.Contains(c.Selector, "select2-results__option"):
		s.chosenDP = c.Label
		p.Mutate(func(doc *goquery.Document) { doc.Find("#dp-drop").SetHtml("") })

	case c.Selector == "button[type='submit']" && c.Container == "" && c.Label == "Login":
		s.login(p)

	case c.Container == "" && c.Label == "Application Report":
		p.SetHTML(page(tabs() + s.listingHTML("Report", s.reportIssues())))

	case c.Container != "":
		s.entryAction(p, c)

	case c.Label == "Proceed":
		if s.NoPINStep {
			return
		}
		p.SetHTML(page(pinHTML))

	case c.Label == "Apply" && c.Container == "":
		s.submissions++
		s.toast(p)
	}
}

func (s *Site) login(p *browsertest.Page) {
	user, pass := p.Typed["#username"], p.Typed["#password"]
	switch {
	case s.LoginHangs:
		return
	case s.RateLimited:
		setToast(p, "toast-error", "Invalid Credentials. 2 attempts remaining")
		return
	case s.AccountLocked:
		p.Mutate(func(doc *goquery.Document) {
			doc.Find("#main").AppendHtml("\n<p class=\"lock-notice\">Account locked. 0 attempts remaining</p>\n")
		})
		return
	case s.BadLogin || user != s.Username || pass != s.Password:
		setToast(p, "toast-error", "Invalid Credentials")
		return
	case s.chosenDP != "enter" && !strings.Contains(s.chosenDP, s.DP):
		setToast(p, "toast-error", "Please select a Depository Participant")
		return
	}
	s.loggedIn = true
	p.SetURL(BaseURL + "/#/dashboard")
	p.SetHTML(page("<h1>Dashboard</h1>"))
}

func (s *Site) entryAction(p *browsertest.Page, c browsertest.Click) {
	var list []int
	if c.Label == "Report" {
		list = s.reportIssues()
	} else {
		list = s.applyIssues()
	}
	if c.Index < 0 || c.Index >= len(list) {
		return
	}
	s.issue = list[c.Index]
	is := s.Issues[s.issue]
	switch c.Label {
	case "Apply":
		p.SetHTML(page(s.formHTML(is, "")))
	case "Edit":
		p.SetHTML(page(s.formHTML(is, fmt.Sprint(is.AppliedKitta))))
	case "Report":
		p.SetHTML(page(reportDetailHTML(is)))
	}
}

func (s *Site) clickErr(c browsertest.Click) error {
	if s.Submit == SubmitDropped && c.Container == "" && c.Label == "Apply" {
		return stderrs.New("cdp: websocket closed")
	}
	return nil
}

func (s *Site) toast(p *browsertest.Page) {
	switch s.Submit {
	case SubmitSilent, SubmitDropped:
	case SubmitError:
		msg := s.SubmitMessage
		if msg == "" {
			msg = "Share has already been applied"
		}
		setToast(p, "toast-error", msg)
	default:
		msg := s.SubmitMessage
		if msg == "" {
			msg = "Share has been applied successfully."
		}
		setToast(p, "toast-success", msg)
	}
}

func setToast(p *browsertest.Page, class, msg string) {
	p.Mutate(func(doc *goquery.Document) {
		doc.Find("#toast-container").SetHtml(fmt.Sprintf(`<div class="toast %s"><div class="toast-message">%s</div></div>`, class, html.EscapeString(msg)))
	})
}

func (s *Site) applyIssues() []int {
	out := make([]int, 0, len(s.Issues))
	for i := range s.Issues {
		out = append(out, i)
	}
	return out
}

func (s *Site) reportIssues() []int {
	var out []int
	for i, is := range s.Issues {
		if is.Status != "" {
			out = append(out, i)
		}
	}
	return out
}

// rendering

func page(body string) string {
	return `<html><body><div id="main">` + body + `</div><div id="toast-container"></div></body></html>`
}

const loginHTML = `<form class="login">
<span class="select2-selection select2-selection--single">Select your DP</span>
<div id="dp-drop"></div>
<input id="username" name="username" type="text">
<input id="password" name="password" type="password">
<button type="submit" class="btn sign-in">Login</button>
</form>`

const pinHTML = `<form>
<div class="form-group"><label>Transaction PIN</label><input id="transactionPIN" type="password"></div>
<button type="button">Cancel</button>
<button type="submit">Apply</button>
</form>`

func tabs() string {
	return `<ul class="nav nav-tabs">` +
		`<li><a class="nav-link active">Apply for Issue</a></li>` +
		`<li><a class="nav-link">Current Issue</a></li>` +
		`<li><a class="nav-link">Application Report</a></li></ul>`
}

func (s *Site) listingHTML(verb string, idx []int) string {
	var b strings.Builder
	if s.Table || len(idx) == 0 {
		b.WriteString(`<table class="table asba-table"><thead><tr><th>#</th><th>Issue Name</th><th>Share Type</th><th>Action</th></tr></thead><tbody>`)
		if len(idx) == 0 {
			b.WriteString(`<tr><td colspan="4" class="no-data">No Record(s) Found</td></tr>`)
		}
		for n, i := range idx {
			is := s.Issues[i]
			fmt.Fprintf(&b, `<tr><td>%d</td><td>%s</td><td>IPO</td><td><button class="btn">%s</button></td></tr>`,
				n+1, html.EscapeString(is.Name), action(verb, is))
		}
		b.WriteString(`</tbody></table>`)
		return b.String()
	}
	for _, i := range idx {
		is := s.Issues[i]
		fmt.Fprintf(&b, `<div class="company-list"><div class="company-name"><span tooltip="Company Name">%s</span></div>`+
			`<span class="share-of-type">IPO</span><span>Ordinary Shares</span>`+
			`<div class="action-buttons"><button class="btn-issue">%s</button></div></div>`,
			html.EscapeString(is.Name), action(verb, is))
	}
	return b.String()
}

func action(verb string, is Issue) string {
	if verb == "Apply" && is.Applied {
		return "Edit"
	}
	return verb
}

func (s *Site) formHTML(is Issue, kitta string) string {
	banks := s.Banks
	if banks == nil {
		banks = []string{"NIC ASIA BANK LTD."}
	}
	accounts := s.Accounts
	if accounts == nil {
		accounts = []string{"0011223344556677"}
	}

	var b strings.Builder
	b.WriteString(`<form class="apply-form">`)
	fmt.Fprintf(&b, `<div class="form-group"><label>Issue Name</label><span>%s</span></div>`, html.EscapeString(is.Name))
	if is.MinKitta > 0 {
		fmt.Fprintf(&b, `<div class="form-group"><label>Minimum Quantity</label><span>%d</span></div>`, is.MinKitta)
	}
	b.WriteString(`<div class="form-group"><label>Bank</label><select id="selectBank" name="bank"><option value="">Please choose one</option>`)
	for i, name := range banks {
		fmt.Fprintf(&b, `<option value="%d">%s</option>`, 40+i, html.EscapeString(name))
	}
	b.WriteString(`</select></div>`)
	if !s.NoAccounts {
		b.WriteString(`<div class="form-group"><label>Account Number</label><select id="accountNumber" name="accountNumber"><option value="?">Please choose one</option>`)
		for _, a := range accounts {
			fmt.Fprintf(&b, `<option value="%s">%s</option>`, html.EscapeString(a), html.EscapeString(a))
		}
		b.WriteString(`</select></div>`)
	}
	fmt.Fprintf(&b, `<div class="form-group"><label>Applied Kitta</label><input id="appliedKitta" name="appliedKitta" value="%s"></div>`, kitta)
	b.WriteString(`<div class="form-group"><label>CRN</label><input id="crnNumber" name="crnNumber"></div>`)
	b.WriteString(`<div class="form-group"><input type="checkbox" id="disclaimer" name="disclaimer"><label>I hereby declare that the information is correct</label></div>`)
	b.WriteString(`<button type="submit" class="btn">Proceed</button></form>`)
	return b.String()
}

func reportDetailHTML(is Issue) string {
	return fmt.Sprintf(`<div class="report-detail">`+
		`<div class="form-group"><label>Issue Name</label><span>%s</span></div>`+
		`<div class="form-group"><label>Status</label><span>%s</span></div>`+
		`<div class="form-group"><label>Alloted Kitta</label><span>%d</span></div></div>`,
		html.EscapeString(is.Name), html.EscapeString(is.Status), is.AllottedKitta)
}

func (s *Site) holdingsHTML() string {
	var b strings.Builder
	b.WriteString(`<table class="table"><thead><tr><th>#</th><th>Scrip</th><th>Current Balance</th>` +
		`<th>Previous Closing Price</th><th>Value as of Previous Closing Price</th>` +
		`<th>Last Transaction Price (LTP)</th><th>Value as of LTP</th></tr></thead><tbody>`)
	if len(s.Holdings) == 0 {
		b.WriteString(`<tr><td colspan="7" class="no-data">No Record(s) Found</td></tr>`)
	}
	for i, h := range s.Holdings {
		fmt.Fprintf(&b, `<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>-</td><td>%s</td><td>-</td></tr>`,
			i+1, html.EscapeString(h.Scrip), h.Balance, h.Closing, h.LTP)
	}
	if len(s.Holdings) > 0 {
		b.WriteString(`<tr><td></td><td>Total :</td><td></td><td></td><td>-</td><td></td><td>-</td></tr>`)
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}
