package meroshare

import (
	"strconv"
	"strings"
	"unicode"

	perr "mywallet/internal/platform/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// Action is something an entry on a listing offers
type Action string

// Entry actions
const (
	ActionApply  Action = "apply"
	ActionEdit   Action = "edit"
	ActionReport Action = "report"
)

// Layout is how a section rendered its content
type Layout string

// Layouts seen on the portal
const (
	LayoutCards Layout = "cards"
	LayoutTable Layout = "table"
	LayoutEmpty Layout = "empty"
)

// Entry is one card or row found on a listing. Built fresh per scan
type Entry struct {
	Index     int
	Name      string
	Container string
	Actions   []Action

	labels map[Action]string
}

// Can reports whether the entry offers a
func (e Entry) Can(a Action) bool {
	_, ok := e.labels[a]
	return ok
}

// Listing is the parsed content of a list section
type Listing struct {
	Layout  Layout
	Entries []Entry
}

// Names returns every entry name in scan order
func (l Listing) Names() []string {
	out := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		out = append(out, e.Name)
	}
	return out
}

// Field is a label/value pair read from a form group
type Field struct {
	Label string
	Value string
}

// Option is one <option> of a select
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Holding is one parsed portfolio row
type Holding struct {
	Symbol string
	Units  decimal.Decimal
	Price  decimal.Decimal
}

func parseDoc(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeAutomation, "parse page snapshot")
	}
	return doc, nil
}

// clean collapses whitespace runs and trims
func clean(s string) string { return strings.Join(strings.Fields(s), " ") }

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func equalsAny(s string, labels []string) bool {
	for _, l := range labels {
		if strings.EqualFold(s, strings.TrimSpace(l)) {
			return true
		}
	}
	return false
}

// hasNoRecords reports an explicit empty-state marker in s
func hasNoRecords(s *goquery.Selection, loc Locators) bool {
	for _, sel := range loc.NoRecords {
		if s.Find(sel).Length() > 0 || s.Is(sel) {
			return true
		}
	}
	text := strings.ToLower(clean(s.Text()))
	for _, phrase := range loc.NoRecordsText {
		if phrase != "" && strings.Contains(text, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// ParseListing reads the entries of an apply or report section.
// Cards are tried before table rows; rows carrying the empty-state marker are ignored
func ParseListing(html string, loc Locators) (Listing, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return Listing{}, err
	}

	for _, layout := range []struct {
		kind Layout
		sels []string
	}{
		{LayoutCards, loc.Cards},
		{LayoutTable, loc.Rows},
	} {
		for _, sel := range layout.sels {
			var entries []Entry
			doc.Find(sel).Each(func(i int, s *goquery.Selection) {
				if layout.kind == LayoutTable && hasNoRecords(s, loc) {
					return
				}
				entries = append(entries, readEntry(s, sel, i, loc))
			})
			if len(entries) > 0 {
				return Listing{Layout: layout.kind, Entries: entries}, nil
			}
		}
	}

	if hasNoRecords(doc.Selection, loc) {
		return Listing{Layout: LayoutEmpty}, nil
	}
	return Listing{Layout: LayoutTable}, nil
}

func readEntry(s *goquery.Selection, container string, index int, loc Locators) Entry {
	e := Entry{Index: index, Container: container, labels: map[Action]string{}}
	e.Name = entryName(s, loc)

	for _, sel := range loc.Actions {
		s.Find(sel).Each(func(_ int, b *goquery.Selection) {
			label := clean(b.Text())
			for _, c := range []struct {
				a      Action
				labels []string
			}{
				{ActionApply, loc.Labels.Apply},
				{ActionEdit, loc.Labels.Edit},
				{ActionReport, loc.Labels.Report},
			} {
				if _, seen := e.labels[c.a]; seen || !equalsAny(label, c.labels) {
					continue
				}
				e.labels[c.a] = label
				e.Actions = append(e.Actions, c.a)
			}
		})
	}
	return e
}

// entryName prefers a dedicated name element, else the first leaf text that reads like a name
func entryName(s *goquery.Selection, loc Locators) string {
	for _, sel := range loc.EntryName {
		if t := clean(s.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	all := append(append(append([]string{}, loc.Labels.Apply...), loc.Labels.Edit...), loc.Labels.Report...)
	name := ""
	s.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if el.Children().Length() > 0 {
			return true
		}
		t := clean(el.Text())
		if t == "" || !hasLetter(t) || equalsAny(t, all) {
			return true
		}
		name = t
		return false
	})
	if name != "" {
		return name
	}
	for _, line := range strings.Split(s.Text(), "\n") {
		if t := clean(line); t != "" {
			return t
		}
	}
	return ""
}

// ParseFields reads label/value pairs from form groups, first locator that yields groups wins
func ParseFields(html string, loc Locators) ([]Field, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}
	var out []Field
	for _, sel := range loc.FormGroup {
		doc.Find(sel).Each(func(_ int, g *goquery.Selection) {
			label := clean(g.Find("label").First().Text())
			if label == "" {
				return
			}
			out = append(out, Field{Label: label, Value: fieldValue(g, label)})
		})
		if len(out) > 0 {
			break
		}
	}
	return out, nil
}

func fieldValue(g *goquery.Selection, label string) string {
	if in := g.Find("input").Not("[type='checkbox'],[type='radio'],[type='hidden']").First(); in.Length() > 0 {
		v, _ := in.Attr("value")
		return clean(v)
	}
	if sel := g.Find("select").First(); sel.Length() > 0 {
		return clean(sel.Find("option[selected]").First().Text())
	}
	if ta := g.Find("textarea").First(); ta.Length() > 0 {
		return clean(ta.Text())
	}
	rest := strings.TrimSpace(strings.TrimPrefix(clean(g.Text()), label))
	return strings.TrimSpace(strings.TrimPrefix(rest, ":"))
}

// FieldValue returns the value of the first field whose label contains label (case-insensitive)
func FieldValue(fields []Field, label string) (string, bool) {
	want := strings.ToLower(label)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f.Label), want) {
			return f.Value, true
		}
	}
	return "", false
}

// ParseQuantity reads a whole kitta count, tolerating thousands separators and a trailing unit
func ParseQuantity(s string) (int, bool) {
	fs := strings.Fields(strings.ReplaceAll(s, ",", ""))
	if len(fs) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fs[0])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// SelectOptions lists the options of the first element matching selector
func SelectOptions(html, selector string) ([]Option, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}
	var out []Option
	doc.Find(selector).First().Find("option").Each(func(_ int, o *goquery.Selection) {
		v, _ := o.Attr("value")
		_, sel := o.Attr("selected")
		out = append(out, Option{Value: strings.TrimSpace(v), Label: clean(o.Text()), Selected: sel})
	})
	return out, nil
}

// FirstChoice returns the first option that is not a placeholder:
// empty value, an Angular unknown-option marker, or a label containing "choose"
func FirstChoice(opts []Option) (Option, bool) {
	for _, o := range opts {
		if o.Value == "" || strings.HasPrefix(o.Value, "?") {
			continue
		}
		if strings.Contains(strings.ToLower(o.Label), "choose") {
			continue
		}
		return o, true
	}
	return Option{}, false
}

// FirstText returns the text of the first selector that matches a non-empty element
func FirstText(html string, selectors []string) (string, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return "", err
	}
	for _, sel := range selectors {
		if t := clean(doc.Find(sel).First().Text()); t != "" {
			return t, nil
		}
	}
	return "", nil
}

// FirstAttr returns attribute attr of the first element matched by the selectors
func FirstAttr(html string, selectors []string, attr string) (string, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return "", err
	}
	for _, sel := range selectors {
		if el := doc.Find(sel).First(); el.Length() > 0 {
			v, _ := el.Attr(attr)
			return strings.TrimSpace(v), nil
		}
	}
	return "", nil
}

// LineContaining returns the first text line of the body that contains phrase
func LineContaining(html, phrase string) (string, bool, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return "", false, err
	}
	want := strings.ToLower(phrase)
	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		if t := clean(line); strings.Contains(strings.ToLower(t), want) {
			return t, true, nil
		}
	}
	return "", false, nil
}

// ParseHoldings reads the portfolio table. Columns are located by header text, falling back
// to scrip=1 units=2 price=3. A table carrying only the empty-state marker yields no rows
func ParseHoldings(html string, loc Locators) ([]Holding, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var headers []string
	for _, sel := range loc.HoldingsHeader {
		doc.Find(sel).Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, strings.ToLower(clean(th.Text())))
		})
		if len(headers) > 0 {
			break
		}
	}
	scrip, units, price := holdingColumns(headers)

	out := []Holding{}
	for _, sel := range loc.HoldingsRows {
		rows := doc.Find(sel)
		if rows.Length() == 0 {
			continue
		}
		rows.Each(func(_ int, tr *goquery.Selection) {
			if hasNoRecords(tr, loc) {
				return
			}
			cells := tr.Find("td")
			if cells.Length() <= max(scrip, units, price) {
				return
			}
			fs := strings.Fields(cells.Eq(scrip).Text())
			if len(fs) == 0 {
				return
			}
			sym := strings.ToUpper(strings.TrimRight(fs[0], ":"))
			if sym == "TOTAL" {
				return
			}
			u, ok := ParseNumber(cells.Eq(units).Text())
			if !ok {
				return
			}
			p, ok := ParseNumber(cells.Eq(price).Text())
			if !ok {
				p = decimal.Zero
			}
			out = append(out, Holding{Symbol: sym, Units: u, Price: p})
		})
		break
	}
	return out, nil
}

// holdingColumns maps header labels to cell positions; value-of columns are never prices
func holdingColumns(headers []string) (scrip, units, price int) {
	scrip, units, price = 1, 2, 3
	ltp, closing := -1, -1
	for i, h := range headers {
		switch {
		case strings.HasPrefix(h, "value"):
			continue
		case strings.Contains(h, "scrip") || strings.Contains(h, "symbol"):
			scrip = i
		case strings.Contains(h, "balance") || strings.Contains(h, "units"):
			units = i
		case ltp < 0 && (strings.Contains(h, "last transaction price") || strings.Contains(h, "ltp")):
			ltp = i
		case closing < 0 && strings.Contains(h, "closing price"):
			closing = i
		}
	}
	switch {
	case ltp >= 0:
		price = ltp
	case closing >= 0:
		price = closing
	}
	return scrip, units, price
}

// ParseNumber reads a decimal after stripping thousands commas
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Allotment is what the application report detail says about one issue
type Allotment struct {
	Status   string
	Quantity string
	Allotted bool
}

// ParseAllotment reads status and allotted quantity from report detail fields.
// The portal spells it both "alloted" and "allotted"
func ParseAllotment(fields []Field) (Allotment, bool) {
	var a Allotment
	found := false
	for _, label := range []string{"allotment status", "alloted status", "allotted status", "status"} {
		if v, ok := FieldValue(fields, label); ok {
			a.Status, found = v, true
			break
		}
	}
	for _, label := range []string{"alloted kitta", "allotted kitta", "allotted quantity", "alloted quantity"} {
		if v, ok := FieldValue(fields, label); ok {
			a.Quantity = v
			break
		}
	}

	st := strings.ToLower(a.Status)
	a.Allotted = strings.Contains(st, "allot") && !strings.Contains(st, "not")
	if n, ok := ParseQuantity(a.Quantity); ok && n > 0 {
		a.Allotted = true
	}
	return a, found
}
