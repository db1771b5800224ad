// Package normalize canonicalises company names so portal listings can be
// matched against the names users type
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode compatibility decomposition, case folding
// 3 Remove combining and format marks (accents, ZWJ, BOM)
// 4 Width fold fullwidth to ASCII, recompose NFKC
// 5 Split each word on ( ) . , - and drop fragments that are suffix words
// 6 Glue the remaining fragments back together, so "Hydro-Power" reads "hydropower"
// 7 Collapse whitespace, repeat 5-7 until nothing changes
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains; transform.Chain is not safe for concurrent use
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
			norm.NFKC,
		)
	},
}

// suffixes are legal-form words that vary between announcements and the portal
var suffixes = map[string]struct{}{
	"limited": {},
	"ltd":     {},
	"public":  {},
	"private": {},
	"pvt":     {},
	"co":      {},
	"company": {},
	"inc":     {},
}

func isPunct(r rune) bool {
	switch r {
	case '(', ')', '.', ',', '-':
		return true
	}
	return false
}

// strip is one pass of suffix and punctuation removal
func strip(s string) string {
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		var b strings.Builder
		for _, frag := range strings.FieldsFunc(w, isPunct) {
			if _, drop := suffixes[frag]; drop {
				continue
			}
			b.WriteString(frag)
		}
		if b.Len() > 0 {
			kept = append(kept, b.String())
		}
	}
	return strings.Join(kept, " ")
}

// CompanyName returns the comparison form of a company name.
// The result is idempotent: CompanyName(CompanyName(s)) == CompanyName(s)
func CompanyName(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		ns = strings.ToLower(s)
	}

	// glued fragments can form a new suffix word ("c-o"); every pass only shrinks the string
	for {
		next := strip(ns)
		if next == ns {
			return ns
		}
		ns = next
	}
}

// Matches reports whether a portal candidate names the target company.
// Both sides are normalized; the match holds when either contains the other.
// Short names can produce false positives ("ABC" matches "ABC Hydro"); callers act on the first match only
func Matches(candidate, target string) bool {
	c, t := CompanyName(candidate), CompanyName(target)
	if c == "" || t == "" {
		return false
	}
	return strings.Contains(c, t) || strings.Contains(t, c)
}
