package service

import (
	"strings"

	"mywallet/internal/adapters/meroshare"
	"mywallet/internal/core/normalize"
)

// MatchKind is the decision a discovery scan produced
type MatchKind string

// Match kinds
const (
	MatchApply        MatchKind = "apply"
	MatchEdit         MatchKind = "edit"
	MatchReport       MatchKind = "report"
	MatchNotFound     MatchKind = "not_found"
	MatchNoOpenIssues MatchKind = "no_open_issues"
)

// Match is the result of one scan. Discovered always lists every scanned name
type Match struct {
	Kind       MatchKind
	Entry      meroshare.Entry
	Discovered []string
}

var kindOf = map[meroshare.Action]MatchKind{
	meroshare.ActionApply:  MatchApply,
	meroshare.ActionEdit:   MatchEdit,
	meroshare.ActionReport: MatchReport,
}

// Discover picks the first entry whose name matches target and offers one of prefer, checked in
// order per entry. Scanning stops at that entry. An explicit empty marker wins over everything
func Discover(l meroshare.Listing, target string, prefer ...meroshare.Action) Match {
	m := Match{Kind: MatchNotFound, Discovered: l.Names()}
	if l.Layout == meroshare.LayoutEmpty {
		m.Kind = MatchNoOpenIssues
		return m
	}
	for _, e := range l.Entries {
		if !normalize.Matches(e.Name, target) {
			continue
		}
		for _, a := range prefer {
			if e.Can(a) {
				m.Kind, m.Entry = kindOf[a], e
				return m
			}
		}
	}
	return m
}

// notFoundMessage lists what was available so a miss is diagnosable
func notFoundMessage(discovered []string) string {
	if len(discovered) == 0 {
		return "IPO not found - nothing is listed"
	}
	return "IPO not found - available: " + strings.Join(discovered, ", ")
}
