package service

import (
	"testing"

	"mywallet/internal/adapters/meroshare"
)

func listing(t *testing.T, html string) meroshare.Listing {
	t.Helper()
	l, err := meroshare.ParseListing(html, meroshare.DefaultLocators())
	if err != nil {
		t.Fatal(err)
	}
	return l
}

const twoCards = `<div class="company-list"><span class="company-name">Sample Hydro Power</span><button>Edit</button></div>
<div class="company-list"><span class="company-name">Sample Hydropower</span><button>Apply</button></div>
<div class="company-list"><span class="company-name">Sample Hydropower Ltd</span><button>Edit</button></div>
<div class="company-list"><span class="company-name">Upper Hydropower</span></div>`

func TestDiscover(t *testing.T) {
	l := listing(t, twoCards)

	m := Discover(l, "Sample Hydropower Limited", meroshare.ActionApply, meroshare.ActionEdit)
	if m.Kind != MatchApply || m.Entry.Index != 1 {
		t.Fatalf("match = %+v", m)
	}
	if len(m.Discovered) != 4 {
		t.Fatalf("discovered = %v", m.Discovered)
	}

	m = Discover(l, "Upper Hydropower", meroshare.ActionApply, meroshare.ActionEdit)
	if m.Kind != MatchNotFound || len(m.Discovered) != 4 {
		t.Fatalf("entry without actions must not match: %+v", m)
	}

	m = Discover(l, "Sample Hydropower", meroshare.ActionReport)
	if m.Kind != MatchNotFound {
		t.Fatalf("report preference = %+v", m)
	}
}

func TestDiscover_FirstDefinitiveEntryWins(t *testing.T) {
	html := `<div class="company-list"><span class="company-name">Sample Hydropower</span><button>Edit</button></div>
<div class="company-list"><span class="company-name">Sample Hydropower Ltd</span><button>Apply</button></div>`
	m := Discover(listing(t, html), "Sample Hydropower", meroshare.ActionApply, meroshare.ActionEdit)
	if m.Kind != MatchEdit || m.Entry.Index != 0 {
		t.Fatalf("scan should stop at the first matching entry: %+v", m)
	}
}

func TestDiscover_EmptyMarker(t *testing.T) {
	l := listing(t, `<table class="asba-table"><tbody><tr><td class="no-data">No Record(s) Found</td></tr></tbody></table>`)
	m := Discover(l, "anything", meroshare.ActionApply)
	if m.Kind != MatchNoOpenIssues || len(m.Discovered) != 0 {
		t.Fatalf("match = %+v", m)
	}
}

func TestNotFoundMessage(t *testing.T) {
	if got := notFoundMessage([]string{"A Ltd", "B Co"}); got != "IPO not found - available: A Ltd, B Co" {
		t.Fatalf("message = %q", got)
	}
	if got := notFoundMessage(nil); got != "IPO not found - nothing is listed" {
		t.Fatalf("message = %q", got)
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateSuccess, StateFailed, StateUnconfirmed, StateAlreadyApplied, StateNotFound, StateNoOpenIssues} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StateStart, StateMatched, StateSubmitted} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}
