package normalize

import (
	"testing"
)

func TestCompanyName_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"identity", "sample hydropower", "sample hydropower"},
		{"case fold", "SAMPLE Hydropower", "sample hydropower"},
		{"suffix limited", "Sample Hydropower Limited", "sample hydropower"},
		{"suffix with dots", "Company Name Ltd.", "name"},
		{"co dot ltd glued", "ABC Co.Ltd", "abc"},
		{"parenthesised suffix", "Nabil Bank (Public) Limited", "nabil bank"},
		{"pvt ltd", "Himal Power Pvt. Ltd.", "himal power"},
		{"hyphen and comma", "Upper-Tamakoshi, Hydro", "uppertamakoshi hydro"},
		{"hyphen glued", "Mai Khola Hydro-Power Ltd.", "mai khola hydropower"},
		{"suffix fragment inside word", "Hydro-Ltd Power", "hydro power"},
		{"glued fragments form suffix", "ABC C-O", "abc"},
		{"lone hyphen", "Ngadi - Power", "ngadi power"},
		{"whole words only", "Coast Incline Companies", "coast incline companies"},
		{"fullwidth", "ＡＢＣ Ltd", "abc"},
		{"zero width", "AB\u200bC Ltd", "abc"},
		{"combining accent", "Café Pvt Ltd", "cafe"},
		{"whitespace runs", "  a\t\tb \n c  ", "a b c"},
		{"only suffixes", "Pvt. Ltd.", ""},
		{"invalid utf8", string([]byte{0xff, 'a', 'b', 'c'}), "abc"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CompanyName(tc.in)
			if got != tc.out {
				t.Fatalf("CompanyName(%q) = %q, want %q", tc.in, got, tc.out)
			}
			if again := CompanyName(got); again != got {
				t.Fatalf("CompanyName not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestCompanyName_Idempotent(t *testing.T) {
	inputs := []string{
		"Sample Hydropower Limited",
		"ABC Co. Ltd",
		"  Ｆ@N (Private) Company  ",
		"ltd ltd ltd",
		"River Falls Power Co.",
		"Ngadi Group Power Ltd. - (IPO for general public)",
		"Hydro-Power c-o.ltd",
	}
	for _, in := range inputs {
		once := CompanyName(in)
		if twice := CompanyName(once); twice != once {
			t.Fatalf("CompanyName(%q): %q then %q", in, once, twice)
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		candidate, target string
		want              bool
	}{
		{"Company Name Ltd.", "company name", true},
		{"ABC Holdings", "XYZ", false},
		{"Sample Hydropower", "Sample Hydropower Limited", true},
		{"ABC Co. Ltd", "ABC", true},
		{"Sample Hydropower Limited (Local)", "sample hydropower", true},
		{"Mai Khola Hydro-Power Ltd.", "Mai Khola Hydropower", true},
		{"Mai Khola Hydropower Limited", "mai khola hydro-power", true},
		{"Ltd", "Ltd", false},
		{"", "abc", false},
		{"abc", "", false},
	}
	for _, tc := range tests {
		if got := Matches(tc.candidate, tc.target); got != tc.want {
			t.Fatalf("Matches(%q, %q) = %v, want %v", tc.candidate, tc.target, got, tc.want)
		}
	}
}

func TestMatches_Reflexive(t *testing.T) {
	for _, s := range []string{"a", "Sample Hydropower", "Nabil Bank Limited", "x-y-z", "Ｚ"} {
		if !Matches(s, s) {
			t.Fatalf("Matches(%q, %q) should be true", s, s)
		}
	}
}
