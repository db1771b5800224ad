package raw

import "testing"

func TestConf(t *testing.T) {
	t.Setenv("LOG_LEVEL", "  warn ")
	t.Setenv("LOG_CALLER", "yes")
	t.Setenv("LOG_JSON", "0")
	t.Setenv("LOG_BAD_BOOL", "maybe")
	t.Setenv("LOG_SAMPLE", "5")
	t.Setenv("LOG_NEG", "-3")
	t.Setenv("LOG_WORD", "five")

	c := New().Prefix("LOG_")

	if got := c.Get("LEVEL", "debug"); got != "warn" {
		t.Errorf("Get = %q", got)
	}
	if got := c.Get("MISSING", "debug"); got != "debug" {
		t.Errorf("Get missing = %q", got)
	}
	if got := New().Get("LOG_LEVEL", ""); got != "warn" {
		t.Errorf("unprefixed Get = %q", got)
	}

	bools := []struct {
		key       string
		def, want bool
	}{
		{"CALLER", false, true},
		{"JSON", true, false},
		{"BAD_BOOL", true, true},
		{"MISSING", true, true},
	}
	for _, tc := range bools {
		if got := c.GetBool(tc.key, tc.def); got != tc.want {
			t.Errorf("GetBool(%s) = %v", tc.key, got)
		}
	}

	ints := []struct {
		key       string
		def, want int
	}{
		{"SAMPLE", 0, 5},
		{"NEG", 1, 1},
		{"WORD", 2, 2},
		{"MISSING", 3, 3},
	}
	for _, tc := range ints {
		if got := c.GetInt(tc.key, tc.def); got != tc.want {
			t.Errorf("GetInt(%s) = %d", tc.key, got)
		}
	}
}
