package version

import "testing"

func TestInfo(t *testing.T) {
	bi := Info("")
	if bi.Service != "mywallet" || bi.Version != "dev" {
		t.Fatalf("unexpected default build info: %+v", bi)
	}
	if got := Info("mywallet-api").Service; got != "mywallet-api" {
		t.Fatalf("service = %q", got)
	}
}
