package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mywallet/internal/modkit/module"
	phttp "mywallet/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func get(t *testing.T, d Deps, path string) map[string]any {
	t.Helper()
	code, data := fetch(t, d, path)
	if code != stdhttp.StatusOK {
		t.Fatalf("%s: code = %d", path, code)
	}
	return data
}

func fetch(t *testing.T, d Deps, path string) (int, map[string]any) {
	t.Helper()
	m := chi.NewRouter()
	Register(phttp.AdaptChi(m), d)
	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	var env struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	return rr.Code, env.Data
}

func TestReady(t *testing.T) {
	cases := []struct {
		name   string
		pg     Pinger
		code   int
		status string
		check  string
	}{
		{"no database", nil, stdhttp.StatusOK, "ok", "skipped"},
		{"healthy", pinger{}, stdhttp.StatusOK, "ok", "ok"},
		{"down", pinger{err: errors.New("connection refused")}, stdhttp.StatusServiceUnavailable, "fail", "fail"},
	}
	for _, tc := range cases {
		d := Deps{ServiceName: "mywallet-api", StartedAt: time.Now(), Checks: map[string]Pinger{"pg": tc.pg}}
		code, data := fetch(t, d, "/ready")
		checks, _ := data["checks"].([]any)
		if code != tc.code || data["status"] != tc.status || len(checks) != 1 {
			t.Fatalf("%s: %d %v", tc.name, code, data)
		}
		if c := checks[0].(map[string]any); c["name"] != "pg" || c["status"] != tc.check {
			t.Fatalf("%s: check = %v", tc.name, c)
		}
	}
}

func TestVersionAndHealth(t *testing.T) {
	d := Deps{ServiceName: "mywallet-api", StartedAt: time.Now()}
	if got := get(t, d, "/version")["service"]; got != "mywallet-api" {
		t.Fatalf("version service = %v", got)
	}
	if got := get(t, d, "/health")["ok"]; got != true {
		t.Fatalf("health = %v", got)
	}
}

func TestService_ListsRegisteredModules(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)
	module.Register("meta", nil)
	module.Register("meroshare", nil)

	got := get(t, Deps{ServiceName: "mywallet-api", StartedAt: time.Now()}, "/service")
	mods, _ := got["modules"].([]any)
	if len(mods) != 2 || mods[0] != "meroshare" || mods[1] != "meta" {
		t.Fatalf("modules = %v", got["modules"])
	}
}
