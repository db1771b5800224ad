package http_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mywallet/internal/platform/config"
	phttp "mywallet/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func header(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Layer", name)
			next.ServeHTTP(w, r)
		})
	}
}

func text(body string) phttp.Handler {
	return func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, body) }
}

func TestAdaptChi_Nesting(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())
	r.Use(header("root"))
	r.Get("/root", text("root"))
	r.Group(func(g phttp.Router) {
		g.Use(header("group"))
		g.Post("/apply", text("applied"))
	})
	r.Route("/api", func(api phttp.Router) {
		api.Use(header("api"))
		api.Route("/v1", func(v1 phttp.Router) {
			v1.Get("/ok", text("v1"))
		})
		api.Handle("/std", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))
	})

	cases := []struct {
		method, path string
		status       int
		body         string
		layers       []string
	}{
		{http.MethodGet, "/root", 200, "root", []string{"root"}},
		{http.MethodPost, "/apply", 200, "applied", []string{"root", "group"}},
		{http.MethodGet, "/apply", http.StatusMethodNotAllowed, "", nil},
		{http.MethodGet, "/api/v1/ok", 200, "v1", []string{"root", "api"}},
		{http.MethodGet, "/api/std", http.StatusAccepted, "", []string{"root", "api"}},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.Mux().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			if rec.Code != tc.status {
				t.Fatalf("status %d want %d", rec.Code, tc.status)
			}
			if tc.body != "" && rec.Body.String() != tc.body {
				t.Fatalf("body %q want %q", rec.Body.String(), tc.body)
			}
			if tc.layers == nil {
				return
			}
			got := rec.Header().Values("X-Layer")
			if len(got) != len(tc.layers) {
				t.Fatalf("layers %v want %v", got, tc.layers)
			}
			for i := range got {
				if got[i] != tc.layers[i] {
					t.Fatalf("layers %v want %v", got, tc.layers)
				}
			}
		})
	}
}

func TestMountProfiler(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		r := phttp.AdaptChi(chi.NewRouter())
		phttp.MountProfiler(r, "/debug", enabled)
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil))
		want := http.StatusNotFound
		if enabled {
			want = http.StatusOK
		}
		if rec.Code != want {
			t.Fatalf("enabled=%v: status %d want %d", enabled, rec.Code, want)
		}
	}
}

func TestServer_RunAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	t.Setenv("API_PORT", addr)
	hooked := false
	srv := phttp.NewServer(config.New(), func(*chi.Mux) { hooked = true })
	if !hooked || srv.Addr() != addr {
		t.Fatalf("hooked=%v addr=%q", hooked, srv.Addr())
	}
	srv.Router().Get("/ping", text("pong"))

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background()) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		if resp, err = http.Get("http://" + addr + "/ping"); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "pong" {
		t.Fatalf("body %q", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("run after shutdown: %v", err)
	}
}
