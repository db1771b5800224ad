package middleware_test

import (
	"compress/flate"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	perr "mywallet/internal/platform/errors"
	pnet "mywallet/internal/platform/net"
	"mywallet/internal/platform/net/middleware"
)

func TestAccessLog_PassesResponseThrough(t *testing.T) {
	cases := []struct {
		name   string
		slow   time.Duration
		status int
		body   string
	}{
		{"implicit ok", 0, 0, "done"},
		{"created", 0, http.StatusCreated, "made"},
		{"slow", time.Nanosecond, http.StatusOK, "late"},
		{"server error", 0, http.StatusBadGateway, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tc.status != 0 {
					w.WriteHeader(tc.status)
				}
				_, _ = io.WriteString(w, tc.body)
			})
			rr := httptest.NewRecorder()
			middleware.AccessLog(tc.slow)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
			want := tc.status
			if want == 0 {
				want = http.StatusOK
			}
			if rr.Code != want || rr.Body.String() != tc.body {
				t.Fatalf("got %d %q", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestRecoverJSON(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("chromium vanished") })
	req := httptest.NewRequest(http.MethodPost, "/apply", nil)
	req = req.WithContext(pnet.WithRequest(req.Context(), "req-7"))
	rr := httptest.NewRecorder()

	middleware.RecoverJSON(boom).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") != "req-7" {
		t.Fatalf("request id header %q", rr.Header().Get("X-Request-ID"))
	}
	var env pnet.Wire
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Code != perr.ErrorCodePanic || env.RequestID != "req-7" {
		t.Fatalf("envelope %+v", env)
	}
	if strings.Contains(rr.Body.String(), "chromium") {
		t.Fatal("panic value leaked to the client")
	}
}

func TestRecoverJSON_AbortHandlerRepanics(t *testing.T) {
	abort := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) })
	defer func() {
		if recover() != http.ErrAbortHandler {
			t.Fatal("ErrAbortHandler should propagate")
		}
	}()
	middleware.RecoverJSON(abort).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestThrottle(t *testing.T) {
	if middleware.Throttle(0)(http.NotFoundHandler()) == nil {
		t.Fatal("disabled throttle must pass through")
	}

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	slow := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		entered <- struct{}{}
		<-release
	})
	h := middleware.Throttle(1)(slow)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/apply", nil))
	}()
	<-entered

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/apply", nil))
	close(release)
	wg.Wait()
	if rr.Code != http.StatusTooManyRequests && rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("second request status %d", rr.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"https://wallet.example"}})(http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/meroshare/apply", nil)
	req.Header.Set("Origin", "https://wallet.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://wallet.example" {
		t.Fatalf("allow origin %q", got)
	}
}

func TestCompress(t *testing.T) {
	h := middleware.Compress(flate.BestSpeed)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, strings.Repeat(`{"company":"x"}`, 200))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("encoding %q", rr.Header().Get("Content-Encoding"))
	}
}
