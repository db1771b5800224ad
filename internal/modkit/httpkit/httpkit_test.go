package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mywallet/internal/platform/config"
	perr "mywallet/internal/platform/errors"
	pnet "mywallet/internal/platform/net"
	phttp "mywallet/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type quote struct {
	Company string `json:"company"`
}

func serve(m http.Handler, method, path, body string, hdr ...string) (*httptest.ResponseRecorder, Envelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, req)
	var env Envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func mountV1(fn func(Router)) *chi.Mux {
	m := chi.NewRouter()
	MountAPIV1(phttp.AdaptChi(m), CommonStack(Stack{}), fn)
	return m
}

func TestMountAPIV1_ScopesRoutesAndStack(t *testing.T) {
	m := mountV1(func(api Router) {
		PostJSON(api, "/quote", func(_ *http.Request, in quote) (any, error) {
			if in.Company == "" {
				return nil, perr.Validationf("company is required")
			}
			return Response{Status: http.StatusAccepted, Body: in}, nil
		})
		Get(api, "/boom", func(*http.Request) (any, error) { panic("driver crashed") })
		Get(api, "/who", func(r *http.Request) (any, error) { return pnet.RequestID(r.Context()), nil })
	})

	cases := []struct {
		name, method, path, body string
		status                   int
		code                     perr.ErrorCode
	}{
		{"json handler status", http.MethodPost, "/api/v1/quote", `{"company":"Hydro"}`, http.StatusAccepted, 0},
		{"handler error", http.MethodPost, "/api/v1/quote", `{}`, http.StatusBadRequest, perr.ErrorCodeValidation},
		{"trailing slash stripped", http.MethodPost, "/api/v1/quote/", `{"company":"Hydro"}`, http.StatusAccepted, 0},
		{"panic becomes envelope", http.MethodGet, "/api/v1/boom", ``, http.StatusInternalServerError, perr.ErrorCodePanic},
		{"outside the scope", http.MethodGet, "/quote", ``, http.StatusNotFound, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr, env := serve(m, tc.method, tc.path, tc.body)
			if rr.Code != tc.status {
				t.Fatalf("status %d want %d (%s)", rr.Code, tc.status, rr.Body.String())
			}
			if tc.code != 0 && env.Code != tc.code {
				t.Fatalf("code %v want %v", env.Code, tc.code)
			}
			if rr.Header().Get("Cache-Control") == "" && tc.status != http.StatusNotFound {
				t.Fatal("no-cache headers missing")
			}
		})
	}

	_, env := serve(m, http.MethodGet, "/api/v1/who", "", "X-Request-ID", "req-42")
	if env.Data != "req-42" || env.RequestID != "req-42" {
		t.Fatalf("request id not propagated: %+v", env)
	}
}

func TestStackFromConfig(t *testing.T) {
	t.Setenv("API_MAX_INFLIGHT", "2")
	t.Setenv("API_CORS_ORIGINS", "https://a.example, https://b.example")
	s := StackFromConfig(config.New(), time.Minute)
	if s.Timeout != time.Minute || s.MaxInFlight != 2 || len(s.CORSOrigins) != 2 || s.SlowRequest != 2*time.Minute {
		t.Fatalf("stack = %+v", s)
	}
}

func TestProtected(t *testing.T) {
	fn, err := StaticTokens([]string{"ci:s3cret", "ops:0ther"})
	if err != nil {
		t.Fatal(err)
	}
	m := chi.NewRouter()
	r := phttp.AdaptChi(m)
	Get(r, "/open", func(*http.Request) (any, error) { return "open", nil })
	Protected(r, NewPortFunc(fn), func(r Router) {
		Get(r, "/who", func(r *http.Request) (any, error) { return pnet.Caller(r.Context()), nil })
	})

	cases := []struct {
		path, header string
		status       int
		data         string
	}{
		{"/who", "", http.StatusUnauthorized, ""},
		{"/who", "Bearer nope", http.StatusUnauthorized, ""},
		{"/who", "Bearer s3cret", http.StatusOK, "ci"},
		{"/who", "bearer 0ther", http.StatusOK, "ops"},
		{"/open", "", http.StatusOK, "open"},
	}
	for _, tc := range cases {
		rr, env := serve(m, http.MethodGet, tc.path, "", "Authorization", tc.header)
		if rr.Code != tc.status {
			t.Fatalf("%s %q: status %d", tc.path, tc.header, rr.Code)
		}
		if tc.status == http.StatusUnauthorized && env.Code != perr.ErrorCodeUnauthorized {
			t.Fatalf("%q: code %v", tc.header, env.Code)
		}
		if tc.data != "" && env.Data != tc.data {
			t.Fatalf("%q: data %v", tc.header, env.Data)
		}
	}
}

func TestProtected_NilPortLeavesRoutesOpen(t *testing.T) {
	m := chi.NewRouter()
	Protected(phttp.AdaptChi(m), nil, func(r Router) {
		Get(r, "/who", func(*http.Request) (any, error) { return "anyone", nil })
	})
	if rr, _ := serve(m, http.MethodGet, "/who", ""); rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
}
