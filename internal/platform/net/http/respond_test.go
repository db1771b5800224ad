package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "mywallet/internal/platform/errors"
	pnet "mywallet/internal/platform/net"
	phttp "mywallet/internal/platform/net/http"
)

type applyBody struct {
	Company string `json:"company"`
}

func serve(t *testing.T, h phttp.Handler, body string) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req = req.WithContext(pnet.WithRequest(req.Context(), "rid-1"))
	rec := httptest.NewRecorder()
	h(rec, req)
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return rec, env
}

func TestJSONHandler(t *testing.T) {
	echo := phttp.JSONHandler(func(_ *http.Request, in applyBody) (any, error) {
		switch in.Company {
		case "missing":
			return nil, perr.NotFoundf("%s is not listed", in.Company)
		case "pending":
			return phttp.Response{Status: http.StatusRequestTimeout, Body: in}, nil
		}
		return in, nil
	})

	cases := []struct {
		name   string
		body   string
		status int
		code   perr.ErrorCode
	}{
		{"data", `{"company":"Hydro"}`, http.StatusOK, 0},
		{"handler error", `{"company":"missing"}`, http.StatusNotFound, perr.ErrorCodeNotFound},
		{"handler picks status", `{"company":"pending"}`, http.StatusRequestTimeout, 0},
		{"bad body", `{"company":`, http.StatusBadRequest, perr.ErrorCodeJSON},
		{"unknown field", `{"pin":"1"}`, http.StatusBadRequest, perr.ErrorCodeJSON},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := serve(t, echo, tc.body)
			if rec.Code != tc.status || env.StatusCode != tc.status {
				t.Fatalf("status %d/%d want %d", rec.Code, env.StatusCode, tc.status)
			}
			if env.Code != tc.code || env.RequestID != "rid-1" {
				t.Fatalf("envelope %+v", env)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Fatalf("content type %q", ct)
			}
		})
	}
}

func TestCallHandler_Headers(t *testing.T) {
	h := phttp.CallHandler(func(*http.Request) (any, error) {
		return phttp.Response{Body: "ok", Header: http.Header{"X-Run-Id": {"run-9"}}}, nil
	})
	rec, env := serve(t, h, "")
	if rec.Code != http.StatusOK || env.Data != "ok" {
		t.Fatalf("got %d %+v", rec.Code, env)
	}
	if rec.Header().Get("X-Run-Id") != "run-9" {
		t.Fatalf("headers %v", rec.Header())
	}
}
