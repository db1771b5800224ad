package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodes(t *testing.T) {
	cases := []struct {
		code   ErrorCode
		name   string
		status int
	}{
		{ErrorCodeUnknown, "unknown", http.StatusInternalServerError},
		{ErrorCodeUnavailable, "unavailable", http.StatusServiceUnavailable},
		{ErrorCodeTimeout, "timeout", http.StatusGatewayTimeout},
		{ErrorCodeConflict, "conflict", http.StatusConflict},
		{ErrorCodeUnauthorized, "unauthorized", http.StatusUnauthorized},
		{ErrorCodeValidation, "validation", http.StatusBadRequest},
		{ErrorCodeJSON, "json", http.StatusBadRequest},
		{ErrorCodeNotFound, "not_found", http.StatusNotFound},
		{ErrorCodeUnconfirmed, "unconfirmed", http.StatusRequestTimeout},
		{ErrorCodeAutomation, "automation", http.StatusInternalServerError},
		{ErrorCode(9999), "code(9999)", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if tc.code.String() != tc.name || tc.code.Status() != tc.status {
			t.Errorf("%d: got %s/%d, want %s/%d", tc.code, tc.code, tc.code.Status(), tc.name, tc.status)
		}
	}
}

func TestError_WrapAndInspect(t *testing.T) {
	cause := stderrs.New("net::ERR_CONNECTION_RESET")
	err := fmt.Errorf("apply: %w", Wrapf(cause, ErrorCodeAutomation, "click %s", "apply"))

	if err.Error() != "apply: click apply: net::ERR_CONNECTION_RESET" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !stderrs.Is(err, cause) {
		t.Fatal("cause lost")
	}
	e, ok := As(err)
	if !ok || e.Code() != ErrorCodeAutomation || e.Message() != "click apply" {
		t.Fatalf("As = %+v, %v", e, ok)
	}
	if _, ok := As(cause); ok {
		t.Fatal("foreign error matched")
	}
	if CodeOf(cause) != ErrorCodeUnknown || !IsCode(Conflictf("dup"), ErrorCodeConflict) {
		t.Fatal("CodeOf mismatch")
	}
}

func TestWithFieldAndOp_CopyOnWrite(t *testing.T) {
	base := Validationf("crn is required")
	tagged := WithOp(WithField(base, "crn"), "apply")

	e, _ := As(tagged)
	if e.Field() != "crn" || e.Op() != "apply" {
		t.Fatalf("tagged = %+v", e)
	}
	if orig, _ := As(base); orig.Field() != "" || orig.Op() != "" {
		t.Fatal("original mutated")
	}
	foreign := stderrs.New("x")
	if WithField(foreign, "f") != foreign {
		t.Fatal("foreign errors pass through")
	}
}

func TestHTTP(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		wire   Wire
	}{
		{"nil", nil, http.StatusOK, Wire{}},
		{"ours", WithField(Unauthorizedf("login rejected"), "password"), http.StatusUnauthorized,
			Wire{Code: ErrorCodeUnauthorized, Message: "login rejected", Field: "password"}},
		{"foreign", stderrs.New("boom"), http.StatusInternalServerError, Wire{Code: ErrorCodeUnknown, Message: "boom"}},
	}
	for _, tc := range cases {
		status, wire := HTTP(tc.err)
		if status != tc.status || wire != tc.wire {
			t.Errorf("%s: %d %+v", tc.name, status, wire)
		}
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", Timeoutf("toast"), true},
		{"unavailable", Unavailablef("browser"), true},
		{"auth", Unauthorizedf("bad password"), false},
		{"validation", Validationf("crn"), false},
		{"unconfirmed", New(ErrorCodeUnconfirmed, "no toast"), false},
		{"pg deadlock", FromPostgres(pgErr("40P01", ""), "ledger"), true},
		{"pg duplicate", FromPostgres(pgErr("23505", ""), "ledger"), false},
		{"pg text", stderrs.New("ERROR: could not serialize access due to concurrent update"), true},
		{"canceled", Wrap(context.Canceled, ErrorCodeDB, "ledger"), false},
		{"foreign", stderrs.New("x"), false},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Errorf("%s: Retryable = %v", tc.name, got)
		}
	}
}
