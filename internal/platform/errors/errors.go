// Package errors is the project error type: a stable code, a human message,
// an optional field and operation, and the wrapped cause.
// Import it as perr
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine readable class of an error. Values go over the wire; append only
type ErrorCode uint16

const (
	ErrorCodeUnknown      ErrorCode = iota // unclassified
	ErrorCodePanic                         // recovered panic
	ErrorCodeUnavailable                   // browser or database could not be started or reached
	ErrorCodeTimeout                       // a bounded wait expired; a retry may succeed
	ErrorCodeConflict                      // same key already in flight or recorded
	ErrorCodeUnauthorized                  // the portal rejected the credentials
	ErrorCodeValidation                    // bad input, caught before any side effect
	ErrorCodeJSON                          // undecodable request body
	ErrorCodeNotFound                      // missing resource or listing
	ErrorCodeUnconfirmed                   // submitted but the outcome was not observed
	ErrorCodeAutomation                    // unexpected page shape or driver failure
	ErrorCodeDB                            // any other database failure
)

var codes = [...]struct {
	name   string
	status int
}{
	ErrorCodeUnknown:      {"unknown", http.StatusInternalServerError},
	ErrorCodePanic:        {"panic", http.StatusInternalServerError},
	ErrorCodeUnavailable:  {"unavailable", http.StatusServiceUnavailable},
	ErrorCodeTimeout:      {"timeout", http.StatusGatewayTimeout},
	ErrorCodeConflict:     {"conflict", http.StatusConflict},
	ErrorCodeUnauthorized: {"unauthorized", http.StatusUnauthorized},
	ErrorCodeValidation:   {"validation", http.StatusBadRequest},
	ErrorCodeJSON:         {"json", http.StatusBadRequest},
	ErrorCodeNotFound:     {"not_found", http.StatusNotFound},
	ErrorCodeUnconfirmed:  {"unconfirmed", http.StatusRequestTimeout},
	ErrorCodeAutomation:   {"automation", http.StatusInternalServerError},
	ErrorCodeDB:           {"db", http.StatusInternalServerError},
}

// String returns the stable lower case name
func (c ErrorCode) String() string {
	if int(c) < len(codes) {
		return codes[c].name
	}
	return fmt.Sprintf("code(%d)", uint16(c))
}

// Status is the HTTP status a handler answers with; unknown codes are 500
func (c ErrorCode) Status() int {
	if int(c) < len(codes) {
		return codes[c].status
	}
	return http.StatusInternalServerError
}

// ErrNotFound is the shared not found sentinel
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error carries a code for machines and a message for humans
type Error struct {
	code  ErrorCode
	msg   string
	field string
	op    string
	cause error
}

// Wire is the JSON form an error takes in responses and CLI output
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the error class
func (e *Error) Code() ErrorCode { return e.code }

// Message returns the message without the cause
func (e *Error) Message() string { return e.msg }

// Field returns the offending input field or page element, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation or flow state the error was raised in, if any
func (e *Error) Op() string { return e.op }

// New returns an error with code and msg
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf is New with a format
func Newf(code ErrorCode, format string, a ...any) error {
	return New(code, fmt.Sprintf(format, a...))
}

// Wrap returns an error with code and msg caused by cause
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, cause: cause}
}

// Wrapf is Wrap with a format
func Wrapf(cause error, code ErrorCode, format string, a ...any) error {
	return Wrap(cause, code, fmt.Sprintf(format, a...))
}

// Validationf and the shorthands below are Newf with a fixed code
func Validationf(format string, a ...any) error   { return Newf(ErrorCodeValidation, format, a...) }
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }
func Automationf(format string, a ...any) error   { return Newf(ErrorCodeAutomation, format, a...) }
func Timeoutf(format string, a ...any) error      { return Newf(ErrorCodeTimeout, format, a...) }
func Unavailablef(format string, a ...any) error  { return Newf(ErrorCodeUnavailable, format, a...) }
func Conflictf(format string, a ...any) error     { return Newf(ErrorCodeConflict, format, a...) }
func NotFoundf(format string, a ...any) error     { return Newf(ErrorCodeNotFound, format, a...) }
func JSONErrf(format string, a ...any) error      { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error     { return Newf(ErrorCodePanic, format, a...) }
func Internalf(format string, a ...any) error     { return Newf(ErrorCodeUnknown, format, a...) }

// As returns the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf returns err's code, ErrorCodeUnknown for foreign errors
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus maps any error to a status
func HTTPStatus(err error) int { return CodeOf(err).Status() }

// HTTP returns the status and wire body for err; nil is 200 with an empty body
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	if e, ok := As(err); ok {
		return e.code.Status(), Wire{Code: e.code, Message: e.msg, Field: e.field}
	}
	return http.StatusInternalServerError, Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// WithField copies err's *Error with field set; foreign errors pass through
func WithField(err error, field string) error {
	return modify(err, func(e *Error) { e.field = field })
}

// WithOp copies err's *Error with op set; foreign errors pass through
func WithOp(err error, op string) error {
	return modify(err, func(e *Error) { e.op = op })
}

func modify(err error, fn func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	fn(&c)
	return &c
}

// Retryable reports whether the same input may succeed later.
// Timeouts and unavailable dependencies qualify, as do transient Postgres failures
func Retryable(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeTimeout, ErrorCodeUnavailable:
		return true
	case ErrorCodeUnauthorized, ErrorCodeValidation, ErrorCodeUnconfirmed:
		return false
	}
	return transientPG(err)
}
