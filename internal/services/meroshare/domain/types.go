// Package domain holds MeroShare automation types independent of transport or storage
package domain

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Account is what the portal login needs
type Account struct {
	DPID     string `json:"dp_id"    validate:"required,max=32,printascii" example:"13700"`
	Username string `json:"username" validate:"required,max=64,printascii" example:"01234567"`
	Password string `json:"password" validate:"required,max=128" example:"********"`
}

// Credentials are supplied per call and never persisted; apply needs all five fields
type Credentials struct {
	Account
	CRN string `json:"crn" validate:"required,max=64,printascii" example:"CRN-0012345"`
	PIN string `json:"pin" validate:"required,max=16,numeric" example:"1234"`
}

// AutomationOptions affect observability only
type AutomationOptions struct {
	ShowBrowser bool `json:"show_browser,omitempty" example:"false"`
}

// LoginInput asks for a login check only
type LoginInput struct {
	Account
	Options AutomationOptions `json:"options"`
}

// ApplyInput asks for an IPO application. Quantity 0 means the detected minimum
type ApplyInput struct {
	Credentials
	Company  string            `json:"company"  validate:"required,min=1,max=200" example:"Sample Hydropower Limited"`
	Quantity int               `json:"quantity" validate:"gte=0,lte=1000000" example:"0"`
	Options  AutomationOptions `json:"options"`
}

// AllotmentInput asks for the allotment result of one issue
type AllotmentInput struct {
	Account
	Company string            `json:"company" validate:"required,min=1,max=200" example:"Sample Hydropower Limited"`
	Options AutomationOptions `json:"options"`
}

// PortfolioInput asks for the current holdings
type PortfolioInput struct {
	Account
	Options AutomationOptions `json:"options"`
}

// Status classifies an apply outcome
type Status string

const (
	// StatusApplied means the portal confirmed the submission
	StatusApplied Status = "applied"

	// StatusAlreadyApplied means the issue was applied before; nothing was submitted
	StatusAlreadyApplied Status = "already_applied"

	// StatusRejected means the portal answered the submission with an error toast
	StatusRejected Status = "rejected"

	// StatusUnconfirmed means the form was submitted but no confirmation was observed
	StatusUnconfirmed Status = "unconfirmed"

	// StatusNotFound means the target was not among the open issues
	StatusNotFound Status = "not_found"

	// StatusNoOpenIssues means the portal lists nothing at all
	StatusNoOpenIssues Status = "no_open_issues"
)

// HTTPStatus maps an outcome status to the status code reported with it
func (s Status) HTTPStatus() int {
	switch s {
	case StatusApplied, StatusAlreadyApplied:
		return http.StatusOK
	case StatusRejected:
		return http.StatusUnprocessableEntity
	case StatusUnconfirmed:
		return http.StatusRequestTimeout
	case StatusNotFound, StatusNoOpenIssues:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Confirmed reports whether the portal holds an application for this issue
func (s Status) Confirmed() bool { return s == StatusApplied || s == StatusAlreadyApplied }

// ApplicationOutcome is the result of one apply call
type ApplicationOutcome struct {
	Success        bool     `json:"success" example:"true"`
	Status         Status   `json:"status" example:"applied"`
	Message        string   `json:"message" example:"Share has been applied successfully."`
	AlreadyApplied bool     `json:"already_applied,omitempty" example:"false"`
	Quantity       string   `json:"quantity,omitempty" example:"10"`
	Company        string   `json:"company,omitempty" example:"Sample Hydropower"`
	Discovered     []string `json:"discovered,omitempty"`
	StatusCode     int      `json:"status_code" example:"200"`
	RunID          string   `json:"run_id" example:"5b0c8c5e-8d0f-4a55-9d69-3c3a8f1f6c1e"`
	Trail          []string `json:"trail,omitempty"`
}

// LoginResult is the result of a login check
type LoginResult struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Login successful"`
	RunID   string `json:"run_id"`
}

// AllotmentResult distinguishes "not found" from "checked and not allotted" through Found
type AllotmentResult struct {
	Found            bool     `json:"found" example:"true"`
	IsAllotted       bool     `json:"is_allotted" example:"false"`
	AllottedQuantity string   `json:"allotted_quantity,omitempty" example:"10"`
	Status           string   `json:"status" example:"Not Alloted"`
	Company          string   `json:"company,omitempty" example:"Sample Hydropower"`
	Discovered       []string `json:"discovered,omitempty"`
	StatusCode       int      `json:"status_code" example:"200"`
	RunID            string   `json:"run_id"`
}

// PortfolioRow is one holding.
// BuyPrice is always zero: the portal does not expose cost basis
type PortfolioRow struct {
	Symbol       string
	Units        decimal.Decimal
	CurrentPrice decimal.Decimal
	BuyPrice     decimal.Decimal
}

// MarshalJSON writes quantities and prices as JSON numbers
func (r PortfolioRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Symbol       string      `json:"symbol"`
		Units        json.Number `json:"units"`
		CurrentPrice json.Number `json:"current_price"`
		BuyPrice     json.Number `json:"buy_price"`
	}{
		Symbol:       r.Symbol,
		Units:        json.Number(r.Units.String()),
		CurrentPrice: json.Number(r.CurrentPrice.String()),
		BuyPrice:     json.Number(r.BuyPrice.String()),
	})
}

// PortfolioResult is the scraped holdings list; empty is a valid result
type PortfolioResult struct {
	Holdings []PortfolioRow `json:"holdings"`
	Count    int            `json:"count" example:"3"`
	RunID    string         `json:"run_id"`
}

// LedgerKey identifies one account's application for one issue
type LedgerKey struct {
	DPID     string `json:"dp_id"`
	Username string `json:"username"`
	// Company is the normalized target name
	Company string `json:"company"`
}

// LedgerRecord is the last known apply outcome for a key
type LedgerRecord struct {
	Key        LedgerKey `json:"key"`
	Status     Status    `json:"status"`
	Quantity   string    `json:"quantity,omitempty"`
	Message    string    `json:"message,omitempty"`
	Matched    string    `json:"matched,omitempty"`
	RunID      string    `json:"run_id"`
	RecordedAt time.Time `json:"recorded_at"`
}
