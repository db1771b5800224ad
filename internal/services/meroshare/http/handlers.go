// Package http provides http transport for meroshare automation
package http

import (
	stdhttp "net/http"

	"mywallet/internal/modkit/httpkit"
	perr "mywallet/internal/platform/errors"
	"mywallet/internal/platform/logger"
	"mywallet/internal/services/meroshare/domain"
	"mywallet/internal/services/meroshare/guardrails"
	"mywallet/internal/services/meroshare/service"
)

// Register mounts the router
func Register(r httpkit.Router, s service.Service, inflight *guardrails.Inflight) {
	h := &handlers{svc: s, inflight: inflight}
	httpkit.PostJSON[domain.LoginInput](r, "/login/test", h.login)
	httpkit.PostJSON[domain.ApplyInput](r, "/apply", h.apply)
	httpkit.PostJSON[domain.AllotmentInput](r, "/allotment", h.allotment)
	httpkit.PostJSON[domain.PortfolioInput](r, "/portfolio", h.portfolio)
}

type handlers struct {
	svc      service.Service
	inflight *guardrails.Inflight
}

// swagger:route POST /meroshare/login/test MeroShare loginTest
// @Summary Check MeroShare credentials
// @Tags meroshare
// @Accept json
// @Produce json
// @Param payload body domain.LoginInput true "Account"
// @Success 200 {object} domain.LoginResult "ok"
// @Failure 401 {object} httpkit.Envelope "invalid credentials"
// @Failure 503 {object} httpkit.Envelope "automation unavailable"
// @Router /meroshare/login/test [post]
func (h *handlers) login(r *stdhttp.Request, in domain.LoginInput) (any, error) {
	return h.svc.TestLogin(r.Context(), in)
}

// swagger:route POST /meroshare/apply MeroShare apply
// @Summary Apply for an open IPO
// @Description Quantity 0 uses the minimum shown on the form. Outcomes carry their own status code
// @Tags meroshare
// @Accept json
// @Produce json
// @Param payload body domain.ApplyInput true "Apply"
// @Success 200 {object} domain.ApplicationOutcome "applied or already applied"
// @Failure 404 {object} domain.ApplicationOutcome "not listed"
// @Failure 408 {object} domain.ApplicationOutcome "submitted but unconfirmed"
// @Failure 409 {object} httpkit.Envelope "apply already running for this account and IPO"
// @Failure 422 {object} domain.ApplicationOutcome "rejected by the portal"
// @Router /meroshare/apply [post]
func (h *handlers) apply(r *stdhttp.Request, in domain.ApplyInput) (any, error) {
	key := service.LedgerKeyOf(in.Account, in.Company)
	release, ok := h.inflight.TryAcquire(key.DPID + "|" + key.Username + "|" + key.Company)
	if !ok {
		logger.C(r.Context()).Info().Str("company", key.Company).Int("inflight", h.inflight.Len()).Msg("apply already running")
		return nil, perr.Conflictf("an apply for %q is already running for this account", in.Company)
	}
	defer release()

	out, err := h.svc.Apply(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Response{Status: out.StatusCode, Body: out}, nil
}

// swagger:route POST /meroshare/allotment MeroShare allotment
// @Summary Check the allotment result of an IPO
// @Tags meroshare
// @Accept json
// @Produce json
// @Param payload body domain.AllotmentInput true "Allotment"
// @Success 200 {object} domain.AllotmentResult "found"
// @Failure 404 {object} domain.AllotmentResult "not on the application report"
// @Router /meroshare/allotment [post]
func (h *handlers) allotment(r *stdhttp.Request, in domain.AllotmentInput) (any, error) {
	out, err := h.svc.CheckAllotment(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Response{Status: out.StatusCode, Body: out}, nil
}

// swagger:route POST /meroshare/portfolio MeroShare portfolio
// @Summary Read current holdings
// @Tags meroshare
// @Accept json
// @Produce json
// @Param payload body domain.PortfolioInput true "Account"
// @Success 200 {object} domain.PortfolioResult "ok"
// @Router /meroshare/portfolio [post]
func (h *handlers) portfolio(r *stdhttp.Request, in domain.PortfolioInput) (any, error) {
	return h.svc.SyncPortfolio(r.Context(), in)
}
