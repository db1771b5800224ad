package service

import (
	"context"

	"mywallet/internal/adapters/meroshare"
	"mywallet/internal/core/normalize"
	"mywallet/internal/platform/logger"
	"mywallet/internal/services/meroshare/domain"
	"mywallet/internal/services/meroshare/guardrails"
)

// Apply applies for the IPO named in.Company, or reports why it did not
func (s *Svc) Apply(ctx context.Context, in domain.ApplyInput) (domain.ApplicationOutcome, error) {
	if err := validate(in); err != nil {
		return domain.ApplicationOutcome{}, err
	}
	key := LedgerKeyOf(in.Account, in.Company)

	if out, ok := s.gated(ctx, key); ok {
		return out, nil
	}

	var m *machine
	runID, err := s.session(ctx, "apply", in.Options, func(ctx context.Context, p *meroshare.Portal) error {
		m = newMachine(p, in, s.minQty)
		return m.run(ctx)
	})
	if err != nil {
		return domain.ApplicationOutcome{}, err
	}

	out := m.outcome()
	out.RunID = runID
	s.log.Info().
		Str("run_id", runID).
		Str("dp", in.DPID).
		Str("username", in.Username).
		Str("company", in.Company).
		Str("status", string(out.Status)).
		Str("quantity", out.Quantity).
		Msg("apply finished")

	s.record(ctx, key, out)
	return out, nil
}

// LedgerKeyOf builds the ledger key for an account and target name
func LedgerKeyOf(a domain.Account, company string) domain.LedgerKey {
	return domain.LedgerKey{DPID: a.DPID, Username: a.Username, Company: normalize.CompanyName(company)}
}

// gated consults the ledger before anything is launched. Only confirmed records younger than
// the gate window count. Ledger failures never block an apply
func (s *Svc) gated(ctx context.Context, key domain.LedgerKey) (domain.ApplicationOutcome, bool) {
	if !s.gate {
		return domain.ApplicationOutcome{}, false
	}
	lctx, cancel := guardrails.ForLedger(ctx, s.timeouts)
	defer cancel()

	rec, ok, err := s.ledger.LastApplied(lctx, key)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("company", key.Company).Msg("ledger read failed; asking the portal")
		return domain.ApplicationOutcome{}, false
	}
	if !ok || !rec.Status.Confirmed() {
		return domain.ApplicationOutcome{}, false
	}
	if age := s.now().Sub(rec.RecordedAt); age > s.window {
		logger.C(ctx).Debug().Str("company", key.Company).Dur("age", age).Msg("ledger record outside gate window")
		return domain.ApplicationOutcome{}, false
	}

	runID := s.newRunID()
	logger.C(ctx).Info().Str("run_id", runID).Str("company", key.Company).Str("prior_run", rec.RunID).Msg("apply gated by ledger")
	st := domain.StatusAlreadyApplied
	return domain.ApplicationOutcome{
		Success:        true,
		Status:         st,
		Message:        "Already applied on " + rec.RecordedAt.Format("2006-01-02 15:04"),
		AlreadyApplied: true,
		Quantity:       rec.Quantity,
		Company:        rec.Matched,
		StatusCode:     st.HTTPStatus(),
		RunID:          runID,
		Trail:          []string{"ledger"},
	}, true
}

// record stores outcomes that say something about the portal state; misses are not recorded
func (s *Svc) record(ctx context.Context, key domain.LedgerKey, out domain.ApplicationOutcome) {
	if s.ledger == nil {
		return
	}
	switch out.Status {
	case domain.StatusNotFound, domain.StatusNoOpenIssues:
		return
	}
	lctx, cancel := guardrails.ForLedger(ctx, s.timeouts)
	defer cancel()

	err := s.ledger.Record(lctx, domain.LedgerRecord{
		Key:        key,
		Status:     out.Status,
		Quantity:   out.Quantity,
		Message:    out.Message,
		Matched:    out.Company,
		RunID:      out.RunID,
		RecordedAt: s.now().UTC(),
	})
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("run_id", out.RunID).Msg("ledger write failed")
	}
}
