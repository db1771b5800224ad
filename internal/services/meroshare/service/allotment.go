package service

import (
	"context"
	"net/http"

	"mywallet/internal/adapters/meroshare"
	"mywallet/internal/services/meroshare/domain"
)

// CheckAllotment finds in.Company on the application report and reads its allotment
func (s *Svc) CheckAllotment(ctx context.Context, in domain.AllotmentInput) (domain.AllotmentResult, error) {
	if err := validate(in); err != nil {
		return domain.AllotmentResult{}, err
	}

	var res domain.AllotmentResult
	runID, err := s.session(ctx, "allotment", in.Options, func(ctx context.Context, p *meroshare.Portal) error {
		if err := p.Login(ctx, in.DPID, in.Username, in.Password); err != nil {
			return err
		}
		if _, err := p.GotoSection(ctx, meroshare.SectionReport); err != nil {
			return err
		}
		l, err := p.ScanListing(ctx)
		if err != nil {
			return err
		}

		m := Discover(l, in.Company, meroshare.ActionReport)
		if m.Kind != MatchReport {
			res = domain.AllotmentResult{
				Status:     "Not Found",
				Discovered: m.Discovered,
				StatusCode: http.StatusNotFound,
			}
			return nil
		}
		if err := p.Act(ctx, m.Entry, meroshare.ActionReport); err != nil {
			return err
		}
		a, err := p.ReadAllotment(ctx)
		if err != nil {
			return err
		}
		res = domain.AllotmentResult{
			Found:            true,
			IsAllotted:       a.Allotted,
			AllottedQuantity: a.Quantity,
			Status:           a.Status,
			Company:          m.Entry.Name,
			StatusCode:       http.StatusOK,
		}
		return nil
	})
	if err != nil {
		return domain.AllotmentResult{}, err
	}

	res.RunID = runID
	s.log.Info().
		Str("run_id", runID).
		Str("company", in.Company).
		Bool("found", res.Found).
		Bool("allotted", res.IsAllotted).
		Msg("allotment checked")
	return res, nil
}
