package service

import (
	"context"

	"mywallet/internal/adapters/meroshare"
	"mywallet/internal/services/meroshare/domain"

	"github.com/shopspring/decimal"
)

// SyncPortfolio scrapes the holdings table. No holdings is an empty success
func (s *Svc) SyncPortfolio(ctx context.Context, in domain.PortfolioInput) (domain.PortfolioResult, error) {
	if err := validate(in); err != nil {
		return domain.PortfolioResult{}, err
	}

	rows := []domain.PortfolioRow{}
	runID, err := s.session(ctx, "portfolio", in.Options, func(ctx context.Context, p *meroshare.Portal) error {
		if err := p.Login(ctx, in.DPID, in.Username, in.Password); err != nil {
			return err
		}
		if _, err := p.GotoSection(ctx, meroshare.SectionPortfolio); err != nil {
			return err
		}
		hs, err := p.Holdings(ctx)
		if err != nil {
			return err
		}
		for _, h := range hs {
			rows = append(rows, domain.PortfolioRow{
				Symbol:       h.Symbol,
				Units:        h.Units,
				CurrentPrice: h.Price,
				BuyPrice:     decimal.Zero,
			})
		}
		return nil
	})
	if err != nil {
		return domain.PortfolioResult{}, err
	}

	s.log.Info().Str("run_id", runID).Int("holdings", len(rows)).Msg("portfolio synced")
	return domain.PortfolioResult{Holdings: rows, Count: len(rows), RunID: runID}, nil
}
