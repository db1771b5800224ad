package domain

import "context"

// ServicePort is the interface implemented by the MeroShare service
type ServicePort interface {
	TestLogin(ctx context.Context, in LoginInput) (LoginResult, error)
	Apply(ctx context.Context, in ApplyInput) (ApplicationOutcome, error)
	CheckAllotment(ctx context.Context, in AllotmentInput) (AllotmentResult, error)
	SyncPortfolio(ctx context.Context, in PortfolioInput) (PortfolioResult, error)
}

// LedgerPort stores the last apply outcome per account and issue
type LedgerPort interface {
	// LastApplied returns the latest record for key; ok is false when none exists
	LastApplied(ctx context.Context, key LedgerKey) (rec LedgerRecord, ok bool, err error)
	Record(ctx context.Context, rec LedgerRecord) error
}
