package credit

import (
	"context"

	"creditpool/core"

	"github.com/shopspring/decimal"
)

func (s *creditService) view(ctx context.Context, identity string) (*core.CreditProfile, error) {
	var profile *core.CreditProfile
	err := s.ledgers.View(ctx, func(tx core.LedgerTx) error {
		p, err := tx.FindProfile(ctx, identity)
		profile = p
		return err
	})

	return profile, err
}

func (s *creditService) GetProfile(ctx context.Context, identity string) (*core.CreditProfile, error) {
	return s.view(ctx, identity)
}

func (s *creditService) GetCreditScore(ctx context.Context, identity string) (int, error) {
	profile, err := s.view(ctx, identity)
	if err != nil {
		return 0, err
	}

	return profile.Score, nil
}

func (s *creditService) IsProfileInitialized(ctx context.Context, identity string) (bool, error) {
	profile, err := s.view(ctx, identity)
	if err != nil {
		return false, err
	}

	return profile.Initialized, nil
}

func (s *creditService) GetScoreBreakdown(ctx context.Context, identity string) (*core.ScoreBreakdown, error) {
	profile, err := s.view(ctx, identity)
	if err != nil {
		return nil, err
	}

	if !profile.Initialized {
		return &core.ScoreBreakdown{}, nil
	}

	return s.breakdown(profile), nil
}

// GetBorrowLimit score tier limit, zero for unknown identities
func (s *creditService) GetBorrowLimit(ctx context.Context, identity string) (decimal.Decimal, error) {
	profile, err := s.view(ctx, identity)
	if err != nil {
		return decimal.Zero, err
	}

	if !profile.Initialized {
		return decimal.Zero, nil
	}

	return s.config.Tiers.Limit(profile.Score), nil
}
