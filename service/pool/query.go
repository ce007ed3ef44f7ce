package pool

import (
	"context"

	"creditpool/core"
	"creditpool/pkg/number"

	"github.com/shopspring/decimal"
)

func (s *poolService) view(ctx context.Context, fn func(tx core.LedgerTx) error) error {
	return s.ledgers.View(ctx, fn)
}

func (s *poolService) GetPool(ctx context.Context) (*core.Pool, error) {
	var pool *core.Pool
	err := s.view(ctx, func(tx core.LedgerTx) error {
		p, err := s.loadPool(ctx, tx)
		pool = p
		return err
	})

	return pool, err
}

func (s *poolService) GetShares(ctx context.Context, identity string) (decimal.Decimal, error) {
	var shares decimal.Decimal
	err := s.view(ctx, func(tx core.LedgerTx) error {
		share, err := tx.FindShare(ctx, identity)
		if err != nil {
			return err
		}

		shares = share.Shares
		return nil
	})

	return shares, err
}

// GetShareValue what the identity's shares would withdraw right now, ignoring liquidity
func (s *poolService) GetShareValue(ctx context.Context, identity string) (decimal.Decimal, error) {
	var value decimal.Decimal
	err := s.view(ctx, func(tx core.LedgerTx) error {
		share, err := tx.FindShare(ctx, identity)
		if err != nil {
			return err
		}

		pool, err := s.loadPool(ctx, tx)
		if err != nil {
			return err
		}

		value = number.MulDiv(share.Shares, pool.Value(), pool.TotalShares)
		return nil
	})

	return value, err
}

func (s *poolService) GetLoan(ctx context.Context, identity string) (*core.Loan, error) {
	var loan *core.Loan
	err := s.view(ctx, func(tx core.LedgerTx) error {
		l, err := tx.FindLoan(ctx, identity)
		loan = l
		return err
	})

	return loan, err
}

// GetAmountDue principal plus interest accrued until now, zero without an active loan
func (s *poolService) GetAmountDue(ctx context.Context, identity string) (*core.AmountDue, error) {
	loan, err := s.GetLoan(ctx, identity)
	if err != nil {
		return nil, err
	}

	return s.amountDue(loan, s.clock.Now()), nil
}

func (s *poolService) GetAvailableLiquidity(ctx context.Context) (decimal.Decimal, error) {
	pool, err := s.GetPool(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return pool.AvailableLiquidity(), nil
}

func (s *poolService) TreasuryFees(ctx context.Context) (decimal.Decimal, error) {
	pool, err := s.GetPool(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return pool.TreasuryFees, nil
}

func (s *poolService) GetCollateral(ctx context.Context, identity string) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := s.view(ctx, func(tx core.LedgerTx) error {
		collateral, err := tx.FindCollateral(ctx, identity)
		if err != nil {
			return err
		}

		amount = collateral.Amount
		return nil
	})

	return amount, err
}

// GetBorrowLimit limit resolved by the configured policy
func (s *poolService) GetBorrowLimit(ctx context.Context, identity string) (decimal.Decimal, error) {
	var limit decimal.Decimal
	err := s.view(ctx, func(tx core.LedgerTx) error {
		l, err := s.limits.Limit(ctx, tx, identity)
		limit = l
		return err
	})

	return limit, err
}
