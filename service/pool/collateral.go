package pool

import (
	"context"

	"creditpool/core"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// DepositCollateral lock collateral backing ltv loans
func (s *poolService) DepositCollateral(ctx context.Context, identity string, amount decimal.Decimal) (*core.Receipt, error) {
	if err := s.checkCollateralOp(identity, amount); err != nil {
		return nil, err
	}

	return s.run(ctx, "deposit_collateral", identity, func(ctx context.Context, tx core.LedgerTx, r *core.Receipt) error {
		collateral, err := tx.FindCollateral(ctx, identity)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("ledgers.FindCollateral")
			return err
		}

		collateral.Identity = identity
		collateral.Amount = collateral.Amount.Add(amount)
		if err := tx.SaveCollateral(ctx, collateral); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("ledgers.SaveCollateral")
			return err
		}

		pool, err := s.loadPool(ctx, tx)
		if err != nil {
			return err
		}

		pool.TotalCollateral = pool.TotalCollateral.Add(amount)
		if err := s.savePool(ctx, tx, pool); err != nil {
			return err
		}

		r.Amount = amount

		extra := core.NewTransactionExtra().
			Put("collateral", collateral.Amount).
			Put("total_collateral", pool.TotalCollateral)
		return s.notify(ctx, tx, core.ActionTypeCollateralDeposit, r.TraceID, identity, amount, extra)
	})
}

// WithdrawCollateral release collateral, refused while a loan is active
func (s *poolService) WithdrawCollateral(ctx context.Context, identity string, amount decimal.Decimal) (*core.Receipt, error) {
	if err := s.checkCollateralOp(identity, amount); err != nil {
		return nil, err
	}

	return s.run(ctx, "withdraw_collateral", identity, func(ctx context.Context, tx core.LedgerTx, r *core.Receipt) error {
		log := logger.FromContext(ctx)

		loan, err := tx.FindLoan(ctx, identity)
		if err != nil {
			log.WithError(err).Errorln("ledgers.FindLoan")
			return err
		}

		if loan.Active {
			return core.ErrCollateralLocked
		}

		collateral, err := tx.FindCollateral(ctx, identity)
		if err != nil {
			log.WithError(err).Errorln("ledgers.FindCollateral")
			return err
		}

		if collateral.Amount.LessThan(amount) {
			return core.ErrInsufficientCollateral
		}

		collateral.Amount = collateral.Amount.Sub(amount)
		if err := tx.SaveCollateral(ctx, collateral); err != nil {
			log.WithError(err).Errorln("ledgers.SaveCollateral")
			return err
		}

		pool, err := s.loadPool(ctx, tx)
		if err != nil {
			return err
		}

		pool.TotalCollateral = pool.TotalCollateral.Sub(amount)
		if err := s.savePool(ctx, tx, pool); err != nil {
			return err
		}

		r.Amount = amount

		extra := core.NewTransactionExtra().
			Put("collateral", collateral.Amount).
			Put("total_collateral", pool.TotalCollateral)
		if err := s.notify(ctx, tx, core.ActionTypeCollateralWithdraw, r.TraceID, identity, amount, extra); err != nil {
			return err
		}

		return s.transfer(ctx, tx, core.ActionTypeCollateralWithdraw, r.TraceID, identity, amount)
	})
}

func (s *poolService) checkCollateralOp(identity string, amount decimal.Decimal) error {
	if s.limits.Policy() != core.LimitPolicyLTV {
		return core.ErrPolicyMismatch
	}

	if identity == "" {
		return core.ErrInvalidIdentity
	}

	if !validAmount(amount) {
		return core.ErrInvalidAmount
	}

	return nil
}
