package pool

import (
	"context"

	"creditpool/core"
	"creditpool/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Deposit add liquidity and mint shares priced at the pool value before the deposit
func (s *poolService) Deposit(ctx context.Context, identity string, amount decimal.Decimal) (*core.Receipt, error) {
	if identity == "" {
		return nil, core.ErrInvalidIdentity
	}

	if !validAmount(amount) {
		return nil, core.ErrInvalidAmount
	}

	return s.run(ctx, "deposit", identity, func(ctx context.Context, tx core.LedgerTx, r *core.Receipt) error {
		pool, err := s.loadPool(ctx, tx)
		if err != nil {
			return err
		}

		var shares decimal.Decimal
		switch value := pool.Value(); {
		case pool.TotalShares.IsZero():
			shares = amount
		case !value.IsPositive():
			return core.ErrPoolEmpty
		default:
			shares = number.MulDiv(amount, pool.TotalShares, value)
		}

		if !shares.IsPositive() {
			return core.ErrDustDeposit
		}

		share, err := tx.FindShare(ctx, identity)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("ledgers.FindShare")
			return err
		}

		share.Identity = identity
		share.Shares = share.Shares.Add(shares)
		if err := tx.SaveShare(ctx, share); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("ledgers.SaveShare")
			return err
		}

		pool.TotalShares = pool.TotalShares.Add(shares)
		pool.Balance = pool.Balance.Add(amount)
		if err := s.savePool(ctx, tx, pool); err != nil {
			return err
		}

		if err := s.credits.UpdateScoreAfterDeposit(ctx, tx, s.currentCapability(), identity, amount); err != nil {
			return err
		}

		r.Amount = amount
		r.Shares = shares

		extra := core.NewTransactionExtra().
			Put("shares", shares).
			Put("share_balance", share.Shares).
			Put("total_shares", pool.TotalShares).
			Put("pool_balance", pool.Balance)
		return s.notify(ctx, tx, core.ActionTypeDeposit, r.TraceID, identity, amount, extra)
	})
}

// Withdraw burn shares and transfer their proportional value out
func (s *poolService) Withdraw(ctx context.Context, identity string, shares decimal.Decimal) (*core.Receipt, error) {
	if identity == "" {
		return nil, core.ErrInvalidIdentity
	}

	if !validAmount(shares) {
		return nil, core.ErrInvalidAmount
	}

	return s.run(ctx, "withdraw", identity, func(ctx context.Context, tx core.LedgerTx, r *core.Receipt) error {
		share, err := tx.FindShare(ctx, identity)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("ledgers.FindShare")
			return err
		}

		if share.Shares.LessThan(shares) {
			return core.ErrInsufficientShares
		}

		pool, err := s.loadPool(ctx, tx)
		if err != nil {
			return err
		}

		amount := number.MulDiv(shares, pool.Value(), pool.TotalShares)
		if !amount.IsPositive() {
			return core.ErrInvalidAmount
		}

		if amount.GreaterThan(pool.AvailableLiquidity()) {
			return core.ErrInsufficientLiquidity
		}

		share.Shares = share.Shares.Sub(shares)
		if err := tx.SaveShare(ctx, share); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("ledgers.SaveShare")
			return err
		}

		pool.TotalShares = pool.TotalShares.Sub(shares)
		pool.Balance = pool.Balance.Sub(amount)
		if err := s.savePool(ctx, tx, pool); err != nil {
			return err
		}

		r.Amount = amount
		r.Shares = shares

		extra := core.NewTransactionExtra().
			Put("shares", shares).
			Put("share_balance", share.Shares).
			Put("total_shares", pool.TotalShares).
			Put("pool_balance", pool.Balance)
		if err := s.notify(ctx, tx, core.ActionTypeWithdraw, r.TraceID, identity, amount, extra); err != nil {
			return err
		}

		return s.transfer(ctx, tx, core.ActionTypeWithdraw, r.TraceID, identity, amount)
	})
}
