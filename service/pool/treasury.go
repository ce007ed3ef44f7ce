package pool

import (
	"context"

	"creditpool/core"

	"github.com/shopspring/decimal"
)

// WithdrawFees transfer every accrued treasury fee to the admin caller
func (s *poolService) WithdrawFees(ctx context.Context, caller string) (*core.Receipt, error) {
	if caller == "" || !s.isAdmin(caller) {
		return nil, core.ErrUnauthorized
	}

	return s.run(ctx, "withdraw_fees", caller, func(ctx context.Context, tx core.LedgerTx, r *core.Receipt) error {
		pool, err := s.loadPool(ctx, tx)
		if err != nil {
			return err
		}

		fees := pool.TreasuryFees
		if !fees.IsPositive() {
			return core.ErrNoFees
		}

		pool.TreasuryFees = decimal.Zero
		pool.Balance = pool.Balance.Sub(fees)
		if err := s.savePool(ctx, tx, pool); err != nil {
			return err
		}

		r.Amount = fees

		extra := core.NewTransactionExtra().Put("pool_balance", pool.Balance)
		if err := s.notify(ctx, tx, core.ActionTypeFeeWithdrawal, r.TraceID, caller, fees, extra); err != nil {
			return err
		}

		return s.transfer(ctx, tx, core.ActionTypeFeeWithdrawal, r.TraceID, caller, fees)
	})
}
