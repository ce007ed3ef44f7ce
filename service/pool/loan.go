package pool

import (
	"context"
	"time"

	"creditpool/core"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Borrow open a loan of amount, bounded by the resolved limit and the available liquidity
func (s *poolService) Borrow(ctx context.Context, identity string, amount decimal.Decimal) (*core.Receipt, error) {
	if identity == "" {
		return nil, core.ErrInvalidIdentity
	}

	if !validAmount(amount) {
		return nil, core.ErrInvalidAmount
	}

	return s.run(ctx, "borrow", identity, func(ctx context.Context, tx core.LedgerTx, r *core.Receipt) error {
		log := logger.FromContext(ctx)

		loan, err := tx.FindLoan(ctx, identity)
		if err != nil {
			log.WithError(err).Errorln("ledgers.FindLoan")
			return err
		}

		if loan.Active {
			return core.ErrLoanActive
		}

		profile, err := tx.FindProfile(ctx, identity)
		if err != nil {
			log.WithError(err).Errorln("ledgers.FindProfile")
			return err
		}

		if !profile.Initialized {
			return core.ErrProfileNotInitialized
		}

		limit, err := s.limits.Limit(ctx, tx, identity)
		if err != nil {
			return err
		}

		if amount.GreaterThan(limit) {
			return core.ErrExceedsLimit
		}

		pool, err := s.loadPool(ctx, tx)
		if err != nil {
			return err
		}

		if amount.GreaterThan(pool.AvailableLiquidity()) {
			return core.ErrInsufficientLiquidity
		}

		loan.Identity = identity
		loan.Principal = amount
		loan.StartTime = s.clock.Now()
		loan.Active = true
		if err := tx.SaveLoan(ctx, loan); err != nil {
			log.WithError(err).Errorln("ledgers.SaveLoan")
			return err
		}

		pool.TotalBorrowed = pool.TotalBorrowed.Add(amount)
		pool.Balance = pool.Balance.Sub(amount)
		if err := s.savePool(ctx, tx, pool); err != nil {
			return err
		}

		if err := s.credits.RecordBorrow(ctx, tx, s.currentCapability(), identity, amount); err != nil {
			return err
		}

		r.Amount = amount

		extra := core.NewTransactionExtra().
			Put("limit", limit).
			Put("start_time", loan.StartTime).
			Put("total_borrowed", pool.TotalBorrowed).
			Put("pool_balance", pool.Balance)
		if err := s.notify(ctx, tx, core.ActionTypeBorrow, r.TraceID, identity, amount, extra); err != nil {
			return err
		}

		return s.transfer(ctx, tx, core.ActionTypeBorrow, r.TraceID, identity, amount)
	})
}

// Repay settle principal plus accrued interest in full, refunding any overpayment
func (s *poolService) Repay(ctx context.Context, identity string, payment decimal.Decimal) (*core.Receipt, error) {
	if identity == "" {
		return nil, core.ErrInvalidIdentity
	}

	if !validAmount(payment) {
		return nil, core.ErrInvalidAmount
	}

	return s.run(ctx, "repay", identity, func(ctx context.Context, tx core.LedgerTx, r *core.Receipt) error {
		log := logger.FromContext(ctx)

		loan, err := tx.FindLoan(ctx, identity)
		if err != nil {
			log.WithError(err).Errorln("ledgers.FindLoan")
			return err
		}

		if !loan.Active {
			return core.ErrNoActiveLoan
		}

		due := s.amountDue(loan, s.clock.Now())
		if payment.LessThan(due.Total) {
			return core.ErrInsufficientRepayment
		}

		refund := payment.Sub(due.Total)

		pool, err := s.loadPool(ctx, tx)
		if err != nil {
			return err
		}

		pool.Balance = pool.Balance.Add(due.Total)
		pool.TreasuryFees = pool.TreasuryFees.Add(due.TreasuryFee)
		pool.TotalBorrowed = pool.TotalBorrowed.Sub(due.Principal)
		if err := s.savePool(ctx, tx, pool); err != nil {
			return err
		}

		loan.Active = false
		loan.Principal = decimal.Zero
		if err := tx.SaveLoan(ctx, loan); err != nil {
			log.WithError(err).Errorln("ledgers.SaveLoan")
			return err
		}

		if err := s.credits.UpdateScoreAfterRepayment(ctx, tx, s.currentCapability(), identity, due.Principal); err != nil {
			return err
		}

		r.Amount = due.Total
		r.Interest = due.Interest
		r.Refund = refund

		extra := core.NewTransactionExtra().
			Put("principal", due.Principal).
			Put("interest", due.Interest).
			Put("treasury_fee", due.TreasuryFee).
			Put("lp_interest", due.LPInterest).
			Put("refund", refund).
			Put("total_borrowed", pool.TotalBorrowed).
			Put("treasury_fees", pool.TreasuryFees)
		if err := s.notify(ctx, tx, core.ActionTypeRepay, r.TraceID, identity, due.Total, extra); err != nil {
			return err
		}

		if !refund.IsPositive() {
			return nil
		}

		return s.transfer(ctx, tx, core.ActionTypeRepayRefund, r.TraceID, identity, refund)
	})
}

func (s *poolService) amountDue(loan *core.Loan, now time.Time) *core.AmountDue {
	if !loan.Active {
		return &core.AmountDue{}
	}

	accrued := s.config.Interest.Interest(loan.Principal, loan.StartTime, now)
	fee, lp := s.config.Interest.Split(accrued)
	return &core.AmountDue{
		Principal:   loan.Principal,
		Interest:    accrued,
		Total:       loan.Principal.Add(accrued),
		TreasuryFee: fee,
		LPInterest:  lp,
	}
}
