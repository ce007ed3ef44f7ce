package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPoolID id of the single liquidity pool row
const DefaultPoolID = "main"

// Pool liquidity pool aggregate
type Pool struct {
	ID string `sql:"size:36;PRIMARY_KEY" json:"id"`
	// Balance asset balance held by the pool, treasury fees included
	Balance decimal.Decimal `sql:"type:decimal(65,0)" json:"balance"`
	// TotalShares sum of all share balances
	TotalShares decimal.Decimal `sql:"type:decimal(65,0)" json:"total_shares"`
	// TreasuryFees protocol retained interest, not withdrawable by LPs
	TreasuryFees decimal.Decimal `sql:"type:decimal(65,0)" json:"treasury_fees"`
	// TotalBorrowed outstanding principal across all active loans
	TotalBorrowed decimal.Decimal `sql:"type:decimal(65,0)" json:"total_borrowed"`
	// TotalCollateral collateral held for the ltv policy, never lent out
	TotalCollateral decimal.Decimal `sql:"type:decimal(65,0)" json:"total_collateral"`
	Version         int64           `sql:"default:0" json:"version"`
	CreatedAt       time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// AvailableLiquidity balance not earmarked for the treasury
func (p *Pool) AvailableLiquidity() decimal.Decimal {
	return p.Balance.Sub(p.TreasuryFees)
}

// Value assets owned by liquidity providers: idle liquidity plus outstanding principal
func (p *Pool) Value() decimal.Decimal {
	return p.AvailableLiquidity().Add(p.TotalBorrowed)
}

// Share liquidity provider share balance
type Share struct {
	Identity  string          `sql:"size:64;PRIMARY_KEY" json:"identity"`
	Shares    decimal.Decimal `sql:"type:decimal(65,0)" json:"shares"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Loan borrower loan, at most one active per identity
type Loan struct {
	Identity  string          `sql:"size:64;PRIMARY_KEY" json:"identity"`
	Principal decimal.Decimal `sql:"type:decimal(65,0)" json:"principal"`
	StartTime time.Time       `json:"start_time"`
	Active    bool            `json:"active"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Collateral collateral deposited under the ltv policy
type Collateral struct {
	Identity  string          `sql:"size:64;PRIMARY_KEY" json:"identity"`
	Amount    decimal.Decimal `sql:"type:decimal(65,0)" json:"amount"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// AmountDue principal plus accrued interest of a loan
type AmountDue struct {
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	Total       decimal.Decimal `json:"total"`
	TreasuryFee decimal.Decimal `json:"treasury_fee"`
	LPInterest  decimal.Decimal `json:"lp_interest"`
}

// Receipt result of a pool operation
type Receipt struct {
	TraceID  string          `json:"trace_id"`
	Amount   decimal.Decimal `json:"amount"`
	Shares   decimal.Decimal `json:"shares,omitempty"`
	Interest decimal.Decimal `json:"interest,omitempty"`
	Refund   decimal.Decimal `json:"refund,omitempty"`
}

// PoolService pool ledger interface
type PoolService interface {
	Deposit(ctx context.Context, identity string, amount decimal.Decimal) (*Receipt, error)
	Withdraw(ctx context.Context, identity string, shares decimal.Decimal) (*Receipt, error)
	Borrow(ctx context.Context, identity string, amount decimal.Decimal) (*Receipt, error)
	Repay(ctx context.Context, identity string, payment decimal.Decimal) (*Receipt, error)
	WithdrawFees(ctx context.Context, caller string) (*Receipt, error)
	DepositCollateral(ctx context.Context, identity string, amount decimal.Decimal) (*Receipt, error)
	WithdrawCollateral(ctx context.Context, identity string, amount decimal.Decimal) (*Receipt, error)

	GetPool(ctx context.Context) (*Pool, error)
	GetShares(ctx context.Context, identity string) (decimal.Decimal, error)
	GetShareValue(ctx context.Context, identity string) (decimal.Decimal, error)
	GetLoan(ctx context.Context, identity string) (*Loan, error)
	GetAmountDue(ctx context.Context, identity string) (*AmountDue, error)
	GetAvailableLiquidity(ctx context.Context) (decimal.Decimal, error)
	TreasuryFees(ctx context.Context) (decimal.Decimal, error)
	GetCollateral(ctx context.Context, identity string) (decimal.Decimal, error)
	GetBorrowLimit(ctx context.Context, identity string) (decimal.Decimal, error)

	SetCapability(capability *Capability)
}
