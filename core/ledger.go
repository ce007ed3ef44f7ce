package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTx a unit of work over the ledger state. Finders return a zero value
// record (empty Identity / ID) when nothing is stored yet.
type LedgerTx interface {
	FindProfile(ctx context.Context, identity string) (*CreditProfile, error)
	SaveProfile(ctx context.Context, profile *CreditProfile) error
	FindPool(ctx context.Context, id string) (*Pool, error)
	SavePool(ctx context.Context, pool *Pool) error
	FindShare(ctx context.Context, identity string) (*Share, error)
	SaveShare(ctx context.Context, share *Share) error
	FindLoan(ctx context.Context, identity string) (*Loan, error)
	SaveLoan(ctx context.Context, loan *Loan) error
	FindCollateral(ctx context.Context, identity string) (*Collateral, error)
	SaveCollateral(ctx context.Context, collateral *Collateral) error
	CreateTransaction(ctx context.Context, transaction *Transaction) error
	CreateTransfer(ctx context.Context, transfer *Transfer) error
}

// LedgerStore ledger persistence. Tx applies every mutation made through the
// LedgerTx or none of them: returning an error from fn discards the unit of work.
type LedgerStore interface {
	Tx(ctx context.Context, fn func(tx LedgerTx) error) error
	View(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LimitPolicy borrow limit policy
type LimitPolicy string

const (
	// LimitPolicyTiered credit score mapped onto a tier table
	LimitPolicyTiered LimitPolicy = "tiered"
	// LimitPolicyLTV collateral value times an attestation selected ltv
	LimitPolicyLTV LimitPolicy = "ltv"
)

// LimitResolver resolves the current borrow limit of an identity. A missing
// profile or missing collateral resolves to zero, not an error.
type LimitResolver interface {
	Policy() LimitPolicy
	Limit(ctx context.Context, tx LedgerTx, identity string) (decimal.Decimal, error)
}

// BalanceOracle current wallet balance of an identity, in base units
type BalanceOracle interface {
	BalanceOf(ctx context.Context, identity string) (decimal.Decimal, error)
}

// AttestationService external "is this identity verified" registry
type AttestationService interface {
	IsVerified(ctx context.Context, identity string) (bool, error)
}

// PriceFeed usd price per whole collateral unit
type PriceFeed interface {
	Price(ctx context.Context) (decimal.Decimal, error)
}

// Clock time source
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a func to Clock
type ClockFunc func() time.Time

// Now now
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock wall clock in UTC
var SystemClock Clock = ClockFunc(func() time.Time {
	return time.Now().UTC()
})
