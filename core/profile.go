package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CreditProfile credit profile of an identity
type CreditProfile struct {
	Identity string `sql:"size:64;PRIMARY_KEY" json:"identity"`
	// Score capped sum of the genesis score and both boosts, [0, 1000]
	Score int `json:"score"`
	// GenesisScore balance tier observed at the last genesis calculation
	GenesisScore   int             `json:"genesis_score"`
	TotalBorrowed  decimal.Decimal `sql:"type:decimal(65,0)" json:"total_borrowed"`
	TotalRepaid    decimal.Decimal `sql:"type:decimal(65,0)" json:"total_repaid"`
	TotalDeposited decimal.Decimal `sql:"type:decimal(65,0)" json:"total_deposited"`
	Initialized    bool            `json:"initialized"`
	Version        int64           `sql:"default:0" json:"version"`
	CreatedAt      time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ScoreBreakdown the components of a credit score
type ScoreBreakdown struct {
	Genesis   int `json:"genesis"`
	Deposit   int `json:"deposit"`
	Repayment int `json:"repayment"`
	Total     int `json:"total"`
}

// Capability proves the holder was authorized by the credit ledger administrator
// to mutate score inputs. Only the most recently issued capability is accepted.
type Capability struct {
	PoolID string
	token  string
}

// NewCapability new capability
func NewCapability(poolID, token string) *Capability {
	return &Capability{PoolID: poolID, token: token}
}

// Token the secret token
func (c *Capability) Token() string {
	if c == nil {
		return ""
	}

	return c.token
}

// CreditService credit ledger interface
type CreditService interface {
	CalculateGenesisScore(ctx context.Context, identity string) (int, error)
	UpdateScoreAfterDeposit(ctx context.Context, tx LedgerTx, capability *Capability, identity string, amount decimal.Decimal) error
	UpdateScoreAfterRepayment(ctx context.Context, tx LedgerTx, capability *Capability, identity string, amount decimal.Decimal) error
	RecordBorrow(ctx context.Context, tx LedgerTx, capability *Capability, identity string, amount decimal.Decimal) error

	GetCreditScore(ctx context.Context, identity string) (int, error)
	GetScoreBreakdown(ctx context.Context, identity string) (*ScoreBreakdown, error)
	GetBorrowLimit(ctx context.Context, identity string) (decimal.Decimal, error)
	IsProfileInitialized(ctx context.Context, identity string) (bool, error)
	GetProfile(ctx context.Context, identity string) (*CreditProfile, error)

	AuthorizePool(ctx context.Context, caller, poolID string) (*Capability, error)
}
