package views

import (
	"creditpool/core"

	"github.com/shopspring/decimal"
)

// Pool pool view
type Pool struct {
	core.Pool
	Value              decimal.Decimal `json:"value"`
	AvailableLiquidity decimal.Decimal `json:"available_liquidity"`
}

// PoolFrom pool view with derived fields
func PoolFrom(pool *core.Pool) *Pool {
	return &Pool{
		Pool:               *pool,
		Value:              pool.Value(),
		AvailableLiquidity: pool.AvailableLiquidity(),
	}
}

// Profile credit profile view
type Profile struct {
	core.CreditProfile
	Breakdown   *core.ScoreBreakdown `json:"breakdown"`
	BorrowLimit decimal.Decimal      `json:"borrow_limit"`
}

// Share liquidity provider view
type Share struct {
	Identity string          `json:"identity"`
	Shares   decimal.Decimal `json:"shares"`
	Value    decimal.Decimal `json:"value"`
}

// Loan loan view
type Loan struct {
	core.Loan
	Due *core.AmountDue `json:"due"`
}

// Collateral collateral view
type Collateral struct {
	Identity string          `json:"identity"`
	Amount   decimal.Decimal `json:"amount"`
}

// Limit borrow limit view
type Limit struct {
	Identity string           `json:"identity"`
	Policy   core.LimitPolicy `json:"policy"`
	Limit    decimal.Decimal  `json:"limit"`
}
