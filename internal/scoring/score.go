package scoring

import (
	"creditpool/pkg/number"

	"github.com/shopspring/decimal"
)

const (
	// MaxScore cap of the total score
	MaxScore = 1000
	// MaxDepositBoost cap of the deposit boost
	MaxDepositBoost = 400
	// MaxRepaymentBoost cap of the repayment boost
	MaxRepaymentBoost = 100
	// DepositBoostStep points per deposit quantum
	DepositBoostStep = 50
	// RepaymentBoostStep points per repayment quantum
	RepaymentBoostStep = 10
)

// GenesisPoints points of each genesis tier, highest tier first
var GenesisPoints = [3]int{500, 250, 100}

// Params score calculator parameters, amounts in base units
type Params struct {
	// GenesisTiers balance thresholds, highest first, matched with GenesisPoints
	GenesisTiers   [3]decimal.Decimal
	DepositQuantum decimal.Decimal
	RepayQuantum   decimal.Decimal
}

// DefaultParams 1 / 0.1 / 0.01 unit tiers, 0.1 unit deposit quantum, 0.01 unit repayment quantum
func DefaultParams() Params {
	return Params{
		GenesisTiers: [3]decimal.Decimal{
			number.Units("1"),
			number.Units("0.1"),
			number.Units("0.01"),
		},
		DepositQuantum: number.Units("0.1"),
		RepayQuantum:   number.Units("0.01"),
	}
}

// GenesisScore balance tier score, first match from the highest tier, inclusive
func (p Params) GenesisScore(balance decimal.Decimal) int {
	for idx, tier := range p.GenesisTiers {
		if balance.GreaterThanOrEqual(tier) {
			return GenesisPoints[idx]
		}
	}

	return 0
}

// DepositBoost min(400, floor(totalDeposited / quantum) * 50)
func (p Params) DepositBoost(totalDeposited decimal.Decimal) int {
	return boost(totalDeposited, p.DepositQuantum, DepositBoostStep, MaxDepositBoost)
}

// RepaymentBoost min(100, floor(totalRepaid / quantum) * 10)
func (p Params) RepaymentBoost(totalRepaid decimal.Decimal) int {
	return boost(totalRepaid, p.RepayQuantum, RepaymentBoostStep, MaxRepaymentBoost)
}

// TotalScore min(1000, genesis + depositBoost + repaymentBoost)
func TotalScore(genesis, depositBoost, repaymentBoost int) int {
	total := genesis + depositBoost + repaymentBoost
	if total > MaxScore {
		return MaxScore
	}

	if total < 0 {
		return 0
	}

	return total
}

// Breakdown recompute every score component from its inputs
func (p Params) Breakdown(genesis int, totalDeposited, totalRepaid decimal.Decimal) (deposit, repayment, total int) {
	deposit = p.DepositBoost(totalDeposited)
	repayment = p.RepaymentBoost(totalRepaid)
	total = TotalScore(genesis, deposit, repayment)
	return
}

func boost(total, quantum decimal.Decimal, step, max int) int {
	if !total.IsPositive() || !quantum.IsPositive() {
		return 0
	}

	// compare against the cap before converting so huge totals cannot overflow
	units := number.Quo(total, quantum)
	maxUnits := decimal.NewFromInt(int64(max / step))
	if units.GreaterThanOrEqual(maxUnits) {
		return max
	}

	return int(units.IntPart()) * step
}
