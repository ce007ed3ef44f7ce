package interest

import (
	"errors"
	"time"

	"creditpool/pkg/number"

	"github.com/shopspring/decimal"
)

const (
	// BasisPoints 100%
	BasisPoints = 10000
	// SecondsPerYear 365 days
	SecondsPerYear int64 = 365 * 24 * 60 * 60
	// DefaultRateBps 5% per year
	DefaultRateBps int64 = 500
	// DefaultTreasuryFeeBps 20% of the interest
	DefaultTreasuryFeeBps int64 = 2000
)

// Model simple interest model
type Model struct {
	RateBps        int64
	TreasuryFeeBps int64
	SecondsPerYear int64
}

// DefaultModel 5% apr, 20% treasury fee, 365 day year
func DefaultModel() Model {
	return Model{
		RateBps:        DefaultRateBps,
		TreasuryFeeBps: DefaultTreasuryFeeBps,
		SecondsPerYear: SecondsPerYear,
	}
}

// Validate validate
func (m Model) Validate() error {
	if m.RateBps < 0 {
		return errors.New("rate must not be negative")
	}

	if m.TreasuryFeeBps < 0 || m.TreasuryFeeBps > BasisPoints {
		return errors.New("treasury fee must be within [0, 10000] bps")
	}

	if m.SecondsPerYear <= 0 {
		return errors.New("seconds per year must be positive")
	}

	return nil
}

// Interest accrued since start
func (m Model) Interest(principal decimal.Decimal, start, now time.Time) decimal.Decimal {
	return Calculate(principal, start, now, m.RateBps, m.SecondsPerYear)
}

// Split split interest with the model's treasury fee
func (m Model) Split(interest decimal.Decimal) (treasuryFee, lpInterest decimal.Decimal) {
	return Split(interest, m.TreasuryFeeBps)
}

// Calculate principal * rateBps * elapsedSeconds / (10000 * secondsPerYear), truncated.
// Sub-second elapsed time does not accrue.
func Calculate(principal decimal.Decimal, start, now time.Time, rateBps, secondsPerYear int64) decimal.Decimal {
	if !principal.IsPositive() || rateBps <= 0 || secondsPerYear <= 0 {
		return decimal.Zero
	}

	elapsed := int64(now.Sub(start) / time.Second)
	if elapsed <= 0 {
		return decimal.Zero
	}

	numerator := principal.
		Mul(decimal.NewFromInt(rateBps)).
		Mul(decimal.NewFromInt(elapsed))
	denominator := decimal.NewFromInt(BasisPoints).Mul(decimal.NewFromInt(secondsPerYear))
	return number.Quo(numerator, denominator)
}

// Split treasuryFee = floor(interest * feeBps / 10000), the remainder goes to liquidity providers
func Split(interest decimal.Decimal, feeBps int64) (treasuryFee, lpInterest decimal.Decimal) {
	if !interest.IsPositive() {
		return decimal.Zero, decimal.Zero
	}

	treasuryFee = number.MulDiv(interest, decimal.NewFromInt(feeBps), decimal.NewFromInt(BasisPoints))
	lpInterest = interest.Sub(treasuryFee)
	return
}
