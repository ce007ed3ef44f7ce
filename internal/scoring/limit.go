package scoring

import (
	"errors"

	"creditpool/pkg/number"

	"github.com/shopspring/decimal"
)

const (
	// TopTierScore scores strictly above this get the top limit
	TopTierScore = 800
	// MidTierScore scores strictly above this get the mid limit
	MidTierScore = 500
	// LowTierScore scores at or above this get the low limit
	LowTierScore = 200

	// VerifiedLTV ltv percent for attested identities
	VerifiedLTV = 80
	// UnverifiedLTV ltv percent for everyone else
	UnverifiedLTV = 50
)

// TierTable borrow limits per score tier, in base units
type TierTable struct {
	Top decimal.Decimal
	Mid decimal.Decimal
	Low decimal.Decimal
}

// DefaultTierTable 1 / 0.5 / 0.1 unit
func DefaultTierTable() TierTable {
	return TierTable{
		Top: number.Units("1"),
		Mid: number.Units("0.5"),
		Low: number.Units("0.1"),
	}
}

// Validate limits must be non negative and strictly descending
func (t TierTable) Validate() error {
	if t.Low.IsNegative() {
		return errors.New("tier limits must not be negative")
	}

	if !t.Top.GreaterThan(t.Mid) || !t.Mid.GreaterThan(t.Low) {
		return errors.New("tier limits must be strictly descending")
	}

	return nil
}

// Limit first match on descending score:
// > 800 top, 501-800 mid, 200-500 low, below 200 borrowing disabled
func (t TierTable) Limit(score int) decimal.Decimal {
	switch {
	case score > TopTierScore:
		return t.Top
	case score > MidTierScore:
		return t.Mid
	case score >= LowTierScore:
		return t.Low
	default:
		return decimal.Zero
	}
}

// LTVTable ltv percentages selected by attestation
type LTVTable struct {
	Verified   int64
	Unverified int64
}

// DefaultLTVTable 80% verified, 50% unverified
func DefaultLTVTable() LTVTable {
	return LTVTable{Verified: VerifiedLTV, Unverified: UnverifiedLTV}
}

// LTV ltv percent for the attestation flag
func (t LTVTable) LTV(verified bool) int64 {
	if verified {
		return t.Verified
	}

	return t.Unverified
}

// CollateralValue floor(amount * priceUSD / 1 unit), amount in base units
func CollateralValue(amount, priceUSD decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() || !priceUSD.IsPositive() {
		return decimal.Zero
	}

	return number.MulDiv(amount, priceUSD, number.Unit)
}

// MaxBorrow floor(collateralValueUSD * ltv / 100)
func MaxBorrow(collateralValueUSD decimal.Decimal, ltv int64) decimal.Decimal {
	if !collateralValueUSD.IsPositive() || ltv <= 0 {
		return decimal.Zero
	}

	return number.MulDiv(collateralValueUSD, decimal.NewFromInt(ltv), decimal.NewFromInt(100))
}
