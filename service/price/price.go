package price

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Static injected usd price per whole collateral unit
type Static struct {
	usd decimal.Decimal
}

// NewStatic new static price feed
func NewStatic(usd decimal.Decimal) *Static {
	return &Static{usd: usd}
}

// Price price
func (s *Static) Price(ctx context.Context) (decimal.Decimal, error) {
	if !s.usd.IsPositive() {
		return decimal.Zero, errors.New("price not configured")
	}

	return s.usd, nil
}
