package number

import (
	"github.com/shopspring/decimal"
)

// Unit one whole native unit in base units (1e18)
var Unit = decimal.New(1, 18)

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

// Units whole (or fractional) native units expressed in base units, truncated
func Units(v string) decimal.Decimal {
	return Decimal(v).Shift(18).Truncate(0)
}

// Quo integer division truncated toward zero. Division by zero yields zero.
func Quo(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}

	q, _ := a.QuoRem(b, 0)
	return q
}

// MulDiv floor(a * b / c)
func MulDiv(a, b, c decimal.Decimal) decimal.Decimal {
	return Quo(a.Mul(b), c)
}

// IsInteger reports whether d has no fractional part
func IsInteger(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(0))
}
