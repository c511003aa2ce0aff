// Package money holds the exact decimal helpers used for prices and order
// totals. Values never pass through float64.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits stored for monetary amounts.
const Scale = 2

func init() {
	// Prices are rendered as JSON numbers, matching what the storefront
	// frontend reads.
	decimal.MarshalJSONWithoutQuotes = true
}

// New returns a whole-unit amount.
func New(units int64) decimal.Decimal {
	return decimal.NewFromInt(units)
}

// Parse parses a decimal string such as "100.00".
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// LineTotal returns price multiplied by quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Sum adds amounts; an empty call yields zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Round rounds half away from zero to Scale fractional digits.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}
