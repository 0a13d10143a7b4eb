package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MonetaryPlaces is the number of fractional digits a monetary amount may carry.
const MonetaryPlaces = 2

// MaxAmount is the exclusive upper bound of any amount, it matches NUMERIC(14,2).
var MaxAmount = decimal.New(1, 12)

var minimumUnit = decimal.New(1, -MonetaryPlaces)

// CheckAmount reports whether amount is a storable monetary value.
// allowZero admits zero for prices such as a starting price or increment.
func CheckAmount(amount decimal.Decimal, allowZero bool) error {
	switch {
	case amount.IsNegative():
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount)
	case amount.IsZero() && !allowZero:
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	case !amount.LessThan(MaxAmount):
		return fmt.Errorf("%w: %s exceeds the maximum", ErrInvalidAmount, amount)
	case !amount.Equal(amount.Round(MonetaryPlaces)):
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, amount, MonetaryPlaces)
	}
	return nil
}

// ParseAmount parses a decimal string and checks it is a positive monetary value.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", ErrInvalidInput, s)
	}
	if err := CheckAmount(d, false); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
