package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits kept for amounts.
const MoneyPlaces = 2

var (
	hundred = decimal.NewFromInt(100)

	// MaxAmount is the largest value a NUMERIC(12,2) column holds.
	MaxAmount = decimal.RequireFromString("9999999999.99")
)

// RoundMoney rounds half away from zero to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

func hasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(RoundMoney(d))
}

// ValidateAmount requires a strictly positive amount with at most two
// fractional digits that fits the ledger columns.
func ValidateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", ErrValidation, field)
	}
	if !hasMoneyScale(amount) {
		return fmt.Errorf("%w: %s must have at most %d decimal places", ErrValidation, field, MoneyPlaces)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: %s must not exceed %s", ErrValidation, field, MaxAmount.StringFixed(MoneyPlaces))
	}
	return nil
}

// ValidateRate requires a percentage in [0, 100] with at most two decimals.
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return fmt.Errorf("%w: commission rate must be between 0 and 100", ErrValidation)
	}
	if !hasMoneyScale(rate) {
		return fmt.Errorf("%w: commission rate must have at most %d decimal places", ErrValidation, MoneyPlaces)
	}
	return nil
}
