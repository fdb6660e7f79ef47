package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvantageDiscount(t *testing.T) {
	tests := []struct {
		name      string
		advantage Advantage
		order     string
		discount  string
		pct       string
	}{
		{name: "free", advantage: Free{}, order: "80", discount: "80", pct: "100"},
		{name: "percentage", advantage: PercentageDiscount{Percent: dec("20")}, order: "100", discount: "20", pct: "20"},
		{name: "percentage rounds to cents", advantage: PercentageDiscount{Percent: dec("15")}, order: "33.33", discount: "5", pct: "15"},
		{name: "special price", advantage: SpecialPrice{Price: dec("30")}, order: "120", discount: "90", pct: "75"},
		{name: "special price above order", advantage: SpecialPrice{Price: dec("150")}, order: "120", discount: "0", pct: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := dec(tt.order)
			got := tt.advantage.Discount(order)
			assert.True(t, got.Equal(dec(tt.discount)), "discount %s", got)
			assert.True(t, DiscountPercentage(tt.advantage, order).Equal(dec(tt.pct)))
		})
	}
}

func TestNewAdvantage(t *testing.T) {
	a, err := NewAdvantage(AdvantagePercentageDiscount, decimal.NewNullDecimal(dec("20")))
	require.NoError(t, err)
	assert.Equal(t, PercentageDiscount{Percent: dec("20")}, a)

	a, err = NewAdvantage(AdvantageFree, decimal.NullDecimal{})
	require.NoError(t, err)
	assert.False(t, a.Value().Valid)

	_, err = NewAdvantage(AdvantagePercentageDiscount, decimal.NewNullDecimal(dec("120")))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NewAdvantage(AdvantagePercentageDiscount, decimal.NewNullDecimal(dec("12.345")))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NewAdvantage(AdvantageSpecialPrice, decimal.NullDecimal{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NewAdvantage(AdvantageSpecialPrice, decimal.NewNullDecimal(dec("19.999")))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NewAdvantage(AdvantageSpecialPrice, decimal.NewNullDecimal(dec("10000000000")))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NewAdvantage("bogus", decimal.NullDecimal{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDiscountCardQuote(t *testing.T) {
	limit := 1
	card := DiscountCard{
		Code:       "DISC-1",
		CoachID:    "coach1",
		Advantage:  PercentageDiscount{Percent: dec("20")},
		UsageLimit: &limit,
		IsActive:   true,
		MemberName: "Ada",
	}
	require.NoError(t, card.CheckUsable("", time.Now()))
	q := card.Quote(dec("100"))
	assert.True(t, q.DiscountAmount.Equal(dec("20")))
	assert.True(t, q.FinalAmount.Equal(dec("80")))
	assert.Equal(t, "Ada", q.MemberName)
}

func TestDiscountCardCheckUsable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	limit := 2

	base := DiscountCard{Code: "DISC-1", CoachID: "coach1", Advantage: Free{}, IsActive: true, UsageLimit: &limit}

	c := base
	assert.ErrorIs(t, c.CheckUsable("coach2", now), ErrScopeMismatch)

	c = base
	c.IsActive = false
	assert.ErrorIs(t, c.CheckUsable("coach1", now), ErrInvalidState)

	c = base
	c.ExpiryDate = &past
	assert.ErrorIs(t, c.CheckUsable("", now), ErrInvalidState)

	c = base
	c.UsageCount = 2
	assert.ErrorIs(t, c.CheckUsable("", now), ErrInvalidState)

	c = base
	c.UsageLimit = nil
	c.UsageCount = 1000
	assert.NoError(t, c.CheckUsable("coach1", now))
}

func TestResolveAdvantage(t *testing.T) {
	a, err := ResolveAdvantage("", decimal.NullDecimal{}, decimal.NewNullDecimal(dec("20")))
	require.NoError(t, err)
	assert.Equal(t, AdvantagePercentageDiscount, a.Type())

	a, err = ResolveAdvantage("Special_Price", decimal.NewNullDecimal(dec("30")), decimal.NullDecimal{})
	require.NoError(t, err)
	assert.Equal(t, AdvantageSpecialPrice, a.Type())

	_, err = ResolveAdvantage("", decimal.NullDecimal{}, decimal.NullDecimal{})
	assert.ErrorIs(t, err, ErrValidation)
}
