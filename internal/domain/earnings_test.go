package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCommission(t *testing.T) {
	tests := []struct {
		name       string
		saleType   SaleType
		unit       string
		sessions   int
		rate       string
		gross      string
		commission string
	}{
		{name: "token", saleType: SaleToken, unit: "200", sessions: 0, rate: "15", gross: "200", commission: "30"},
		{name: "product ignores sessions", saleType: SaleProduct, unit: "50", sessions: 4, rate: "10", gross: "50", commission: "5"},
		{name: "course per session", saleType: SaleCourse, unit: "40", sessions: 5, rate: "15", gross: "200", commission: "30"},
		{name: "rounded to cents", saleType: SaleToken, unit: "9.99", sessions: 0, rate: "12.5", gross: "9.99", commission: "1.25"},
		{name: "zero rate", saleType: SaleCourse, unit: "10", sessions: 2, rate: "0", gross: "20", commission: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ComputeCommission(tt.saleType, dec(tt.unit), tt.sessions, dec(tt.rate))
			require.NoError(t, err)
			assert.True(t, c.Gross.Equal(dec(tt.gross)), "gross %s", c.Gross)
			assert.True(t, c.Commission.Equal(dec(tt.commission)), "commission %s", c.Commission)
			assert.True(t, c.Net.Equal(c.Gross.Sub(c.Commission)))
		})
	}
}

func TestComputeCommission_Invalid(t *testing.T) {
	_, err := ComputeCommission(SaleCourse, dec("10"), 0, dec("15"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ComputeCommission(SaleToken, dec("0"), 1, dec("15"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ComputeCommission(SaleToken, dec("10"), 1, dec("101"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ComputeCommission(SaleToken, dec("10"), 1, dec("15.125"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ComputeCommission(SaleCourse, dec("5000000000"), 3, dec("15"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateEarning(t *testing.T) {
	require.NoError(t, ValidateEarning(dec("200"), dec("30")))
	require.NoError(t, ValidateEarning(dec("200"), dec("0")))
	assert.ErrorIs(t, ValidateEarning(dec("200"), dec("201")), ErrValidation)
	assert.ErrorIs(t, ValidateEarning(dec("200"), dec("-1")), ErrValidation)
	assert.ErrorIs(t, ValidateEarning(dec("0"), dec("0")), ErrValidation)
}

func TestParseSaleType(t *testing.T) {
	st, err := ParseSaleType(" Course ")
	require.NoError(t, err)
	assert.Equal(t, SaleCourse, st)
	_, err = ParseSaleType("subscription")
	assert.ErrorIs(t, err, ErrValidation)
}
