package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleType string

const (
	SaleCourse  SaleType = "course"
	SaleToken   SaleType = "token"
	SaleProduct SaleType = "product"
)

func ParseSaleType(s string) (SaleType, error) {
	switch t := SaleType(strings.ToLower(strings.TrimSpace(s))); t {
	case SaleCourse, SaleToken, SaleProduct:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown sale type %q", ErrValidation, s)
	}
}

const EarningCompleted = "completed"

type CoachEarnings struct {
	CoachID                 string
	TotalEarnings           decimal.Decimal
	TotalCommissionDeducted decimal.Decimal
	NetEarnings             decimal.Decimal
	AvailableBalance        decimal.Decimal
	TotalWithdrawn          decimal.Decimal
	CommissionRate          decimal.Decimal
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

type EarningTransaction struct {
	ID               uuid.UUID
	CoachID          string
	SaleType         SaleType
	SaleReference    string
	SessionCount     int
	GrossAmount      decimal.Decimal
	CommissionRate   decimal.Decimal
	CommissionAmount decimal.Decimal
	NetAmount        decimal.Decimal
	Status           string
	TransactionDate  time.Time
}

// Sale is one completed purchase to be booked to a coach ledger.
type Sale struct {
	CoachID       string
	SaleType      SaleType
	UnitPrice     decimal.Decimal
	SessionCount  int
	SaleReference string
}

type Commission struct {
	Gross      decimal.Decimal
	Commission decimal.Decimal
	Net        decimal.Decimal
}

// ComputeCommission splits a sale at rate percent. Course sales are billed
// per session; token and product sales are billed once.
func ComputeCommission(saleType SaleType, unitPrice decimal.Decimal, sessionCount int, rate decimal.Decimal) (Commission, error) {
	if err := ValidateAmount("unit price", unitPrice); err != nil {
		return Commission{}, err
	}
	if err := ValidateRate(rate); err != nil {
		return Commission{}, err
	}

	gross := unitPrice
	commission := unitPrice.Mul(rate).Div(hundred)
	if saleType == SaleCourse {
		if sessionCount < 1 {
			return Commission{}, fmt.Errorf("%w: session count must be at least 1", ErrValidation)
		}
		sessions := decimal.NewFromInt(int64(sessionCount))
		gross = unitPrice.Mul(sessions)
		commission = unitPrice.Mul(rate).Mul(sessions).Div(hundred)
	}

	gross = RoundMoney(gross)
	if gross.GreaterThan(MaxAmount) {
		return Commission{}, fmt.Errorf("%w: sale total must not exceed %s", ErrValidation, MaxAmount.StringFixed(MoneyPlaces))
	}
	commission = RoundMoney(commission)
	return Commission{
		Gross:      gross,
		Commission: commission,
		Net:        gross.Sub(commission),
	}, nil
}

// ValidateEarning checks the amounts passed to a direct ledger credit.
func ValidateEarning(gross, commission decimal.Decimal) error {
	if err := ValidateAmount("gross amount", gross); err != nil {
		return err
	}
	if commission.IsNegative() || commission.GreaterThan(gross) {
		return fmt.Errorf("%w: commission must be between 0 and the gross amount", ErrValidation)
	}
	if !commission.Equal(RoundMoney(commission)) {
		return fmt.Errorf("%w: commission must have at most %d decimal places", ErrValidation, MoneyPlaces)
	}
	return nil
}

type SaleResult struct {
	Earnings    CoachEarnings
	Transaction EarningTransaction
	Replayed    bool
}
