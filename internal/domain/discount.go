package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AdvantageType string

const (
	AdvantageFree               AdvantageType = "free"
	AdvantageSpecialPrice       AdvantageType = "special_price"
	AdvantagePercentageDiscount AdvantageType = "percentage_discount"
)

// Advantage is the benefit a discount card grants. Only Free, SpecialPrice and
// PercentageDiscount implement it.
type Advantage interface {
	Type() AdvantageType
	// Value is the numeric payload, if the variant has one.
	Value() decimal.NullDecimal
	// Discount returns the amount taken off orderAmount, never more than it.
	Discount(orderAmount decimal.Decimal) decimal.Decimal
	advantage()
}

type Free struct{}

func (Free) Type() AdvantageType        { return AdvantageFree }
func (Free) Value() decimal.NullDecimal { return decimal.NullDecimal{} }
func (Free) advantage()                 {}

func (Free) Discount(orderAmount decimal.Decimal) decimal.Decimal {
	return orderAmount
}

// SpecialPrice overrides the order total with a fixed price.
type SpecialPrice struct {
	Price decimal.Decimal
}

func (SpecialPrice) Type() AdvantageType { return AdvantageSpecialPrice }
func (a SpecialPrice) Value() decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: a.Price, Valid: true}
}
func (SpecialPrice) advantage() {}

func (a SpecialPrice) Discount(orderAmount decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, orderAmount.Sub(a.Price))
}

type PercentageDiscount struct {
	Percent decimal.Decimal
}

func (PercentageDiscount) Type() AdvantageType { return AdvantagePercentageDiscount }
func (a PercentageDiscount) Value() decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: a.Percent, Valid: true}
}
func (PercentageDiscount) advantage() {}

func (a PercentageDiscount) Discount(orderAmount decimal.Decimal) decimal.Decimal {
	d := RoundMoney(orderAmount.Mul(a.Percent).Div(hundred))
	return decimal.Min(d, orderAmount)
}

// NewAdvantage builds an advantage from its stored or submitted form.
func NewAdvantage(t AdvantageType, value decimal.NullDecimal) (Advantage, error) {
	switch t {
	case AdvantageFree:
		return Free{}, nil
	case AdvantageSpecialPrice:
		if !value.Valid || value.Decimal.IsNegative() || value.Decimal.GreaterThan(MaxAmount) {
			return nil, fmt.Errorf("%w: special price must be between 0 and %s", ErrValidation, MaxAmount.StringFixed(MoneyPlaces))
		}
		if !hasMoneyScale(value.Decimal) {
			return nil, fmt.Errorf("%w: special price must have at most %d decimal places", ErrValidation, MoneyPlaces)
		}
		return SpecialPrice{Price: value.Decimal}, nil
	case AdvantagePercentageDiscount:
		if !value.Valid || !value.Decimal.IsPositive() || value.Decimal.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: discount percentage must be in (0, 100]", ErrValidation)
		}
		if !hasMoneyScale(value.Decimal) {
			return nil, fmt.Errorf("%w: discount percentage must have at most %d decimal places", ErrValidation, MoneyPlaces)
		}
		return PercentageDiscount{Percent: value.Decimal}, nil
	default:
		return nil, fmt.Errorf("%w: unknown advantage type %q", ErrValidation, t)
	}
}

// DiscountPercentage reports the effective percentage off orderAmount.
func DiscountPercentage(a Advantage, orderAmount decimal.Decimal) decimal.Decimal {
	switch v := a.(type) {
	case Free:
		return hundred
	case PercentageDiscount:
		return v.Percent
	default:
		if !orderAmount.IsPositive() {
			return decimal.Zero
		}
		return RoundMoney(a.Discount(orderAmount).Mul(hundred).Div(orderAmount))
	}
}

type DiscountCard struct {
	ID          uuid.UUID
	Code        string
	CoachID     string
	Description string
	MemberName  string
	Advantage   Advantage
	ExpiryDate  *time.Time
	UsageCount  int
	UsageLimit  *int
	IsActive    bool
	Version     int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CheckUsable applies scope and state rules. An empty coachID skips the scope
// check.
func (c *DiscountCard) CheckUsable(coachID string, now time.Time) error {
	if coachID != "" && coachID != c.CoachID {
		return fmt.Errorf("%w: discount card %s belongs to another coach", ErrScopeMismatch, c.Code)
	}
	if !c.IsActive {
		return fmt.Errorf("%w: discount card %s is inactive", ErrInvalidState, c.Code)
	}
	if c.ExpiryDate != nil && !now.Before(*c.ExpiryDate) {
		return fmt.Errorf("%w: discount card %s expired on %s", ErrInvalidState, c.Code, c.ExpiryDate.Format(time.DateOnly))
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return fmt.Errorf("%w: discount card %s reached its usage limit", ErrInvalidState, c.Code)
	}
	return nil
}

// Quote prices orderAmount with the card's advantage.
func (c *DiscountCard) Quote(orderAmount decimal.Decimal) DiscountQuote {
	discount := c.Advantage.Discount(orderAmount)
	return DiscountQuote{
		CardID:             c.ID,
		CardCode:           c.Code,
		CoachID:            c.CoachID,
		DiscountPercentage: DiscountPercentage(c.Advantage, orderAmount),
		OrderAmount:        orderAmount,
		DiscountAmount:     discount,
		FinalAmount:        decimal.Max(decimal.Zero, orderAmount.Sub(discount)),
		MemberName:         c.MemberName,
		ExpirationDate:     c.ExpiryDate,
		Description:        c.Description,
	}
}

type DiscountQuote struct {
	CardID             uuid.UUID
	CardCode           string
	CoachID            string
	DiscountPercentage decimal.Decimal
	OrderAmount        decimal.Decimal
	DiscountAmount     decimal.Decimal
	FinalAmount        decimal.Decimal
	MemberName         string
	ExpirationDate     *time.Time
	Description        string
}

type DiscountRedemption struct {
	ID             uuid.UUID
	DiscountCardID uuid.UUID
	CustomerID     string
	CustomerName   string
	OrderAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	IdempotencyKey string
	CreatedAt      time.Time
}

type DiscountRedeemResult struct {
	Quote      DiscountQuote
	Card       DiscountCard
	Redemption DiscountRedemption
	Replayed   bool
}

// ResolveAdvantage accepts either an explicit advantage type with its value or
// the legacy discountPercentage field, which maps to PercentageDiscount.
func ResolveAdvantage(advantageType string, value, legacyPercentage decimal.NullDecimal) (Advantage, error) {
	t := AdvantageType(strings.ToLower(strings.TrimSpace(advantageType)))
	if t == "" {
		if !legacyPercentage.Valid {
			return nil, fmt.Errorf("%w: advantage type or discount percentage is required", ErrValidation)
		}
		t, value = AdvantagePercentageDiscount, legacyPercentage
	}
	return NewAdvantage(t, value)
}
