package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IssuerType string

const (
	IssuerCoach  IssuerType = "COACH"
	IssuerSeller IssuerType = "SELLER"
)

func ParseIssuerType(s string) (IssuerType, error) {
	switch t := IssuerType(strings.ToUpper(strings.TrimSpace(s))); t {
	case IssuerCoach, IssuerSeller:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown issuer type %q", ErrValidation, s)
	}
}

type TransactionType string

const (
	TransactionCourse  TransactionType = "course"
	TransactionProduct TransactionType = "product"
	TransactionToken   TransactionType = "token"
)

func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case TransactionCourse, TransactionProduct, TransactionToken:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown transaction type %q", ErrValidation, s)
	}
}

// IssuerType returns the issuer kind whose cards may pay for t.
func (t TransactionType) IssuerType() IssuerType {
	if t == TransactionProduct {
		return IssuerSeller
	}
	return IssuerCoach
}

// NormalizeCode trims and upper-cases a card code.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IssuerTypeFromCode reads the issuer prefix of a normalized gift card code.
func IssuerTypeFromCode(code string) (IssuerType, error) {
	prefix, rest, ok := strings.Cut(code, "-")
	if !ok || rest == "" {
		return "", fmt.Errorf("%w: malformed gift card code %q", ErrValidation, code)
	}
	t, err := ParseIssuerType(prefix)
	if err != nil {
		return "", fmt.Errorf("%w: malformed gift card code %q", ErrValidation, code)
	}
	return t, nil
}

type RedemptionKind string

const (
	FullRedemption    RedemptionKind = "full_redemption"
	PartialRedemption RedemptionKind = "partial_redemption"
)

type GiftCard struct {
	ID              uuid.UUID
	Code            string
	IssuerID        string
	IssuerType      IssuerType
	BusinessName    string
	TotalAmount     decimal.Decimal
	RemainingAmount decimal.Decimal
	IsActive        bool
	IsUsed          bool
	ExpirationDate  *time.Time
	UsedBy          string
	UsedByName      string
	UsedAt          *time.Time
	Version         int32
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// GiftCardCheck carries the caller-side inputs of a quote or redemption.
type GiftCardCheck struct {
	Amount          decimal.Decimal
	TransactionType TransactionType
	BusinessID      string
	Now             time.Time
}

// CheckRedeemable applies state, scope and funds rules in that order.
func (g *GiftCard) CheckRedeemable(c GiftCardCheck) error {
	if !g.IsActive {
		return fmt.Errorf("%w: gift card %s is inactive", ErrInvalidState, g.Code)
	}
	if g.IsUsed || !g.RemainingAmount.IsPositive() {
		return fmt.Errorf("%w: gift card %s is fully used", ErrInvalidState, g.Code)
	}
	if g.ExpirationDate != nil && !c.Now.Before(*g.ExpirationDate) {
		return fmt.Errorf("%w: gift card %s expired on %s", ErrInvalidState, g.Code, g.ExpirationDate.Format(time.DateOnly))
	}

	prefix, err := IssuerTypeFromCode(g.Code)
	if err != nil {
		return err
	}
	if c.TransactionType.IssuerType() != prefix {
		return fmt.Errorf("%w: %s gift card cannot pay for a %s purchase", ErrScopeMismatch, prefix, c.TransactionType)
	}
	if g.IssuerType != prefix {
		return fmt.Errorf("%w: gift card %s was issued by a %s", ErrScopeMismatch, g.Code, g.IssuerType)
	}
	if c.BusinessID != "" && c.BusinessID != g.IssuerID {
		return fmt.Errorf("%w: gift card %s belongs to another business", ErrScopeMismatch, g.Code)
	}

	if c.Amount.GreaterThan(g.RemainingAmount) {
		return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientFunds, c.Amount.StringFixed(MoneyPlaces), g.RemainingAmount.StringFixed(MoneyPlaces))
	}
	return nil
}

// Debit returns the card after subtracting amount and the kind of redemption
// it represents. The amount must already have passed CheckRedeemable.
func (g GiftCard) Debit(amount decimal.Decimal, customerID, customerName string, now time.Time) (GiftCard, RedemptionKind) {
	g.RemainingAmount = g.RemainingAmount.Sub(amount)
	g.UpdatedAt = now
	if !g.RemainingAmount.IsZero() {
		return g, PartialRedemption
	}
	g.IsUsed = true
	g.UsedBy = customerID
	g.UsedByName = customerName
	g.UsedAt = &now
	return g, FullRedemption
}

type GiftCardTransaction struct {
	ID              uuid.UUID
	GiftCardID      uuid.UUID
	CustomerID      string
	CustomerName    string
	AmountUsed      decimal.Decimal
	BalanceAfter    decimal.Decimal
	Kind            RedemptionKind
	TransactionType TransactionType
	OrderID         string
	BookingID       string
	IdempotencyKey  string
	CreatedAt       time.Time
}

type GiftCardQuote struct {
	CardCode        string
	AmountAvailable decimal.Decimal
	AmountPayable   decimal.Decimal
	RemainingAfter  decimal.Decimal
}

type GiftCardRedemption struct {
	CardCode        string
	AmountToUse     decimal.Decimal
	AmountAvailable decimal.Decimal
	RemainingAmount decimal.Decimal
	Kind            RedemptionKind
	Transaction     GiftCardTransaction
	Replayed        bool
}

// RedemptionFromTransaction rebuilds the result of an earlier redemption.
func RedemptionFromTransaction(code string, tx GiftCardTransaction) GiftCardRedemption {
	return GiftCardRedemption{
		CardCode:        code,
		AmountToUse:     tx.AmountUsed,
		AmountAvailable: tx.BalanceAfter.Add(tx.AmountUsed),
		RemainingAmount: tx.BalanceAfter,
		Kind:            tx.Kind,
		Transaction:     tx,
		Replayed:        true,
	}
}

// RedemptionKey picks the idempotency key of a redemption: an explicit key
// wins, then the order id, then the booking id. Derived keys are suffixed with
// the card code so one order may be paid with several cards.
func RedemptionKey(explicit, orderID, bookingID, code string) string {
	switch {
	case strings.TrimSpace(explicit) != "":
		return strings.TrimSpace(explicit)
	case strings.TrimSpace(orderID) != "":
		return "order:" + strings.TrimSpace(orderID) + ":" + code
	case strings.TrimSpace(bookingID) != "":
		return "booking:" + strings.TrimSpace(bookingID) + ":" + code
	default:
		return ""
	}
}
