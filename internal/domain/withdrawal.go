package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

func ParseWithdrawalStatus(s string) (WithdrawalStatus, error) {
	switch st := WithdrawalStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case WithdrawalPending, WithdrawalApproved, WithdrawalRejected:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown withdrawal status %q", ErrValidation, s)
	}
}

// ParseResolution accepts only the terminal statuses.
func ParseResolution(s string) (WithdrawalStatus, error) {
	st, err := ParseWithdrawalStatus(s)
	if err != nil {
		return "", err
	}
	if st == WithdrawalPending {
		return "", fmt.Errorf("%w: a withdrawal can only be resolved to approved or rejected", ErrValidation)
	}
	return st, nil
}

func (s WithdrawalStatus) Terminal() bool {
	return s != WithdrawalPending
}

type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentTwint        PaymentMethod = "twint"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case PaymentBankTransfer, PaymentPayPal, PaymentTwint:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unsupported payment method %q", ErrValidation, s)
	}
}

type WithdrawalRequest struct {
	ID             uuid.UUID
	CoachID        string
	Amount         decimal.Decimal
	PaymentMethod  PaymentMethod
	PaymentDetails string
	Status         WithdrawalStatus
	RequestDate    time.Time
	ProcessedDate  *time.Time
	ProcessedBy    string
	Note           string
	IdempotencyKey string
}

// CheckResolve decides whether w may move to target. replay is true when w
// already sits in target and nothing should change.
func (w *WithdrawalRequest) CheckResolve(target WithdrawalStatus) (replay bool, err error) {
	switch {
	case w.Status == target:
		return true, nil
	case w.Status.Terminal():
		return false, fmt.Errorf("%w: withdrawal %s is already %s", ErrInvalidState, w.ID, w.Status)
	default:
		return false, nil
	}
}

type WithdrawalFilter struct {
	CoachID string
	Status  WithdrawalStatus
}

type WithdrawalResult struct {
	Request  WithdrawalRequest
	Earnings CoachEarnings
	Replayed bool
}
