package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state")
	ErrScopeMismatch       = errors.New("scope mismatch")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrValidation          = errors.New("validation error")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrInternalFault       = errors.New("internal fault")
)

const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidState        = "INVALID_STATE"
	CodeScopeMismatch       = "SCOPE_MISMATCH"
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	CodeValidation          = "VALIDATION_ERROR"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeInternalFault       = "INTERNAL_FAULT"
)

// ErrorCode returns the stable wire code for err. Unclassified errors are
// reported as internal faults.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, ErrScopeMismatch):
		return CodeScopeMismatch
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrConcurrencyConflict):
		return CodeConcurrencyConflict
	default:
		return CodeInternalFault
	}
}

// IsBusinessError reports whether err is a business-rule failure that the
// caller should see in the response payload rather than as a server fault.
func IsBusinessError(err error) bool {
	switch ErrorCode(err) {
	case CodeInternalFault, CodeConcurrencyConflict:
		return false
	default:
		return err != nil
	}
}
