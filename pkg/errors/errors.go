package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch on it without string matching.
type Kind string

const (
	KindInvalidInput  Kind = "INVALID_INPUT"
	KindConfiguration Kind = "CONFIGURATION_ERROR"
	KindConsistency   Kind = "CONSISTENCY_ERROR"
	KindTerminalLoan  Kind = "TERMINAL_LOAN"
	KindNotFound      Kind = "NOT_FOUND"
	KindConflict      Kind = "CONFLICT"
	KindInternal      Kind = "INTERNAL"
)

// Domain errors
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrConfiguration       = errors.New("configuration error")
	ErrConsistency         = errors.New("consistency error")
	ErrTerminalLoan        = errors.New("loan is closed")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrLoanAlreadyExists   = errors.New("loan already exists")
	ErrInvalidTransition   = errors.New("transaction not allowed for loan status")
	ErrInsufficientPayment = errors.New("payment does not cover the amount due")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(kind Kind, code, message string, err error) *BusinessError {
	return &BusinessError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of the first BusinessError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Error codes
const (
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeInvalidDate          = "INVALID_DATE"
	ErrCodeConfiguration        = "CONFIGURATION_ERROR"
	ErrCodeNoServiceBracket     = "NO_SERVICE_CHARGE_BRACKET"
	ErrCodeConsistency          = "CONSISTENCY_ERROR"
	ErrCodeTerminalLoan         = "TERMINAL_LOAN"
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeInsufficientPayment  = "INSUFFICIENT_PAYMENT"
	ErrCodeLoanNotFound         = "LOAN_NOT_FOUND"
	ErrCodeLoanAlreadyExists    = "LOAN_ALREADY_EXISTS"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
	ErrCodeExceedsAppraisal     = "EXCEEDS_APPRAISAL"
	ErrCodeUnknownTransaction   = "UNKNOWN_TRANSACTION_TYPE"
	ErrCodeInvalidPenaltyConfig = "INVALID_PENALTY_CONFIG"
	ErrCodeSettlesLoan          = "PAYMENT_SETTLES_LOAN"
)

// InvalidInput reports a rejected argument such as a negative amount.
func InvalidInput(code, message string) *BusinessError {
	return NewBusinessError(KindInvalidInput, code, message, ErrInvalidInput)
}

// InvalidAmount reports a negative or otherwise unusable monetary value.
func InvalidAmount(field string, value fmt.Stringer) *BusinessError {
	return InvalidInput(ErrCodeInvalidAmount, fmt.Sprintf("%s must not be negative, got %s", field, value))
}

func ConfigurationError(code, message string) *BusinessError {
	return NewBusinessError(KindConfiguration, code, message, ErrConfiguration)
}

func ConsistencyError(message string) *BusinessError {
	return NewBusinessError(KindConsistency, ErrCodeConsistency, message, ErrConsistency)
}

func WrapTerminalLoan(loanID, status string) *BusinessError {
	return NewBusinessError(
		KindTerminalLoan,
		ErrCodeTerminalLoan,
		fmt.Sprintf("Loan %s is %s and accepts no further transactions", loanID, status),
		ErrTerminalLoan,
	)
}

func WrapInvalidTransition(txType, status string) *BusinessError {
	return NewBusinessError(
		KindInvalidInput,
		ErrCodeInvalidTransition,
		fmt.Sprintf("%s is not allowed while the loan is %s", txType, status),
		ErrInvalidTransition,
	)
}

func WrapInsufficientPayment(required, actual string) *BusinessError {
	return NewBusinessError(
		KindInvalidInput,
		ErrCodeInsufficientPayment,
		fmt.Sprintf("Payment amount %s is less than the required %s", actual, required),
		ErrInsufficientPayment,
	)
}

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanAlreadyExists(loanID string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeLoanAlreadyExists,
		fmt.Sprintf("Loan with ID %s already exists", loanID),
		ErrLoanAlreadyExists,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
