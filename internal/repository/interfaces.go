package repository

import (
	"context"
	"errors"
	"time"

	"github.com/segyhp/pawn-engine/internal/domain"
	"github.com/segyhp/pawn-engine/pkg/engine"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// LoanTx is the unit of work for one loan's mutating transaction. The loan
// row stays locked until the surrounding WithLoanLock call returns.
type LoanTx interface {
	// Loan returns the locked loan with its items
	Loan() *domain.Loan

	// UpdateLoan persists the loan's mutable fields
	UpdateLoan(ctx context.Context, loan *domain.Loan) error

	// RecordTransaction appends a transaction record
	RecordTransaction(ctx context.Context, txn *domain.Transaction) error
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create stores a new loan, its items and the opening transaction atomically
	Create(ctx context.Context, loan *domain.Loan, txn *domain.Transaction) error

	// GetByLoanID retrieves a loan and its items by ticket number
	GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListOpen returns loans that are neither redeemed nor auctioned, without items
	ListOpen(ctx context.Context) ([]*domain.Loan, error)

	// UpdateStatus moves a loan from status from to status to. It reports
	// false, with no error, when the stored status is no longer from or the
	// loan does not exist.
	UpdateStatus(ctx context.Context, loanID string, from, to engine.LoanStatus) (bool, error)

	// WithLoanLock runs fn while holding an exclusive lock on the loan, so
	// mutating transactions on the same loan never interleave. fn's changes
	// commit when it returns nil and roll back otherwise.
	WithLoanLock(ctx context.Context, loanID string, fn func(ctx context.Context, tx LoanTx) error) error
}

// TransactionRepository defines read access to recorded transactions
type TransactionRepository interface {
	// GetByLoanID lists a loan's transactions oldest first
	GetByLoanID(ctx context.Context, loanID string) ([]*domain.Transaction, error)

	// GetLatest returns the most recent transaction on a loan
	GetLatest(ctx context.Context, loanID string) (*domain.Transaction, error)
}

// SettingsRepository provides the admin-maintained calculation settings
type SettingsRepository interface {
	// GetPenaltyConfig returns ErrNotFound when no penalty settings are stored
	GetPenaltyConfig(ctx context.Context) (engine.PenaltyConfig, error)

	// GetServiceChargeBrackets returns brackets ordered by min amount
	GetServiceChargeBrackets(ctx context.Context) ([]engine.ServiceChargeBracket, error)
}

// Cache is a string key/value store with expiry
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
