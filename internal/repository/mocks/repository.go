package mocks

import (
	"context"
	"time"

	"github.com/segyhp/pawn-engine/internal/domain"
	"github.com/segyhp/pawn-engine/internal/repository"
	"github.com/segyhp/pawn-engine/pkg/engine"
	"github.com/stretchr/testify/mock"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan, txn *domain.Transaction) error {
	args := m.Called(ctx, loan, txn)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListOpen(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, loanID string, from, to engine.LoanStatus) (bool, error) {
	args := m.Called(ctx, loanID, from, to)
	return args.Bool(0), args.Error(1)
}

// WithLoanLock returns the configured error, or runs fn against the
// configured LoanTx and returns its result.
func (m *MockLoanRepository) WithLoanLock(ctx context.Context, loanID string, fn func(ctx context.Context, tx repository.LoanTx) error) error {
	args := m.Called(ctx, loanID)
	if err := args.Error(1); err != nil {
		return err
	}
	return fn(ctx, args.Get(0).(repository.LoanTx))
}

type MockLoanTx struct {
	mock.Mock
}

func (m *MockLoanTx) Loan() *domain.Loan {
	args := m.Called()
	return args.Get(0).(*domain.Loan)
}

func (m *MockLoanTx) UpdateLoan(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanTx) RecordTransaction(ctx context.Context, txn *domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) GetByLoanID(ctx context.Context, loanID string) ([]*domain.Transaction, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetLatest(ctx context.Context, loanID string) (*domain.Transaction, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetPenaltyConfig(ctx context.Context) (engine.PenaltyConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(engine.PenaltyConfig), args.Error(1)
}

func (m *MockSettingsRepository) GetServiceChargeBrackets(ctx context.Context) ([]engine.ServiceChargeBracket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]engine.ServiceChargeBracket), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

var (
	_ repository.LoanRepository        = (*MockLoanRepository)(nil)
	_ repository.LoanTx                = (*MockLoanTx)(nil)
	_ repository.TransactionRepository = (*MockTransactionRepository)(nil)
	_ repository.SettingsRepository    = (*MockSettingsRepository)(nil)
	_ repository.Cache                 = (*MockCache)(nil)
)
