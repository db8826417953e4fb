package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/segyhp/pawn-engine/internal/domain"

	"github.com/jmoiron/sqlx"
)

const transactionColumns = `id, loan_id, type, amount, applied_service_charges, applied_penalty, applied_interest,
	applied_principal, overpayment, principal_after, status_after, transaction_date, created_at`

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) GetByLoanID(ctx context.Context, loanID string) ([]*domain.Transaction, error) {
	query := r.db.Rebind(`
		SELECT ` + transactionColumns + `
		FROM loan_transactions
		WHERE loan_id = ?
		ORDER BY created_at, transaction_date
	`)

	txns := []*domain.Transaction{}
	if err := r.db.SelectContext(ctx, &txns, query, loanID); err != nil {
		return nil, err
	}

	return txns, nil
}

func (r *transactionRepository) GetLatest(ctx context.Context, loanID string) (*domain.Transaction, error) {
	query := r.db.Rebind(`
		SELECT ` + transactionColumns + `
		FROM loan_transactions
		WHERE loan_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`)

	var txn domain.Transaction
	if err := r.db.GetContext(ctx, &txn, query, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &txn, nil
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, txn *domain.Transaction) error {
	query := tx.Rebind(`
		INSERT INTO loan_transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := tx.ExecContext(ctx, query,
		txn.ID,
		txn.LoanID,
		txn.Type,
		txn.Amount,
		txn.AppliedServiceCharges,
		txn.AppliedPenalty,
		txn.AppliedInterest,
		txn.AppliedPrincipal,
		txn.Overpayment,
		txn.PrincipalAfter,
		txn.StatusAfter,
		txn.TransactionDate,
		txn.CreatedAt,
	)

	return err
}
