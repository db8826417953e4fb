package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/segyhp/pawn-engine/internal/domain"
	"github.com/segyhp/pawn-engine/pkg/engine"

	"github.com/jmoiron/sqlx"
)

const loanColumns = `id, loan_id, pawner_name, principal, interest_rate, granted_date, maturity_date, expiry_date,
	status, service_charge_paid, penalty_paid, interest_paid, created_at, updated_at`

const itemColumns = `id, loan_id, position, category, description, interest_rate, appraisal_value`

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan, txn *domain.Transaction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	loan.CreatedAt = now
	loan.UpdatedAt = now

	query := tx.Rebind(`
		INSERT INTO loans (` + loanColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = tx.ExecContext(ctx, query,
		loan.ID,
		loan.LoanID,
		loan.PawnerName,
		loan.Principal,
		loan.InterestRate,
		loan.GrantedDate,
		loan.MaturityDate,
		loan.ExpiryDate,
		loan.Status,
		loan.ServiceChargePaid,
		loan.PenaltyPaid,
		loan.InterestPaid,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		return err
	}

	itemQuery := tx.Rebind(`INSERT INTO loan_items (` + itemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for _, item := range loan.Items {
		_, err = tx.ExecContext(ctx, itemQuery,
			item.ID,
			item.LoanID,
			item.Position,
			item.Category,
			item.Description,
			item.InterestRate,
			item.AppraisalValue,
		)
		if err != nil {
			return err
		}
	}

	if txn != nil {
		if err := insertTransaction(ctx, tx, txn); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	return getLoan(ctx, r.db, loanID, false)
}

func (r *loanRepository) ListOpen(ctx context.Context) ([]*domain.Loan, error) {
	query := r.db.Rebind(`
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status NOT IN (?, ?)
		ORDER BY maturity_date
	`)

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, engine.StatusRedeemed, engine.StatusAuctioned); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, loanID string, from, to engine.LoanStatus) (bool, error) {
	query := r.db.Rebind(`UPDATE loans SET status = ?, updated_at = ? WHERE loan_id = ? AND status = ?`)

	res, err := r.db.ExecContext(ctx, query, to, time.Now(), loanID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *loanRepository) WithLoanLock(ctx context.Context, loanID string, fn func(ctx context.Context, tx LoanTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// sqlite has no row locks; its single writer already serializes the transaction
	loan, err := getLoan(ctx, tx, loanID, r.db.DriverName() == "postgres")
	if err != nil {
		return err
	}

	if err := fn(ctx, &loanTx{tx: tx, loan: loan}); err != nil {
		return err
	}

	return tx.Commit()
}

func getLoan(ctx context.Context, q queryer, loanID string, forUpdate bool) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var loan domain.Loan
	if err := q.GetContext(ctx, &loan, q.Rebind(query), loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	itemQuery := q.Rebind(`SELECT ` + itemColumns + ` FROM loan_items WHERE loan_id = ? ORDER BY position`)
	if err := q.SelectContext(ctx, &loan.Items, itemQuery, loanID); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	return &loan, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type loanTx struct {
	tx   *sqlx.Tx
	loan *domain.Loan
}

func (t *loanTx) Loan() *domain.Loan {
	return t.loan
}

func (t *loanTx) UpdateLoan(ctx context.Context, loan *domain.Loan) error {
	loan.UpdatedAt = time.Now()

	query := t.tx.Rebind(`
		UPDATE loans
		SET principal = ?, interest_rate = ?, granted_date = ?, maturity_date = ?, expiry_date = ?, status = ?,
			service_charge_paid = ?, penalty_paid = ?, interest_paid = ?, updated_at = ?
		WHERE loan_id = ?
	`)

	res, err := t.tx.ExecContext(ctx, query,
		loan.Principal,
		loan.InterestRate,
		loan.GrantedDate,
		loan.MaturityDate,
		loan.ExpiryDate,
		loan.Status,
		loan.ServiceChargePaid,
		loan.PenaltyPaid,
		loan.InterestPaid,
		loan.UpdatedAt,
		loan.LoanID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (t *loanTx) RecordTransaction(ctx context.Context, txn *domain.Transaction) error {
	return insertTransaction(ctx, t.tx, txn)
}
