package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/pawn-engine/pkg/engine"
	"github.com/shopspring/decimal"
)

// Transaction is the append-only record of a financial transaction on a loan.
type Transaction struct {
	ID                    uuid.UUID              `json:"id" db:"id"`
	LoanID                string                 `json:"loan_id" db:"loan_id"`
	Type                  engine.TransactionType `json:"type" db:"type"`
	Amount                decimal.Decimal        `json:"amount" db:"amount"`
	AppliedServiceCharges decimal.Decimal        `json:"applied_service_charges" db:"applied_service_charges"`
	AppliedPenalty        decimal.Decimal        `json:"applied_penalty" db:"applied_penalty"`
	AppliedInterest       decimal.Decimal        `json:"applied_interest" db:"applied_interest"`
	AppliedPrincipal      decimal.Decimal        `json:"applied_principal" db:"applied_principal"`
	Overpayment           decimal.Decimal        `json:"overpayment" db:"overpayment"`
	PrincipalAfter        decimal.Decimal        `json:"principal_after" db:"principal_after"`
	StatusAfter           engine.LoanStatus      `json:"status_after" db:"status_after"`
	TransactionDate       time.Time              `json:"transaction_date" db:"transaction_date"`
	CreatedAt             time.Time              `json:"created_at" db:"created_at"`
}

// NewTransaction starts a record with every applied bucket at zero.
func NewTransaction(loanID string, txType engine.TransactionType, amount decimal.Decimal, at time.Time) *Transaction {
	return &Transaction{
		ID:                    uuid.New(),
		LoanID:                loanID,
		Type:                  txType,
		Amount:                amount,
		AppliedServiceCharges: decimal.Zero,
		AppliedPenalty:        decimal.Zero,
		AppliedInterest:       decimal.Zero,
		AppliedPrincipal:      decimal.Zero,
		Overpayment:           decimal.Zero,
		TransactionDate:       at,
		CreatedAt:             time.Now(),
	}
}

// ApplyPayment copies a waterfall result onto the record.
func (t *Transaction) ApplyPayment(app engine.PaymentApplication) {
	t.AppliedServiceCharges = app.AppliedServiceCharges
	t.AppliedPenalty = app.AppliedPenalty
	t.AppliedInterest = app.AppliedInterest
	t.AppliedPrincipal = app.AppliedPrincipal
	t.Overpayment = app.Overpayment
}

type TransactionRequest struct {
	Type   engine.TransactionType `json:"type" validate:"required,oneof=PARTIAL ADDITIONAL RENEW REDEEM"`
	Amount decimal.Decimal        `json:"amount" validate:"gte=0"`
	Date   *time.Time             `json:"date,omitempty"`
}

type TransactionResponse struct {
	Transaction   *Transaction                `json:"transaction"`
	Loan          *Loan                       `json:"loan"`
	Breakdown     *engine.RedemptionBreakdown `json:"breakdown,omitempty"`
	Payment       *engine.PaymentApplication  `json:"payment,omitempty"`
	Allocation    *engine.AllocationResult    `json:"allocation,omitempty"`
	ServiceCharge *decimal.Decimal            `json:"service_charge,omitempty"`
}
