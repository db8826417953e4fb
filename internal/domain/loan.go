package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/pawn-engine/pkg/engine"
	"github.com/shopspring/decimal"
)

// Loan represents a pawn ticket
type Loan struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	LoanID       string            `json:"loan_id" db:"loan_id"`
	PawnerName   string            `json:"pawner_name" db:"pawner_name"`
	Principal    decimal.Decimal   `json:"principal" db:"principal"`
	InterestRate decimal.Decimal   `json:"interest_rate" db:"interest_rate"`
	GrantedDate  time.Time         `json:"granted_date" db:"granted_date"`
	MaturityDate time.Time         `json:"maturity_date" db:"maturity_date"`
	ExpiryDate   time.Time         `json:"expiry_date" db:"expiry_date"`
	Status       engine.LoanStatus `json:"status" db:"status"`

	// Amounts settled against each bucket since the last renewal.
	ServiceChargePaid decimal.Decimal `json:"service_charge_paid" db:"service_charge_paid"`
	PenaltyPaid       decimal.Decimal `json:"penalty_paid" db:"penalty_paid"`
	InterestPaid      decimal.Decimal `json:"interest_paid" db:"interest_paid"`

	Items     []*LoanItem `json:"items" db:"-"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// LoanItem is a piece of collateral on a loan. Never changed after the loan is granted.
type LoanItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	LoanID         string          `json:"loan_id" db:"loan_id"`
	Position       int             `json:"position" db:"position"`
	Category       string          `json:"category" db:"category"`
	Description    string          `json:"description" db:"description"`
	InterestRate   decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	AppraisalValue decimal.Decimal `json:"appraisal_value" db:"appraisal_value"`
}

// EngineItems converts the loan's collateral for interest allocation.
func (l *Loan) EngineItems() []engine.Item {
	items := make([]engine.Item, 0, len(l.Items))
	for _, it := range l.Items {
		items = append(items, it.EngineItem())
	}
	return items
}

// TotalAppraisal sums the appraisal values of the loan's items.
func (l *Loan) TotalAppraisal() decimal.Decimal {
	return engine.TotalAppraisal(l.EngineItems())
}

// EffectiveStatus is the stored status with maturity and expiry applied.
func (l *Loan) EffectiveStatus(asOf time.Time) engine.LoanStatus {
	return engine.EffectiveStatus(l.Status, l.MaturityDate, l.ExpiryDate, asOf)
}

// ResetCredits clears the per-bucket payments, as after a renewal.
func (l *Loan) ResetCredits() {
	l.ServiceChargePaid = decimal.Zero
	l.PenaltyPaid = decimal.Zero
	l.InterestPaid = decimal.Zero
}

func (i *LoanItem) EngineItem() engine.Item {
	return engine.Item{
		Category:       i.Category,
		InterestRate:   i.InterestRate,
		AppraisalValue: i.AppraisalValue,
	}
}

// DTOs for requests and responses

type LoanItemRequest struct {
	Category       string          `json:"category" validate:"required"`
	Description    string          `json:"description"`
	InterestRate   decimal.Decimal `json:"interest_rate" validate:"gte=0"`
	AppraisalValue decimal.Decimal `json:"appraisal_value" validate:"gte=0"`
}

type CreateLoanRequest struct {
	LoanID         string             `json:"loan_id" validate:"required"`
	PawnerName     string             `json:"pawner_name" validate:"required"`
	Principal      decimal.Decimal    `json:"principal" validate:"gt=0"`
	TotalAppraisal *decimal.Decimal   `json:"total_appraisal,omitempty"`
	GrantedDate    *time.Time         `json:"granted_date,omitempty"`
	Items          []*LoanItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateLoanResponse struct {
	Loan          *Loan                   `json:"loan"`
	Allocation    engine.AllocationResult `json:"allocation"`
	ServiceCharge decimal.Decimal         `json:"service_charge"`
	Transaction   *Transaction            `json:"transaction"`
}

type RedemptionQuote struct {
	LoanID           string                     `json:"loan_id"`
	AsOf             time.Time                  `json:"as_of"`
	Status           engine.LoanStatus          `json:"status"`
	Breakdown        engine.RedemptionBreakdown `json:"breakdown"`
	Credits          engine.Outstanding         `json:"credits"`
	Outstanding      engine.Outstanding         `json:"outstanding"`
	TotalOutstanding decimal.Decimal            `json:"total_outstanding"`
}
