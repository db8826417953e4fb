package engine

import (
	"time"

	customError "github.com/segyhp/pawn-engine/pkg/errors"
	"github.com/segyhp/pawn-engine/pkg/utils"
)

// LoanStatus is the stored or time-derived state of a loan.
type LoanStatus string

const (
	StatusActive    LoanStatus = "ACTIVE"
	StatusMatured   LoanStatus = "MATURED"
	StatusExpired   LoanStatus = "EXPIRED"
	StatusRedeemed  LoanStatus = "REDEEMED"
	StatusRenewed   LoanStatus = "RENEWED"
	StatusAuctioned LoanStatus = "AUCTIONED"
)

// TransactionType is a financial transaction on a loan.
type TransactionType string

const (
	TxNewLoan    TransactionType = "NEW_LOAN"
	TxPartial    TransactionType = "PARTIAL"
	TxAdditional TransactionType = "ADDITIONAL"
	TxRenew      TransactionType = "RENEW"
	TxRedeem     TransactionType = "REDEEM"
)

// IsTerminal reports whether the loan is closed for good.
func (s LoanStatus) IsTerminal() bool {
	return s == StatusRedeemed || s == StatusAuctioned
}

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TxNewLoan, TxPartial, TxAdditional, TxRenew, TxRedeem:
		return true
	}
	return false
}

var allowedFrom = map[TransactionType][]LoanStatus{
	TxRedeem:     {StatusActive, StatusRenewed, StatusMatured, StatusExpired},
	TxRenew:      {StatusActive, StatusRenewed, StatusMatured},
	TxPartial:    {StatusActive, StatusRenewed, StatusMatured},
	TxAdditional: {StatusActive, StatusRenewed},
}

// EffectiveStatus folds the passage of time into the stored status: a full
// day past expiry makes an open loan EXPIRED, a full day past maturity makes
// it MATURED. Terminal statuses never change.
func EffectiveStatus(stored LoanStatus, maturityDate, expiryDate, asOf time.Time) LoanStatus {
	if stored.IsTerminal() {
		return stored
	}
	if utils.DaysElapsed(expiryDate, asOf) >= 1 {
		return StatusExpired
	}
	if utils.DaysElapsed(maturityDate, asOf) >= 1 {
		return StatusMatured
	}
	return stored
}

// CheckTransaction decides whether a transaction may run against a loan in
// the given effective status. loanID is only used for the error message.
// NEW_LOAN expects an empty status, since the loan does not exist yet.
func CheckTransaction(loanID string, txType TransactionType, status LoanStatus) error {
	if !txType.Valid() {
		return customError.InvalidInput(customError.ErrCodeUnknownTransaction, "unknown transaction type "+string(txType))
	}
	if status.IsTerminal() {
		return customError.WrapTerminalLoan(loanID, string(status))
	}
	if txType == TxNewLoan {
		if status != "" {
			return customError.WrapLoanAlreadyExists(loanID)
		}
		return nil
	}

	for _, s := range allowedFrom[txType] {
		if s == status {
			return nil
		}
	}
	return customError.WrapInvalidTransition(string(txType), string(status))
}

// NextStatus is the stored status after txType succeeds.
func NextStatus(txType TransactionType, current LoanStatus) LoanStatus {
	switch txType {
	case TxNewLoan:
		return StatusActive
	case TxRedeem:
		return StatusRedeemed
	case TxRenew:
		return StatusRenewed
	default:
		return current
	}
}

// CalculatorSet lists the calculations a transaction type needs.
type CalculatorSet struct {
	Allocation    bool
	ServiceCharge bool
	Redemption    bool
	Waterfall     bool
}

// CalculatorsFor returns the calculations that apply to txType.
func CalculatorsFor(txType TransactionType) CalculatorSet {
	switch txType {
	case TxNewLoan:
		return CalculatorSet{Allocation: true, ServiceCharge: true}
	case TxAdditional:
		return CalculatorSet{Allocation: true, ServiceCharge: true}
	case TxPartial, TxRenew, TxRedeem:
		return CalculatorSet{ServiceCharge: true, Redemption: true, Waterfall: true}
	}
	return CalculatorSet{}
}
