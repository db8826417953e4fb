package engine

import (
	"time"

	customError "github.com/segyhp/pawn-engine/pkg/errors"
	"github.com/segyhp/pawn-engine/pkg/utils"

	"github.com/shopspring/decimal"
)

// termDays is the nominal length of one interest term.
var termDays = decimal.NewFromInt(30)

// RedemptionInput carries everything needed to price a full redemption.
type RedemptionInput struct {
	Principal      decimal.Decimal
	InterestRate   decimal.Decimal // percent per 30-day term
	GrantedDate    time.Time
	MaturityDate   time.Time
	AsOfDate       time.Time
	ServiceCharges decimal.Decimal
	Penalty        PenaltyConfig
}

// RedemptionBreakdown is the amount due to close a loan.
type RedemptionBreakdown struct {
	Principal      decimal.Decimal `json:"principal"`
	Interest       decimal.Decimal `json:"interest"`
	Penalty        decimal.Decimal `json:"penalty"`
	ServiceCharges decimal.Decimal `json:"service_charges"`
	TotalAmountDue decimal.Decimal `json:"total_amount_due"`
	LoanPeriodDays int             `json:"loan_period_days"`
	PenaltyDetails PenaltyResult   `json:"penalty_details"`
}

// CalculateRedemption prices a full redemption. Interest covers the loan's
// nominal term, pro-rated over 30 days, not the time actually elapsed.
func CalculateRedemption(in RedemptionInput) (RedemptionBreakdown, error) {
	if in.InterestRate.IsNegative() {
		return RedemptionBreakdown{}, customError.InvalidAmount("interest rate", in.InterestRate)
	}
	if in.ServiceCharges.IsNegative() {
		return RedemptionBreakdown{}, customError.InvalidAmount("service charges", in.ServiceCharges)
	}
	if in.MaturityDate.Before(in.GrantedDate) {
		return RedemptionBreakdown{}, customError.InvalidInput(customError.ErrCodeInvalidDate, "maturity date is before the granted date")
	}

	penalty, err := CalculatePenalty(in.Principal, in.MaturityDate, in.AsOfDate, in.Penalty)
	if err != nil {
		return RedemptionBreakdown{}, err
	}

	periodDays := utils.DaysSpanned(in.GrantedDate, in.MaturityDate)
	interest := in.Principal.
		Mul(in.InterestRate).
		Mul(decimal.NewFromInt(int64(periodDays))).
		Div(hundred.Mul(termDays))

	total := in.Principal.Add(interest).Add(penalty.PenaltyAmount).Add(in.ServiceCharges)

	return RedemptionBreakdown{
		Principal:      in.Principal,
		Interest:       interest.Round(2),
		Penalty:        penalty.PenaltyAmount,
		ServiceCharges: in.ServiceCharges,
		TotalAmountDue: total.Round(2),
		LoanPeriodDays: periodDays,
		PenaltyDetails: penalty,
	}, nil
}

// Outstanding returns the breakdown as waterfall buckets.
func (b RedemptionBreakdown) Outstanding() Outstanding {
	return Outstanding{
		ServiceCharges: b.ServiceCharges,
		Penalty:        b.Penalty,
		Interest:       b.Interest,
		Principal:      b.Principal,
	}
}
