package engine

import (
	customError "github.com/segyhp/pawn-engine/pkg/errors"
	"github.com/segyhp/pawn-engine/pkg/utils"

	"github.com/shopspring/decimal"
)

// Outstanding is what is still owed, split by bucket.
type Outstanding struct {
	ServiceCharges decimal.Decimal `json:"service_charges"`
	Penalty        decimal.Decimal `json:"penalty"`
	Interest       decimal.Decimal `json:"interest"`
	Principal      decimal.Decimal `json:"principal"`
}

// Total sums all buckets.
func (o Outstanding) Total() decimal.Decimal {
	return o.ServiceCharges.Add(o.Penalty).Add(o.Interest).Add(o.Principal)
}

// Charges sums everything except principal.
func (o Outstanding) Charges() decimal.Decimal {
	return o.ServiceCharges.Add(o.Penalty).Add(o.Interest)
}

func (o Outstanding) validate() error {
	for _, b := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"outstanding service charges", o.ServiceCharges},
		{"outstanding penalty", o.Penalty},
		{"outstanding interest", o.Interest},
		{"outstanding principal", o.Principal},
	} {
		if b.value.IsNegative() {
			return customError.InvalidAmount(b.name, b.value)
		}
	}
	return nil
}

// PaymentApplication is how a payment was split across the buckets.
type PaymentApplication struct {
	AppliedServiceCharges decimal.Decimal `json:"applied_service_charges"`
	AppliedPenalty        decimal.Decimal `json:"applied_penalty"`
	AppliedInterest       decimal.Decimal `json:"applied_interest"`
	AppliedPrincipal      decimal.Decimal `json:"applied_principal"`
	TotalApplied          decimal.Decimal `json:"total_applied"`
	RemainingBalance      decimal.Decimal `json:"remaining_balance"`
	Overpayment           decimal.Decimal `json:"overpayment"`
	FullyPaid             bool            `json:"fully_paid"`
	Remaining             Outstanding     `json:"remaining"`
}

// ApplyPayment allocates amount to service charges, then penalty, then
// interest, then principal. No bucket takes more than it is owed; whatever
// is left over is reported as Overpayment.
func ApplyPayment(amount decimal.Decimal, outstanding Outstanding) (PaymentApplication, error) {
	if amount.IsNegative() {
		return PaymentApplication{}, customError.InvalidAmount("payment amount", amount)
	}
	if err := outstanding.validate(); err != nil {
		return PaymentApplication{}, err
	}

	left := amount
	take := func(owed decimal.Decimal) (applied, rest decimal.Decimal) {
		applied = utils.MinDecimal(left, owed)
		left = left.Sub(applied)
		return applied, owed.Sub(applied)
	}

	var app PaymentApplication
	app.AppliedServiceCharges, app.Remaining.ServiceCharges = take(outstanding.ServiceCharges)
	app.AppliedPenalty, app.Remaining.Penalty = take(outstanding.Penalty)
	app.AppliedInterest, app.Remaining.Interest = take(outstanding.Interest)
	app.AppliedPrincipal, app.Remaining.Principal = take(outstanding.Principal)

	app.TotalApplied = app.AppliedServiceCharges.Add(app.AppliedPenalty).Add(app.AppliedInterest).Add(app.AppliedPrincipal)
	app.RemainingBalance = utils.NonNegative(outstanding.Total().Sub(app.TotalApplied))
	app.Overpayment = amount.Sub(app.TotalApplied)
	app.FullyPaid = app.RemainingBalance.IsZero()

	return app, nil
}
