package engine

import (
	"fmt"

	customError "github.com/segyhp/pawn-engine/pkg/errors"

	"github.com/shopspring/decimal"
)

// ServiceChargeBracket maps a principal range to a flat charge. A nil
// MaxAmount leaves the range open-ended.
type ServiceChargeBracket struct {
	MinAmount    decimal.Decimal  `json:"min_amount" db:"min_amount"`
	MaxAmount    *decimal.Decimal `json:"max_amount,omitempty" db:"max_amount"`
	ChargeAmount decimal.Decimal  `json:"charge_amount" db:"charge_amount"`
}

// Contains reports whether principal falls inside the bracket, both ends inclusive.
func (b ServiceChargeBracket) Contains(principal decimal.Decimal) bool {
	if principal.LessThan(b.MinAmount) {
		return false
	}
	return b.MaxAmount == nil || principal.LessThanOrEqual(*b.MaxAmount)
}

// DefaultServiceChargeBrackets is the legacy table used when none are configured.
func DefaultServiceChargeBrackets() []ServiceChargeBracket {
	bracket := func(min, max string, charge int64) ServiceChargeBracket {
		b := ServiceChargeBracket{
			MinAmount:    decimal.RequireFromString(min),
			ChargeAmount: decimal.NewFromInt(charge),
		}
		if max != "" {
			m := decimal.RequireFromString(max)
			b.MaxAmount = &m
		}
		return b
	}

	return []ServiceChargeBracket{
		bracket("0", "199.99", 1),
		bracket("200", "299.99", 2),
		bracket("300", "399.99", 3),
		bracket("400", "499.99", 4),
		bracket("500", "", 5),
	}
}

// CalculateServiceCharge returns the charge of the single bracket containing
// principal. A zero principal carries no charge. An empty bracket list falls
// back to DefaultServiceChargeBrackets; a principal no bracket covers is a
// configuration error.
func CalculateServiceCharge(principal decimal.Decimal, brackets []ServiceChargeBracket) (decimal.Decimal, error) {
	if principal.IsNegative() {
		return decimal.Zero, customError.InvalidAmount("principal", principal)
	}
	if principal.IsZero() {
		return decimal.Zero, nil
	}
	if len(brackets) == 0 {
		brackets = DefaultServiceChargeBrackets()
	}

	for _, b := range brackets {
		if b.Contains(principal) {
			return b.ChargeAmount, nil
		}
	}

	return decimal.Zero, customError.ConfigurationError(
		customError.ErrCodeNoServiceBracket,
		fmt.Sprintf("no service charge bracket covers principal %s", principal.StringFixed(2)),
	)
}

// ValidateBrackets checks that brackets are sorted by MinAmount, do not
// overlap, carry non-negative amounts, and that only the last one is open-ended.
func ValidateBrackets(brackets []ServiceChargeBracket) error {
	for i, b := range brackets {
		if b.MinAmount.IsNegative() || b.ChargeAmount.IsNegative() {
			return customError.ConfigurationError(customError.ErrCodeConfiguration,
				fmt.Sprintf("bracket %d has a negative amount", i))
		}
		if b.MaxAmount != nil && b.MaxAmount.LessThan(b.MinAmount) {
			return customError.ConfigurationError(customError.ErrCodeConfiguration,
				fmt.Sprintf("bracket %d has max %s below min %s", i, b.MaxAmount, b.MinAmount))
		}
		if i == 0 {
			continue
		}

		prev := brackets[i-1]
		if prev.MaxAmount == nil {
			return customError.ConfigurationError(customError.ErrCodeConfiguration,
				fmt.Sprintf("bracket %d is unbounded but is not the last one", i-1))
		}
		if !b.MinAmount.GreaterThan(*prev.MaxAmount) {
			return customError.ConfigurationError(customError.ErrCodeConfiguration,
				fmt.Sprintf("bracket %d starting at %s overlaps bracket %d ending at %s", i, b.MinAmount, i-1, prev.MaxAmount))
		}
	}
	return nil
}
