package engine

import (
	"fmt"

	customError "github.com/segyhp/pawn-engine/pkg/errors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Item is an appraised piece of collateral and the rate of its category.
type Item struct {
	Category       string          `json:"category"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	AppraisalValue decimal.Decimal `json:"appraisal_value"`
}

// ItemAllocation is one item's slice of the principal and the interest it carries.
type ItemAllocation struct {
	Category       string          `json:"category"`
	AppraisalValue decimal.Decimal `json:"appraisal_value"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	PrincipalShare decimal.Decimal `json:"principal_share"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
}

// AllocationResult is the per-item split plus the loan-level totals.
type AllocationResult struct {
	Items         []ItemAllocation `json:"items"`
	TotalInterest decimal.Decimal  `json:"total_interest"`
	BlendedRate   decimal.Decimal  `json:"blended_rate"`
	UsedDefault   bool             `json:"used_default_rate"`
}

// TotalAppraisal sums the appraisal values of items.
func TotalAppraisal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.AppraisalValue)
	}
	return total
}

// AllocateItemInterest spreads principal over items in proportion to their
// appraisal value and charges each share at its category rate. Item interest
// is floored to whole units and the loan interest is the sum of those floors.
//
// totalAppraisal is the total the caller appraised; it must equal the sum of
// the item values. With no items, or a zero total, defaultRate applies to
// the whole principal.
func AllocateItemInterest(principal decimal.Decimal, items []Item, totalAppraisal, defaultRate decimal.Decimal) (AllocationResult, error) {
	if principal.IsNegative() {
		return AllocationResult{}, customError.InvalidAmount("principal", principal)
	}
	if defaultRate.IsNegative() {
		return AllocationResult{}, customError.InvalidAmount("default rate", defaultRate)
	}
	for i, it := range items {
		if it.AppraisalValue.IsNegative() {
			return AllocationResult{}, customError.InvalidAmount(fmt.Sprintf("item %d appraisal value", i), it.AppraisalValue)
		}
		if it.InterestRate.IsNegative() {
			return AllocationResult{}, customError.InvalidAmount(fmt.Sprintf("item %d interest rate", i), it.InterestRate)
		}
	}

	sum := TotalAppraisal(items)
	if !sum.Equal(totalAppraisal) {
		return AllocationResult{}, customError.ConsistencyError(fmt.Sprintf(
			"appraisal total %s does not match the sum of item values %s",
			totalAppraisal.StringFixed(2), sum.StringFixed(2)))
	}

	if len(items) == 0 || sum.IsZero() {
		return AllocationResult{
			Items:         []ItemAllocation{},
			TotalInterest: principal.Mul(defaultRate).Div(hundred).Floor(),
			BlendedRate:   defaultRate,
			UsedDefault:   true,
		}, nil
	}

	result := AllocationResult{
		Items:         make([]ItemAllocation, 0, len(items)),
		TotalInterest: decimal.Zero,
		BlendedRate:   blendedRate(items, sum),
	}

	allocated := decimal.Zero
	for i, it := range items {
		share := principal.Mul(it.AppraisalValue).Div(sum)
		// one division only, so a whole-unit result is not truncated below itself
		interest := principal.Mul(it.AppraisalValue).Mul(it.InterestRate).Div(sum.Mul(hundred)).Floor()

		reported := share.Round(2)
		if i == len(items)-1 {
			// the last item absorbs the cent rounding so shares add up to principal
			reported = principal.Sub(allocated)
		}
		allocated = allocated.Add(reported)

		result.Items = append(result.Items, ItemAllocation{
			Category:       it.Category,
			AppraisalValue: it.AppraisalValue,
			InterestRate:   it.InterestRate,
			PrincipalShare: reported,
			InterestAmount: interest,
		})
		result.TotalInterest = result.TotalInterest.Add(interest)
	}

	return result, nil
}

// blendedRate is the value-weighted average rate to one decimal place, or
// the exact rate when every item belongs to the same category.
func blendedRate(items []Item, total decimal.Decimal) decimal.Decimal {
	single := true
	for _, it := range items[1:] {
		if it.Category != items[0].Category {
			single = false
			break
		}
	}
	if single {
		return items[0].InterestRate
	}

	weighted := decimal.Zero
	for _, it := range items {
		weighted = weighted.Add(it.InterestRate.Mul(it.AppraisalValue))
	}
	return weighted.Div(total).Round(1)
}
