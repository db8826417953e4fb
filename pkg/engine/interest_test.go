package engine

import (
	"testing"

	customError "github.com/segyhp/pawn-engine/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateItemInterest_TwoCategories(t *testing.T) {
	items := []Item{
		{Category: "jewelry", InterestRate: d("3"), AppraisalValue: d("10000")},
		{Category: "electronics", InterestRate: d("4"), AppraisalValue: d("5000")},
	}

	result, err := AllocateItemInterest(d("9000"), items, d("15000"), d("3"))
	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	assert.True(t, result.Items[0].PrincipalShare.Equal(d("6000")))
	assert.True(t, result.Items[0].InterestAmount.Equal(d("180")))
	assert.True(t, result.Items[1].PrincipalShare.Equal(d("3000")))
	assert.True(t, result.Items[1].InterestAmount.Equal(d("120")))
	assert.True(t, result.TotalInterest.Equal(d("300")))
	assert.True(t, result.BlendedRate.Equal(d("3.3")), "got %s", result.BlendedRate)
	assert.False(t, result.UsedDefault)
}

func TestAllocateItemInterest_FloorsPerItem(t *testing.T) {
	items := []Item{
		{Category: "jewelry", InterestRate: d("3"), AppraisalValue: d("1000")},
		{Category: "gadgets", InterestRate: d("4"), AppraisalValue: d("2000")},
	}

	// shares 333.33.. and 666.66..; interest exactly 10 and 26.66.. floored to 26
	result, err := AllocateItemInterest(d("1000"), items, d("3000"), d("3"))
	require.NoError(t, err)

	assert.True(t, result.Items[0].InterestAmount.Equal(d("10")))
	assert.True(t, result.Items[1].InterestAmount.Equal(d("26")))
	assert.True(t, result.TotalInterest.Equal(d("36")))
	assert.True(t, result.Items[0].PrincipalShare.Equal(d("333.33")))
	assert.True(t, result.Items[1].PrincipalShare.Equal(d("666.67")))
}

func TestAllocateItemInterest_SharesAddUpToPrincipal(t *testing.T) {
	items := []Item{
		{Category: "a", InterestRate: d("3"), AppraisalValue: d("1")},
		{Category: "b", InterestRate: d("3.5"), AppraisalValue: d("1")},
		{Category: "c", InterestRate: d("4"), AppraisalValue: d("1")},
		{Category: "d", InterestRate: d("4.5"), AppraisalValue: d("7")},
	}
	principal := d("1000.01")

	result, err := AllocateItemInterest(principal, items, TotalAppraisal(items), d("3"))
	require.NoError(t, err)

	sum := decimal.Zero
	for _, it := range result.Items {
		sum = sum.Add(it.PrincipalShare)
	}
	assert.True(t, sum.Sub(principal).Abs().LessThanOrEqual(d("0.01")), "sum %s", sum)
}

func TestAllocateItemInterest_SingleCategoryKeepsExactRate(t *testing.T) {
	items := []Item{
		{Category: "jewelry", InterestRate: d("3.25"), AppraisalValue: d("4000")},
		{Category: "jewelry", InterestRate: d("3.25"), AppraisalValue: d("6000")},
	}

	result, err := AllocateItemInterest(d("8000"), items, d("10000"), d("3"))
	require.NoError(t, err)
	assert.True(t, result.BlendedRate.Equal(d("3.25")), "got %s", result.BlendedRate)
	assert.True(t, result.TotalInterest.Equal(d("260")))
}

func TestAllocateItemInterest_DefaultRateFallback(t *testing.T) {
	result, err := AllocateItemInterest(d("5000"), nil, decimal.Zero, d("3.5"))
	require.NoError(t, err)
	assert.True(t, result.UsedDefault)
	assert.True(t, result.BlendedRate.Equal(d("3.5")))
	assert.True(t, result.TotalInterest.Equal(d("175")))
	assert.Empty(t, result.Items)

	zeroValued := []Item{{Category: "misc", InterestRate: d("4"), AppraisalValue: decimal.Zero}}
	result, err = AllocateItemInterest(d("1001"), zeroValued, decimal.Zero, d("3"))
	require.NoError(t, err)
	assert.True(t, result.UsedDefault)
	assert.True(t, result.TotalInterest.Equal(d("30")))
}

func TestAllocateItemInterest_Errors(t *testing.T) {
	items := []Item{
		{Category: "jewelry", InterestRate: d("3"), AppraisalValue: d("10000")},
		{Category: "electronics", InterestRate: d("4"), AppraisalValue: d("5000")},
	}

	_, err := AllocateItemInterest(d("9000"), items, d("14000"), d("3"))
	assert.True(t, customError.IsKind(err, customError.KindConsistency))

	_, err = AllocateItemInterest(d("-1"), items, d("15000"), d("3"))
	assert.True(t, customError.IsKind(err, customError.KindInvalidInput))

	negative := []Item{{Category: "x", InterestRate: d("3"), AppraisalValue: d("-10")}}
	_, err = AllocateItemInterest(d("100"), negative, d("-10"), d("3"))
	assert.True(t, customError.IsKind(err, customError.KindInvalidInput))
}
