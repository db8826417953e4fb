package engine

import (
	"testing"
	"time"

	customError "github.com/segyhp/pawn-engine/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculatePenalty(t *testing.T) {
	cfg := DefaultPenaltyConfig()

	tests := []struct {
		name           string
		principal      decimal.Decimal
		maturity       time.Time
		expectedAmount decimal.Decimal
		expectedDays   int
		expectedMethod PenaltyMethod
	}{
		{
			name:           "not yet mature",
			principal:      d("15000"),
			maturity:       asOf.AddDate(0, 0, 3),
			expectedAmount: decimal.Zero,
			expectedDays:   0,
			expectedMethod: PenaltyMethodNone,
		},
		{
			name:           "matured less than a full day ago",
			principal:      d("15000"),
			maturity:       asOf.Add(-23 * time.Hour),
			expectedAmount: decimal.Zero,
			expectedDays:   0,
			expectedMethod: PenaltyMethodNone,
		},
		{
			name:           "one day overdue",
			principal:      d("15000"),
			maturity:       asOf.AddDate(0, 0, -1),
			expectedAmount: d("10"),
			expectedDays:   1,
			expectedMethod: PenaltyMethodDaily,
		},
		{
			name:           "two days overdue",
			principal:      d("15000"),
			maturity:       asOf.AddDate(0, 0, -2),
			expectedAmount: d("20.00"),
			expectedDays:   2,
			expectedMethod: PenaltyMethodDaily,
		},
		{
			name:           "three days overdue stays daily",
			principal:      d("15000"),
			maturity:       asOf.AddDate(0, 0, -3),
			expectedAmount: d("30"),
			expectedDays:   3,
			expectedMethod: PenaltyMethodDaily,
		},
		{
			name:           "five days overdue is a full month",
			principal:      d("15000"),
			maturity:       asOf.AddDate(0, 0, -5),
			expectedAmount: d("300.00"),
			expectedDays:   5,
			expectedMethod: PenaltyMethodMonthly,
		},
		{
			name:           "ninety days overdue is still one month",
			principal:      d("15000"),
			maturity:       asOf.AddDate(0, 0, -90),
			expectedAmount: d("300"),
			expectedDays:   90,
			expectedMethod: PenaltyMethodMonthly,
		},
		{
			name:           "daily amount rounds half up at the end",
			principal:      d("1234.56"),
			maturity:       asOf.AddDate(0, 0, -2),
			expectedAmount: d("1.65"), // 1234.56 * 0.02 * 2 / 30 = 1.646080
			expectedDays:   2,
			expectedMethod: PenaltyMethodDaily,
		},
		{
			name:           "zero principal",
			principal:      decimal.Zero,
			maturity:       asOf.AddDate(0, 0, -10),
			expectedAmount: decimal.Zero,
			expectedDays:   10,
			expectedMethod: PenaltyMethodMonthly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalculatePenalty(tt.principal, tt.maturity, asOf, cfg)

			require.NoError(t, err)
			assert.True(t, tt.expectedAmount.Equal(result.PenaltyAmount),
				"Expected %v, but got %v", tt.expectedAmount, result.PenaltyAmount)
			assert.Equal(t, tt.expectedDays, result.DaysOverdue)
			assert.Equal(t, tt.expectedMethod, result.Method)
		})
	}
}

func TestCalculatePenalty_DailyMatchesFormula(t *testing.T) {
	cfg := DefaultPenaltyConfig()
	principals := []string{"1", "199.99", "500", "9000", "15000", "123456.78"}

	for _, p := range principals {
		for days := 1; days <= cfg.DailyThresholdDays; days++ {
			principal := d(p)
			result, err := CalculatePenalty(principal, asOf.AddDate(0, 0, -days), asOf, cfg)
			require.NoError(t, err)

			expected := principal.Mul(d("0.02")).Div(d("30")).Mul(decimal.NewFromInt(int64(days)))
			assert.True(t, result.PenaltyAmount.Sub(expected).Abs().LessThanOrEqual(d("0.005")),
				"principal %s days %d: got %s want ~%s", p, days, result.PenaltyAmount, expected)
		}
	}
}

func TestCalculatePenalty_MonthlyIndependentOfLateness(t *testing.T) {
	cfg := DefaultPenaltyConfig()
	principal := d("9000")

	for days := 4; days <= 400; days += 17 {
		result, err := CalculatePenalty(principal, asOf.AddDate(0, 0, -days), asOf, cfg)
		require.NoError(t, err)
		assert.True(t, result.PenaltyAmount.Equal(d("180")), "days %d: got %s", days, result.PenaltyAmount)
	}
}

func TestCalculatePenalty_Diagnostics(t *testing.T) {
	result, err := CalculatePenalty(d("15000"), asOf.AddDate(0, 0, -2), asOf, DefaultPenaltyConfig())
	require.NoError(t, err)

	assert.True(t, result.MonthlyPenaltyAmount.Equal(d("300")))
	assert.True(t, result.DailyPenaltyRate.Mul(d("30")).Sub(d("0.02")).Abs().LessThan(d("0.0000000001")))
	assert.Equal(t, "DAILY penalty 20.00 for 2 day(s) overdue", result.Describe())
}

func TestCalculatePenalty_GracePeriod(t *testing.T) {
	cfg := DefaultPenaltyConfig()
	cfg.GracePeriodDays = 2

	result, err := CalculatePenalty(d("15000"), asOf.AddDate(0, 0, -2), asOf, cfg)
	require.NoError(t, err)
	assert.Equal(t, PenaltyMethodNone, result.Method)
	assert.True(t, result.PenaltyAmount.IsZero())

	result, err = CalculatePenalty(d("15000"), asOf.AddDate(0, 0, -3), asOf, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, result.DaysOverdue)
	assert.True(t, result.PenaltyAmount.Equal(d("10")))
}

func TestCalculatePenalty_Errors(t *testing.T) {
	_, err := CalculatePenalty(d("-1"), asOf, asOf, DefaultPenaltyConfig())
	assert.True(t, customError.IsKind(err, customError.KindInvalidInput))

	bad := DefaultPenaltyConfig()
	bad.DaysInMonth = 0
	_, err = CalculatePenalty(d("100"), asOf, asOf, bad)
	assert.True(t, customError.IsKind(err, customError.KindConfiguration))

	bad = DefaultPenaltyConfig()
	bad.MonthlyRate = d("-0.01")
	_, err = CalculatePenalty(d("100"), asOf, asOf, bad)
	assert.True(t, customError.IsKind(err, customError.KindConfiguration))
}
