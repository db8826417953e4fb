// Package engine holds the pawn loan calculations: penalties, service
// charges, item interest, redemption totals and the payment waterfall.
// Every function here is pure and safe for concurrent use.
package engine

import (
	"fmt"
	"time"

	customError "github.com/segyhp/pawn-engine/pkg/errors"
	"github.com/segyhp/pawn-engine/pkg/utils"

	"github.com/shopspring/decimal"
)

// PenaltyMethod tells which rule produced a penalty.
type PenaltyMethod string

const (
	PenaltyMethodNone    PenaltyMethod = "NONE"
	PenaltyMethodDaily   PenaltyMethod = "DAILY"
	PenaltyMethodMonthly PenaltyMethod = "MONTHLY"
)

// PenaltyConfig holds the overdue penalty rules.
type PenaltyConfig struct {
	MonthlyRate        decimal.Decimal `json:"monthly_rate"`
	DailyThresholdDays int             `json:"daily_threshold_days"`
	DaysInMonth        int             `json:"days_in_month"`
	GracePeriodDays    int             `json:"grace_period_days"`
}

// DefaultPenaltyConfig returns 2% per month, daily pro-rating for the first
// three overdue days, a 30-day month and no grace period.
func DefaultPenaltyConfig() PenaltyConfig {
	return PenaltyConfig{
		MonthlyRate:        decimal.NewFromFloat(0.02),
		DailyThresholdDays: 3,
		DaysInMonth:        30,
		GracePeriodDays:    0,
	}
}

// Validate rejects configurations that cannot produce a penalty.
func (c PenaltyConfig) Validate() error {
	switch {
	case c.MonthlyRate.IsNegative():
		return customError.ConfigurationError(customError.ErrCodeInvalidPenaltyConfig, "penalty monthly rate must not be negative")
	case c.DaysInMonth <= 0:
		return customError.ConfigurationError(customError.ErrCodeInvalidPenaltyConfig, "penalty days in month must be greater than 0")
	case c.DailyThresholdDays < 0:
		return customError.ConfigurationError(customError.ErrCodeInvalidPenaltyConfig, "penalty daily threshold must not be negative")
	case c.GracePeriodDays < 0:
		return customError.ConfigurationError(customError.ErrCodeInvalidPenaltyConfig, "penalty grace period must not be negative")
	}
	return nil
}

// PenaltyResult is the penalty plus the figures that explain it.
type PenaltyResult struct {
	PenaltyAmount        decimal.Decimal `json:"penalty_amount"`
	DaysOverdue          int             `json:"days_overdue"`
	Method               PenaltyMethod   `json:"method"`
	MonthlyPenaltyAmount decimal.Decimal `json:"monthly_penalty_amount"`
	DailyPenaltyRate     decimal.Decimal `json:"daily_penalty_rate"`
}

// CalculatePenalty computes the overdue penalty on principal as of asOf.
//
// Overdue days are whole days past maturity, less the grace period. Up to
// DailyThresholdDays the penalty is pro-rated per day; beyond it a full
// month's penalty applies no matter how late. Only the final amount is
// rounded, half-up to cents.
func CalculatePenalty(principal decimal.Decimal, maturityDate, asOfDate time.Time, cfg PenaltyConfig) (PenaltyResult, error) {
	if principal.IsNegative() {
		return PenaltyResult{}, customError.InvalidAmount("principal", principal)
	}
	if err := cfg.Validate(); err != nil {
		return PenaltyResult{}, err
	}

	daysInMonth := decimal.NewFromInt(int64(cfg.DaysInMonth))
	monthly := principal.Mul(cfg.MonthlyRate)

	result := PenaltyResult{
		PenaltyAmount:        decimal.Zero,
		DaysOverdue:          overdueDays(maturityDate, asOfDate, cfg.GracePeriodDays),
		Method:               PenaltyMethodNone,
		MonthlyPenaltyAmount: monthly.Round(2),
		DailyPenaltyRate:     cfg.MonthlyRate.Div(daysInMonth),
	}

	switch {
	case result.DaysOverdue == 0:
		return result, nil
	case result.DaysOverdue <= cfg.DailyThresholdDays:
		result.Method = PenaltyMethodDaily
		// multiply before dividing so the 1/30 never gets truncated mid-way
		result.PenaltyAmount = monthly.Mul(decimal.NewFromInt(int64(result.DaysOverdue))).Div(daysInMonth).Round(2)
	default:
		result.Method = PenaltyMethodMonthly
		result.PenaltyAmount = monthly.Round(2)
	}

	return result, nil
}

func overdueDays(maturityDate, asOfDate time.Time, graceDays int) int {
	days := utils.DaysElapsed(maturityDate, asOfDate) - graceDays
	if days < 0 {
		return 0
	}
	return days
}

func (m PenaltyMethod) String() string {
	return string(m)
}

// Describe renders the penalty in a single line for logs and receipts.
func (r PenaltyResult) Describe() string {
	return fmt.Sprintf("%s penalty %s for %d day(s) overdue", r.Method, r.PenaltyAmount.StringFixed(2), r.DaysOverdue)
}
