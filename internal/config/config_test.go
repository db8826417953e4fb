package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SCHEDULER_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Business.LoanTermDays)
	assert.Equal(t, 90, cfg.Business.ExpiryDays)
	assert.True(t, cfg.GetDefaultInterestRate().Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "postgres://postgres:@localhost:5432/pawnshop?sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.True(t, cfg.IsDevelopment())

	penalty := cfg.GetPenaltyConfig()
	assert.True(t, penalty.MonthlyRate.Equal(decimal.RequireFromString("0.02")))
	assert.Equal(t, 3, penalty.DailyThresholdDays)
	assert.Equal(t, 30, penalty.DaysInMonth)
	assert.Equal(t, 0, penalty.GracePeriodDays)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SCHEDULER_TIMEZONE", "UTC")
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("DATABASE_DRIVER", "sqlite3")
	t.Setenv("DATABASE_URL", "file:pawn.db")
	t.Setenv("PENALTY_MONTHLY_RATE", "0.03")
	t.Setenv("PENALTY_GRACE_PERIOD_DAYS", "2")
	t.Setenv("BUSINESS_LOAN_TERM_DAYS", "60")
	t.Setenv("REDIS_CACHE_TTL", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "file:pawn.db", cfg.Database.DSN())
	assert.Equal(t, 60, cfg.Business.LoanTermDays)
	assert.Equal(t, "1m0s", cfg.Redis.CacheTTL.String())
	assert.True(t, cfg.GetPenaltyConfig().MonthlyRate.Equal(decimal.RequireFromString("0.03")))
	assert.Equal(t, 2, cfg.GetPenaltyConfig().GracePeriodDays)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown driver", key: "DATABASE_DRIVER", value: "mysql"},
		{name: "zero loan term", key: "BUSINESS_LOAN_TERM_DAYS", value: "0"},
		{name: "bad interest rate", key: "BUSINESS_DEFAULT_INTEREST_RATE", value: "three"},
		{name: "negative interest rate", key: "BUSINESS_DEFAULT_INTEREST_RATE", value: "-1"},
		{name: "bad penalty rate", key: "PENALTY_MONTHLY_RATE", value: "2%"},
		{name: "zero days in month", key: "PENALTY_DAYS_IN_MONTH", value: "0"},
		{name: "bad timezone", key: "SCHEDULER_TIMEZONE", value: "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SCHEDULER_TIMEZONE", "UTC")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDSN_Sqlite(t *testing.T) {
	d := DatabaseConfig{Driver: "sqlite3", Name: "pawn.db"}
	assert.Equal(t, "pawn.db", d.DSN())
}
