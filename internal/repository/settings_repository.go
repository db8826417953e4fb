package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/segyhp/pawn-engine/pkg/engine"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	penaltyCacheKey  = "settings:penalty"
	bracketsCacheKey = "settings:service_charge_brackets"
)

type penaltyRow struct {
	MonthlyRate        decimal.Decimal `db:"monthly_rate"`
	DailyThresholdDays int             `db:"daily_threshold_days"`
	DaysInMonth        int             `db:"days_in_month"`
	GracePeriodDays    int             `db:"grace_period_days"`
}

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetPenaltyConfig(ctx context.Context) (engine.PenaltyConfig, error) {
	query := `
		SELECT monthly_rate, daily_threshold_days, days_in_month, grace_period_days
		FROM penalty_settings
		ORDER BY id DESC
		LIMIT 1
	`

	var row penaltyRow
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return engine.PenaltyConfig{}, ErrNotFound
		}
		return engine.PenaltyConfig{}, err
	}

	cfg := engine.PenaltyConfig(row)
	if err := cfg.Validate(); err != nil {
		return engine.PenaltyConfig{}, err
	}
	return cfg, nil
}

func (r *settingsRepository) GetServiceChargeBrackets(ctx context.Context) ([]engine.ServiceChargeBracket, error) {
	query := `
		SELECT min_amount, max_amount, charge_amount
		FROM service_charge_brackets
		ORDER BY id
	`

	brackets := []engine.ServiceChargeBracket{}
	if err := r.db.SelectContext(ctx, &brackets, query); err != nil {
		return nil, err
	}

	// amounts are TEXT on sqlite, so order numerically here rather than in SQL
	sort.SliceStable(brackets, func(i, j int) bool {
		return brackets[i].MinAmount.LessThan(brackets[j].MinAmount)
	})

	if err := engine.ValidateBrackets(brackets); err != nil {
		return nil, err
	}
	return brackets, nil
}

// SavePenaltyConfig stores cfg as the current penalty settings.
func SavePenaltyConfig(ctx context.Context, db *sqlx.DB, cfg engine.PenaltyConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	query := db.Rebind(`
		INSERT INTO penalty_settings (id, monthly_rate, daily_threshold_days, days_in_month, grace_period_days)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			monthly_rate = excluded.monthly_rate,
			daily_threshold_days = excluded.daily_threshold_days,
			days_in_month = excluded.days_in_month,
			grace_period_days = excluded.grace_period_days
	`)

	_, err := db.ExecContext(ctx, query, cfg.MonthlyRate, cfg.DailyThresholdDays, cfg.DaysInMonth, cfg.GracePeriodDays)
	return err
}

// ReplaceServiceChargeBrackets swaps the whole bracket table in one transaction.
func ReplaceServiceChargeBrackets(ctx context.Context, db *sqlx.DB, brackets []engine.ServiceChargeBracket) error {
	if err := engine.ValidateBrackets(brackets); err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM service_charge_brackets`); err != nil {
		return err
	}

	query := tx.Rebind(`INSERT INTO service_charge_brackets (min_amount, max_amount, charge_amount) VALUES (?, ?, ?)`)
	for _, b := range brackets {
		var max interface{}
		if b.MaxAmount != nil {
			max = *b.MaxAmount
		}
		if _, err := tx.ExecContext(ctx, query, b.MinAmount, max, b.ChargeAmount); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// cachedSettings reads through a Cache in front of another SettingsRepository.
type cachedSettings struct {
	next  SettingsRepository
	cache Cache
	ttl   time.Duration
}

// NewCachedSettingsRepository caches settings for ttl. Cache failures fall
// through to next rather than failing the read.
func NewCachedSettingsRepository(next SettingsRepository, cache Cache, ttl time.Duration) SettingsRepository {
	return &cachedSettings{next: next, cache: cache, ttl: ttl}
}

func (c *cachedSettings) GetPenaltyConfig(ctx context.Context) (engine.PenaltyConfig, error) {
	var cfg engine.PenaltyConfig
	if c.load(ctx, penaltyCacheKey, &cfg) {
		return cfg, nil
	}

	cfg, err := c.next.GetPenaltyConfig(ctx)
	if err != nil {
		return cfg, err
	}
	c.store(ctx, penaltyCacheKey, cfg)
	return cfg, nil
}

func (c *cachedSettings) GetServiceChargeBrackets(ctx context.Context) ([]engine.ServiceChargeBracket, error) {
	var brackets []engine.ServiceChargeBracket
	if c.load(ctx, bracketsCacheKey, &brackets) {
		return brackets, nil
	}

	brackets, err := c.next.GetServiceChargeBrackets(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, bracketsCacheKey, brackets)
	return brackets, nil
}

func (c *cachedSettings) load(ctx context.Context, key string, dest interface{}) bool {
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (c *cachedSettings) store(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, key, string(raw), c.ttl)
}

// InvalidateSettings drops cached settings so the next read hits the store.
func InvalidateSettings(ctx context.Context, cache Cache) error {
	if err := cache.Del(ctx, penaltyCacheKey, bracketsCacheKey); err != nil {
		return fmt.Errorf("invalidate settings: %w", err)
	}
	return nil
}
