package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/segyhp/pawn-engine/pkg/engine"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Penalty   PenaltyConfig   `mapstructure:"penalty"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Enabled  bool          `mapstructure:"enabled"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type SchedulerConfig struct {
	Spec     string `mapstructure:"spec"`
	Timezone string `mapstructure:"timezone"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BusinessConfig struct {
	DefaultInterestRate string `mapstructure:"default_interest_rate"`
	LoanTermDays        int    `mapstructure:"loan_term_days"`
	ExpiryDays          int    `mapstructure:"expiry_days"`
}

// PenaltyConfig is the process-wide fallback used when the settings store
// has no penalty row.
type PenaltyConfig struct {
	MonthlyRate        string `mapstructure:"monthly_rate"`
	DailyThresholdDays int    `mapstructure:"daily_threshold_days"`
	DaysInMonth        int    `mapstructure:"days_in_month"`
	GracePeriodDays    int    `mapstructure:"grace_period_days"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

var defaults = map[string]any{
	"server.port":                    "8080",
	"server.host":                    "0.0.0.0",
	"server.env":                     "development",
	"server.read_timeout":            "15s",
	"server.write_timeout":           "15s",
	"database.driver":                "postgres",
	"database.url":                   "",
	"database.host":                  "localhost",
	"database.port":                  "5432",
	"database.name":                  "pawnshop",
	"database.user":                  "postgres",
	"database.password":              "",
	"database.sslmode":               "disable",
	"database.max_open_conns":        25,
	"database.max_idle_conns":        5,
	"database.conn_max_lifetime":     "5m",
	"redis.host":                     "localhost",
	"redis.port":                     "6379",
	"redis.password":                 "",
	"redis.db":                       0,
	"redis.enabled":                  true,
	"redis.cache_ttl":                "10m",
	"scheduler.spec":                 "0 5 0 * * *",
	"scheduler.timezone":             "Asia/Manila",
	"logging.level":                  "info",
	"logging.format":                 "json",
	"business.default_interest_rate": "3",
	"business.loan_term_days":        30,
	"business.expiry_days":           90,
	"penalty.monthly_rate":           "0.02",
	"penalty.daily_threshold_days":   3,
	"penalty.days_in_month":          30,
	"penalty.grace_period_days":      0,
	"health.timeout":                 "5s",
}

// Load reads configuration from environment variables and files.
// Environment keys are the upper-cased dotted keys with "_" separators,
// e.g. DATABASE_URL or PENALTY_MONTHLY_RATE.
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite3, got %q", c.Database.Driver)
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	if c.Business.LoanTermDays <= 0 {
		return fmt.Errorf("BUSINESS_LOAN_TERM_DAYS must be greater than 0")
	}

	if c.Business.ExpiryDays < 0 {
		return fmt.Errorf("BUSINESS_EXPIRY_DAYS must not be negative")
	}

	rate, err := decimal.NewFromString(c.Business.DefaultInterestRate)
	if err != nil {
		return fmt.Errorf("BUSINESS_DEFAULT_INTEREST_RATE must be a valid decimal: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("BUSINESS_DEFAULT_INTEREST_RATE must not be negative")
	}

	if _, err := decimal.NewFromString(c.Penalty.MonthlyRate); err != nil {
		return fmt.Errorf("PENALTY_MONTHLY_RATE must be a valid decimal: %w", err)
	}

	if err := c.GetPenaltyConfig().Validate(); err != nil {
		return fmt.Errorf("penalty settings: %w", err)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	return nil
}

// DSN returns the data source name for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite3" {
		return d.Name
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// Addr returns the redis host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetDefaultInterestRate returns the default interest rate, in percent per term.
func (c *Config) GetDefaultInterestRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.DefaultInterestRate)
	return rate
}

// GetPenaltyConfig converts the penalty section into the engine's form.
func (c *Config) GetPenaltyConfig() engine.PenaltyConfig {
	rate, _ := decimal.NewFromString(c.Penalty.MonthlyRate)
	return engine.PenaltyConfig{
		MonthlyRate:        rate,
		DailyThresholdDays: c.Penalty.DailyThresholdDays,
		DaysInMonth:        c.Penalty.DaysInMonth,
		GracePeriodDays:    c.Penalty.GracePeriodDays,
	}
}

// GetSchedulerLocation returns the scheduler time zone.
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
