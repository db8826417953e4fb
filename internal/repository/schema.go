package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS loans (
	id UUID PRIMARY KEY,
	loan_id VARCHAR(64) NOT NULL UNIQUE,
	pawner_name VARCHAR(255) NOT NULL,
	principal NUMERIC(18,2) NOT NULL,
	interest_rate NUMERIC(9,4) NOT NULL,
	granted_date TIMESTAMPTZ NOT NULL,
	maturity_date TIMESTAMPTZ NOT NULL,
	expiry_date TIMESTAMPTZ NOT NULL,
	status VARCHAR(16) NOT NULL,
	service_charge_paid NUMERIC(18,2) NOT NULL DEFAULT 0,
	penalty_paid NUMERIC(18,2) NOT NULL DEFAULT 0,
	interest_paid NUMERIC(18,2) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_loans_status ON loans(status);

CREATE TABLE IF NOT EXISTS loan_items (
	id UUID PRIMARY KEY,
	loan_id VARCHAR(64) NOT NULL REFERENCES loans(loan_id),
	position INTEGER NOT NULL,
	category VARCHAR(64) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	interest_rate NUMERIC(9,4) NOT NULL,
	appraisal_value NUMERIC(18,2) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_loan_items_loan_id ON loan_items(loan_id);

CREATE TABLE IF NOT EXISTS loan_transactions (
	id UUID PRIMARY KEY,
	loan_id VARCHAR(64) NOT NULL REFERENCES loans(loan_id),
	type VARCHAR(16) NOT NULL,
	amount NUMERIC(18,2) NOT NULL,
	applied_service_charges NUMERIC(18,2) NOT NULL,
	applied_penalty NUMERIC(18,2) NOT NULL,
	applied_interest NUMERIC(18,2) NOT NULL,
	applied_principal NUMERIC(18,2) NOT NULL,
	overpayment NUMERIC(18,2) NOT NULL,
	principal_after NUMERIC(18,2) NOT NULL,
	status_after VARCHAR(16) NOT NULL,
	transaction_date TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_loan_transactions_loan_id ON loan_transactions(loan_id);

CREATE TABLE IF NOT EXISTS penalty_settings (
	id INTEGER PRIMARY KEY,
	monthly_rate NUMERIC(9,6) NOT NULL,
	daily_threshold_days INTEGER NOT NULL,
	days_in_month INTEGER NOT NULL,
	grace_period_days INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS service_charge_brackets (
	id SERIAL PRIMARY KEY,
	min_amount NUMERIC(18,2) NOT NULL,
	max_amount NUMERIC(18,2),
	charge_amount NUMERIC(18,2) NOT NULL
);
`

// sqlite has no decimal type; amounts are kept as TEXT so nothing is lost.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS loans (
	id TEXT PRIMARY KEY,
	loan_id TEXT NOT NULL UNIQUE,
	pawner_name TEXT NOT NULL,
	principal TEXT NOT NULL,
	interest_rate TEXT NOT NULL,
	granted_date TIMESTAMP NOT NULL,
	maturity_date TIMESTAMP NOT NULL,
	expiry_date TIMESTAMP NOT NULL,
	status TEXT NOT NULL,
	service_charge_paid TEXT NOT NULL DEFAULT '0',
	penalty_paid TEXT NOT NULL DEFAULT '0',
	interest_paid TEXT NOT NULL DEFAULT '0',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_loans_status ON loans(status);

CREATE TABLE IF NOT EXISTS loan_items (
	id TEXT PRIMARY KEY,
	loan_id TEXT NOT NULL REFERENCES loans(loan_id),
	position INTEGER NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	interest_rate TEXT NOT NULL,
	appraisal_value TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_loan_items_loan_id ON loan_items(loan_id);

CREATE TABLE IF NOT EXISTS loan_transactions (
	id TEXT PRIMARY KEY,
	loan_id TEXT NOT NULL REFERENCES loans(loan_id),
	type TEXT NOT NULL,
	amount TEXT NOT NULL,
	applied_service_charges TEXT NOT NULL,
	applied_penalty TEXT NOT NULL,
	applied_interest TEXT NOT NULL,
	applied_principal TEXT NOT NULL,
	overpayment TEXT NOT NULL,
	principal_after TEXT NOT NULL,
	status_after TEXT NOT NULL,
	transaction_date TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_loan_transactions_loan_id ON loan_transactions(loan_id);

CREATE TABLE IF NOT EXISTS penalty_settings (
	id INTEGER PRIMARY KEY,
	monthly_rate TEXT NOT NULL,
	daily_threshold_days INTEGER NOT NULL,
	days_in_month INTEGER NOT NULL,
	grace_period_days INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS service_charge_brackets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	min_amount TEXT NOT NULL,
	max_amount TEXT,
	charge_amount TEXT NOT NULL
);
`

// Migrate creates the tables for db's driver if they don't already exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var schema string
	switch db.DriverName() {
	case "postgres":
		schema = postgresSchema
	case "sqlite3":
		schema = sqliteSchema
	default:
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
