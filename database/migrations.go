package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migration is one versioned schema change. Up and Down return the DDL for
// the given dialect; both run inside a single transaction.
type Migration struct {
	Version string
	Up      func(d Dialect) []string
	Down    func(d Dialect) []string
}

// MigrationStatus reports whether a known migration has been applied.
type MigrationStatus struct {
	Version string
	Applied bool
}

// Migrations is the ordered list of schema versions.
var Migrations = []Migration{
	{Version: "0001_create_tables", Up: createTablesUp, Down: createTablesDown},
}

// Migrator applies Migrations and records them in schema_migrations.
type Migrator struct {
	db         *gorm.DB
	dialect    Dialect
	migrations []Migration
	log        logrus.FieldLogger
}

func NewMigrator(db *gorm.DB, dialect Dialect, log logrus.FieldLogger) *Migrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Migrator{db: db, dialect: dialect, migrations: Migrations, log: log}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	ts := "DATETIME"
	if m.dialect == Postgres {
		ts = "TIMESTAMPTZ"
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS schema_migrations (
	version VARCHAR(255) PRIMARY KEY,
	applied_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, ts)
	if err := m.db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]bool, error) {
	var versions []string
	if err := m.db.WithContext(ctx).Raw("SELECT version FROM schema_migrations").Scan(&versions).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	done := make(map[string]bool, len(versions))
	for _, v := range versions {
		done[v] = true
	}
	return done, nil
}

// Up applies every pending migration in order and returns the versions it applied.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, mig := range m.migrations {
		if done[mig.Version] {
			continue
		}
		mig := mig
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, stmt := range mig.Up(m.dialect) {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", mig.Version).Error
		})
		if err != nil {
			return ran, fmt.Errorf("apply migration %s: %w", mig.Version, err)
		}
		m.log.WithField("version", mig.Version).Info("migration applied")
		ran = append(ran, mig.Version)
	}
	return ran, nil
}

// Down rolls back the most recently applied migration. It returns an empty
// version when nothing is applied.
func (m *Migrator) Down(ctx context.Context) (string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return "", err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return "", err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if !done[mig.Version] {
			continue
		}
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, stmt := range mig.Down(m.dialect) {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return tx.Exec("DELETE FROM schema_migrations WHERE version = ?", mig.Version).Error
		})
		if err != nil {
			return "", fmt.Errorf("revert migration %s: %w", mig.Version, err)
		}
		m.log.WithField("version", mig.Version).Info("migration reverted")
		return mig.Version, nil
	}
	return "", nil
}

func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MigrationStatus, 0, len(m.migrations))
	for _, mig := range m.migrations {
		out = append(out, MigrationStatus{Version: mig.Version, Applied: done[mig.Version]})
	}
	return out, nil
}

type columnTypes struct {
	pk      string
	ts      string
	dec     string
	decZero string
}

func typesFor(d Dialect) columnTypes {
	if d == Postgres {
		return columnTypes{pk: "SERIAL PRIMARY KEY", ts: "TIMESTAMPTZ", dec: "NUMERIC(16,8)", decZero: "0"}
	}
	// TEXT keeps decimal strings exact; NUMERIC affinity would round through float64.
	return columnTypes{pk: "INTEGER PRIMARY KEY AUTOINCREMENT", ts: "DATETIME", dec: "TEXT", decZero: "'0'"}
}

func createTablesUp(d Dialect) []string {
	t := typesFor(d)
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
	id %s,
	username VARCHAR(255) NOT NULL UNIQUE,
	email VARCHAR(255) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, t.pk, t.ts, t.ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS accounts (
	id %s,
	user_id INTEGER NOT NULL,
	name VARCHAR(255) NOT NULL,
	account_type VARCHAR(255) NOT NULL,
	balance %s NOT NULL DEFAULT %s,
	currency VARCHAR(255) NOT NULL,
	created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT fk_accounts_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE ON UPDATE CASCADE
)`, t.pk, t.dec, t.decZero, t.ts),
		`CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts (user_id)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS transactions (
	id %s,
	account_id INTEGER NOT NULL,
	transaction_type VARCHAR(255) NOT NULL,
	amount %s NOT NULL,
	description VARCHAR(255) NOT NULL,
	category VARCHAR(255),
	created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT fk_transactions_account FOREIGN KEY (account_id) REFERENCES accounts (id) ON DELETE CASCADE ON UPDATE CASCADE
)`, t.pk, t.dec, t.ts),
		`CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions (account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions (created_at)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS assets (
	id %s,
	user_id INTEGER NOT NULL,
	symbol VARCHAR(255) NOT NULL,
	name VARCHAR(255) NOT NULL,
	quantity %s NOT NULL DEFAULT %s,
	avg_price %s NOT NULL DEFAULT %s,
	asset_type VARCHAR(255) NOT NULL,
	created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT fk_assets_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE ON UPDATE CASCADE
)`, t.pk, t.dec, t.decZero, t.dec, t.decZero, t.ts, t.ts),
		`CREATE INDEX IF NOT EXISTS idx_assets_user_id ON assets (user_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS u_assets_user_symbol ON assets (user_id, symbol)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS asset_prices (
	id %s,
	symbol VARCHAR(255) NOT NULL,
	price %s NOT NULL,
	currency VARCHAR(255) NOT NULL,
	updated_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, t.pk, t.dec, t.ts),
		`CREATE UNIQUE INDEX IF NOT EXISTS u_asset_prices_symbol ON asset_prices (symbol)`,
	}
}

func createTablesDown(Dialect) []string {
	return []string{
		`DROP TABLE IF EXISTS asset_prices`,
		`DROP TABLE IF EXISTS transactions`,
		`DROP TABLE IF EXISTS assets`,
		`DROP TABLE IF EXISTS accounts`,
		`DROP TABLE IF EXISTS users`,
	}
}
