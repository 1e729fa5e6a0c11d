package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, dialect, err := Open("sqlite::memory:", logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.Equal(t, SQLite, dialect)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestMigratorPostgresUp(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	for range createTablesUp(Postgres) {
		mock.ExpectExec(".+").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")).
		WithArgs("0001_create_tables").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ran, err := NewMigrator(db, Postgres, nil).Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_tables"}, ran)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigratorPostgresSkipsApplied(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0001_create_tables"))

	ran, err := NewMigrator(db, Postgres, nil).Up(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ran)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDDL(t *testing.T) {
	stmts := createTablesUp(Postgres)
	assert.Contains(t, stmts[0], "SERIAL PRIMARY KEY")
	assert.Contains(t, stmts[1], "NUMERIC(16,8)")
	assert.Contains(t, stmts[1], "ON DELETE CASCADE")
	assert.NotContains(t, stmts[0], "AUTOINCREMENT")
}

func TestMigratorSQLiteUpDownStatus(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	m := NewMigrator(db, SQLite, nil)

	ran, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_tables"}, ran)

	// second run is a no-op
	ran, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Empty(t, ran)

	for _, table := range []string{"users", "accounts", "transactions", "assets", "asset_prices"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	for _, idx := range []string{"idx_accounts_user_id", "idx_transactions_account_id", "idx_transactions_created_at", "idx_assets_user_id", "u_assets_user_symbol", "u_asset_prices_symbol"} {
		var n int64
		require.NoError(t, db.Raw("SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = ?", idx).Scan(&n).Error)
		assert.Equal(t, int64(1), n, idx)
	}

	status, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.True(t, status[0].Applied)

	version, err := m.Down(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0001_create_tables", version)
	assert.False(t, db.Migrator().HasTable("users"))

	version, err = m.Down(ctx)
	require.NoError(t, err)
	assert.Empty(t, version)

	status, err = m.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status[0].Applied)
}

func TestSQLiteForeignKeysEnforced(t *testing.T) {
	db := openMemory(t)
	_, err := NewMigrator(db, SQLite, nil).Up(context.Background())
	require.NoError(t, err)

	err = db.Exec("INSERT INTO accounts (user_id, name, account_type, currency) VALUES (?, ?, ?, ?)", 42, "n", "cash", "USD").Error
	assert.Error(t, err)
}
