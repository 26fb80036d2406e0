package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-credentials/migrations"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestUpAppliesSQLiteSchema(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	require.NoError(t, migrations.Up(ctx, db, "sqlite"))
	for _, table := range []string{"accounts", "credentials", "password_reset_requests", "audit_log", "security_alerts"} {
		require.True(t, tableExists(t, db, table), table)
	}

	// idempotent
	require.NoError(t, migrations.Up(ctx, db, migrations.DialectSQLite))
	require.NoError(t, migrations.ValidateHostSchema(ctx, db, "sqlite3"))

	require.NoError(t, migrations.Down(ctx, db, "sqlite"))
	require.False(t, tableExists(t, db, "password_reset_requests"))
}

func TestValidateHostSchemaReportsMissingColumns(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	_, err := db.Exec("CREATE TABLE accounts (id TEXT PRIMARY KEY, email TEXT)")
	require.NoError(t, err)

	err = migrations.ValidateHostSchema(ctx, db, "sqlite")
	var schemaErr *migrations.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, []string{"credentials"}, schemaErr.MissingTables)
	require.Contains(t, schemaErr.MissingColumns["accounts"], "is_locked")
	require.Contains(t, err.Error(), "accounts(")
}

func TestDirRejectsUnknownDialect(t *testing.T) {
	_, err := migrations.Dir("oracle")
	require.Error(t, err)

	dir, err := migrations.Dir("pgx")
	require.NoError(t, err)
	require.Equal(t, "sql/migrations", dir)
}
