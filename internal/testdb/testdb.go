// Package testdb opens migrated in-memory SQLite databases for package tests.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/goliatone/go-credentials/migrations"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// New returns a Bun handle over a private in-memory SQLite database with the
// full schema applied. The database is closed when the test ends.
func New(t testing.TB) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqldb, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	require.NoError(t, migrations.Up(context.Background(), sqldb, migrations.DialectSQLite))

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
