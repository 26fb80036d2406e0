// Package data embeds the SQL migrations shipped with go-credentials.
//
// Root files (sql/migrations/*.sql) target PostgreSQL; SQLite overrides live
// in sql/migrations/sqlite. Every file carries goose Up/Down annotations.
package data

import "embed"

// MigrationsFS contains the PostgreSQL and SQLite migrations.
//
//go:embed sql/migrations/*.sql sql/migrations/sqlite/*.sql
var MigrationsFS embed.FS
