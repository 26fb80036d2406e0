// Package migrations applies the embedded go-credentials schema with goose.
package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-credentials/data"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/pressly/goose/v3"
)

const (
	// DialectPostgres selects the root migration files.
	DialectPostgres = "postgres"
	// DialectSQLite selects the sqlite overrides.
	DialectSQLite = "sqlite3"

	rootDir = "sql/migrations"
)

// goose keeps its base filesystem, dialect and logger in package globals.
var gooseMu sync.Mutex

// Option customizes a migration run.
type Option func(*runConfig)

type runConfig struct {
	logger types.Logger
}

// WithLogger routes goose output through logger.
func WithLogger(logger types.Logger) Option {
	return func(cfg *runConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// NormalizeDialect maps driver and dialect aliases to the goose dialect name.
func NormalizeDialect(dialect string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql", "pg", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
}

// Dir returns the directory inside data.MigrationsFS holding the files for
// dialect.
func Dir(dialect string) (string, error) {
	normalized, err := NormalizeDialect(dialect)
	if err != nil {
		return "", err
	}
	if normalized == DialectSQLite {
		return rootDir + "/sqlite", nil
	}
	return rootDir, nil
}

// Up applies every pending migration for dialect.
func Up(ctx context.Context, db *sql.DB, dialect string, opts ...Option) error {
	return run(ctx, db, dialect, opts, func(dir string) error {
		return goose.UpContext(ctx, db, dir)
	})
}

// Down rolls back every applied migration for dialect.
func Down(ctx context.Context, db *sql.DB, dialect string, opts ...Option) error {
	return run(ctx, db, dialect, opts, func(dir string) error {
		return goose.DownToContext(ctx, db, dir, 0)
	})
}

func run(ctx context.Context, db *sql.DB, dialect string, opts []Option, fn func(dir string) error) error {
	if db == nil {
		return errors.New("migrations: db required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := Dir(dialect)
	if err != nil {
		return err
	}
	normalized, _ := NormalizeDialect(dialect)

	cfg := runConfig{logger: types.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(data.MigrationsFS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{logger: cfg.logger})
	if err := goose.SetDialect(normalized); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if err := fn(dir); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// gooseLogger adapts types.Logger to goose.Logger. Fatalf is reported as an
// error instead of exiting the process.
type gooseLogger struct {
	logger types.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	l.logger.Error("migrations: goose fatal", errors.New(msg))
}
