package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// TableCheck lists the columns a host-owned table must expose.
type TableCheck struct {
	Table   string
	Columns []string
}

// DefaultHostTableChecks covers the account and credential tables that hosts
// may provide instead of running 00001_accounts.
var DefaultHostTableChecks = []TableCheck{
	{
		Table:   "accounts",
		Columns: []string{"id", "email", "failed_login_attempts", "is_locked", "lock_reason", "locked_at", "updated_at"},
	},
	{
		Table:   "credentials",
		Columns: []string{"id", "user_id", "provider_id", "password", "updated_at"},
	},
}

// SchemaError summarizes missing host tables and columns.
type SchemaError struct {
	MissingTables  []string
	MissingColumns map[string][]string
}

func (e *SchemaError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("host schema incomplete")
	if len(e.MissingTables) > 0 {
		fmt.Fprintf(&b, "; tables: %s", strings.Join(e.MissingTables, ", "))
	}
	if len(e.MissingColumns) > 0 {
		tables := make([]string, 0, len(e.MissingColumns))
		for table := range e.MissingColumns {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		for _, table := range tables {
			cols := append([]string(nil), e.MissingColumns[table]...)
			sort.Strings(cols)
			fmt.Fprintf(&b, "; %s(%s)", table, strings.Join(cols, ", "))
		}
	}
	return b.String()
}

// ValidateHostSchema checks that the account and credential tables expose the
// columns the credential workflow reads and writes. Pass custom checks to
// override DefaultHostTableChecks.
func ValidateHostSchema(ctx context.Context, db *sql.DB, dialect string, checks ...TableCheck) error {
	if db == nil {
		return errors.New("migrations: db required")
	}
	normalized, err := NormalizeDialect(dialect)
	if err != nil {
		return err
	}
	if len(checks) == 0 {
		checks = DefaultHostTableChecks
	}

	schemaErr := &SchemaError{MissingColumns: map[string][]string{}}
	for _, check := range checks {
		table := strings.TrimSpace(check.Table)
		if table == "" {
			continue
		}
		present, err := tableColumns(ctx, db, normalized, table)
		if err != nil {
			return err
		}
		if len(present) == 0 {
			schemaErr.MissingTables = append(schemaErr.MissingTables, table)
			continue
		}
		for _, col := range check.Columns {
			col = strings.ToLower(strings.TrimSpace(col))
			if col != "" && !present[col] {
				schemaErr.MissingColumns[table] = append(schemaErr.MissingColumns[table], col)
			}
		}
	}
	if len(schemaErr.MissingTables) == 0 && len(schemaErr.MissingColumns) == 0 {
		return nil
	}
	sort.Strings(schemaErr.MissingTables)
	return schemaErr
}

func tableColumns(ctx context.Context, db *sql.DB, dialect, table string) (map[string]bool, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if dialect == DialectPostgres {
		rows, err = db.QueryContext(ctx,
			`SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1`,
			table)
	} else {
		rows, err = db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}
