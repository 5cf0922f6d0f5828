package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Database wraps a SQL handle with table-level helpers.
type Database struct {
	db     *sql.DB
	logger *zap.Logger
}

// New wraps an existing handle.
func New(db *sql.DB, logger *zap.Logger) *Database {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Database{db: db, logger: logger}
}

// Open connects to Postgres and checks the connection.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return New(db, logger), nil
}

// Close releases the underlying handle.
func (d *Database) Close() error {
	return d.db.Close()
}

// Ping checks the connection.
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Tables lists table names in the public schema.
func (d *Database) Tables(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, listTablesQuery)
	if err != nil {
		return nil, d.fail("tables", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, d.fail("tables", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, d.fail("tables", err)
	}
	return names, nil
}

// Table returns a handle for the named table. The table need not exist yet.
func (d *Database) Table(name string) *Table {
	return &Table{db: d, name: name}
}

func (d *Database) query(ctx context.Context, op, query string, args ...any) ([]map[string]any, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, d.fail(op, err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, d.fail(op, err)
	}
	return result, nil
}

func (d *Database) fail(op string, err error) error {
	d.logger.Error("query failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

// scanRows reads every row into a column-name keyed map.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}
		result = append(result, row)
	}

	return result, rows.Err()
}
