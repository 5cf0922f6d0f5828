package sqlstore

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

const (
	listTablesQuery = `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name`

	listColumnsQuery = `SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_name = $1 ORDER BY ordinal_position`
)

// BuildCreateTable renders a CREATE TABLE statement. Foreign key clauses
// follow the column list in column order.
func BuildCreateTable(table string, columns []ColumnDefinition) (string, error) {
	if table == "" {
		return "", fmt.Errorf("table name is required")
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}

	definitions := make([]string, 0, len(columns))
	var foreignKeys []string

	for _, column := range columns {
		if column.Name == "" {
			return "", fmt.Errorf("column name is required")
		}
		sqlType, err := column.Type.sqlType()
		if err != nil {
			return "", fmt.Errorf("column %s: %w", column.Name, err)
		}

		parts := []string{pq.QuoteIdentifier(column.Name), sqlType}
		if column.Primary {
			parts = append(parts, "PRIMARY KEY")
		}
		if !column.Nullable {
			parts = append(parts, "NOT NULL")
		}
		definitions = append(definitions, strings.Join(parts, " "))

		if column.Related != nil {
			foreignKeys = append(foreignKeys, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)",
				pq.QuoteIdentifier(column.Name),
				pq.QuoteIdentifier(column.Related.Table),
				pq.QuoteIdentifier(column.Related.Column),
			))
		}
	}

	definitions = append(definitions, foreignKeys...)
	return fmt.Sprintf("CREATE TABLE %s (%s)", pq.QuoteIdentifier(table), strings.Join(definitions, ", ")), nil
}

// BuildInsert renders an INSERT returning the stored row. Columns appear in
// sorted order and args line up with the $n placeholders.
func BuildInsert(table string, values map[string]any) (string, []any, error) {
	if table == "" {
		return "", nil, fmt.Errorf("table name is required")
	}
	if len(values) == 0 {
		return "", nil, fmt.Errorf("no values to insert")
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := make([]string, len(names))
	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		columns[i] = pq.QuoteIdentifier(name)
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = values[name]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		pq.QuoteIdentifier(table),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args, nil
}

// BuildList renders a SELECT over the whole table, paged only when size > 0.
func BuildList(table string, page, size int) string {
	query := "SELECT * FROM " + pq.QuoteIdentifier(table)

	if size > 0 {
		if page < 0 {
			page = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", size, page*size)
	}

	return query
}
