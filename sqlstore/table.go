package sqlstore

import "context"

// Table runs queries against one named table.
type Table struct {
	db   *Database
	name string
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Columns describes the table's columns in ordinal order.
func (t *Table) Columns(ctx context.Context) ([]map[string]any, error) {
	return t.db.query(ctx, "columns", listColumnsQuery, t.name)
}

// Create creates the table from column definitions.
func (t *Table) Create(ctx context.Context, columns []ColumnDefinition) error {
	query, err := BuildCreateTable(t.name, columns)
	if err != nil {
		return err
	}

	if _, err := t.db.db.ExecContext(ctx, query); err != nil {
		return t.db.fail("create", err)
	}
	return nil
}

// Insert stores one row and returns it as written.
func (t *Table) Insert(ctx context.Context, values map[string]any) ([]map[string]any, error) {
	query, args, err := BuildInsert(t.name, values)
	if err != nil {
		return nil, err
	}
	return t.db.query(ctx, "insert", query, args...)
}

// List returns a page of rows. A size of zero returns every row.
func (t *Table) List(ctx context.Context, page, size int) ([]map[string]any, error) {
	return t.db.query(ctx, "list", BuildList(t.name, page, size))
}

// Builder starts a fluent table definition.
func (t *Table) Builder() *ColumnBuilder {
	return &ColumnBuilder{table: t}
}

// ColumnBuilder accumulates column definitions. Primary, Nullable and
// Related modify the most recently added column and do nothing before the
// first Add.
type ColumnBuilder struct {
	table   *Table
	columns []ColumnDefinition
}

// Add appends a column.
func (b *ColumnBuilder) Add(name string, columnType ColumnType) *ColumnBuilder {
	b.columns = append(b.columns, ColumnDefinition{Name: name, Type: columnType})
	return b
}

// Primary marks the last column as the primary key.
func (b *ColumnBuilder) Primary() *ColumnBuilder {
	if last := b.last(); last != nil {
		last.Primary = true
	}
	return b
}

// Nullable lets the last column hold NULL.
func (b *ColumnBuilder) Nullable() *ColumnBuilder {
	if last := b.last(); last != nil {
		last.Nullable = true
	}
	return b
}

// Related adds a foreign key from the last column to table.column.
func (b *ColumnBuilder) Related(table, column string) *ColumnBuilder {
	if last := b.last(); last != nil {
		last.Related = &Relation{Table: table, Column: column}
	}
	return b
}

// Columns returns a copy of the definitions collected so far.
func (b *ColumnBuilder) Columns() []ColumnDefinition {
	return append([]ColumnDefinition(nil), b.columns...)
}

// Build creates the table from the collected definitions.
func (b *ColumnBuilder) Build(ctx context.Context) error {
	return b.table.Create(ctx, b.columns)
}

func (b *ColumnBuilder) last() *ColumnDefinition {
	if len(b.columns) == 0 {
		return nil
	}
	return &b.columns[len(b.columns)-1]
}
