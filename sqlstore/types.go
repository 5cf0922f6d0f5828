package sqlstore

import "fmt"

// ColumnType is one of the portable column types accepted by the builders.
type ColumnType string

const (
	TEXT    ColumnType = "TEXT"
	NUMBER  ColumnType = "NUMBER"
	BOOLEAN ColumnType = "BOOLEAN"
	DATE    ColumnType = "DATE"
)

// sqlType maps a ColumnType to its Postgres spelling.
func (t ColumnType) sqlType() (string, error) {
	switch t {
	case TEXT, BOOLEAN, DATE:
		return string(t), nil
	case NUMBER:
		return "NUMERIC", nil
	default:
		return "", fmt.Errorf("unsupported column type %q", string(t))
	}
}

// Relation names the column a foreign key points at.
type Relation struct {
	Table  string
	Column string
}

// ColumnDefinition describes one column of a table being created.
// Columns are NOT NULL unless Nullable is set.
type ColumnDefinition struct {
	Name     string
	Type     ColumnType
	Primary  bool
	Nullable bool
	Related  *Relation
}
