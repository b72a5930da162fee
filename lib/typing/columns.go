package typing

import (
	"fmt"
	"strings"
)

// Spark SQL does not support primary keys, so columns are just a name, a data
// type and an optional comment.
type Column struct {
	Name     string
	DataType string
	Comment  string
}

func NewColumn(name, dataType string) Column {
	return Column{Name: name, DataType: dataType}
}

// EscapedDeclaration returns the `name type` fragment used by ADD COLUMNS.
func (c Column) EscapedDeclaration() string {
	return fmt.Sprintf("`%s` %s", c.Name, c.DataType)
}

// ColumnNames returns the column names, preserving order.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}

	return names
}

func buildColumnMap(cols []Column) map[string]Column {
	out := make(map[string]Column, len(cols))
	for _, col := range cols {
		out[strings.ToLower(col.Name)] = col
	}

	return out
}
