package dialect

import (
	"fmt"

	"github.com/fjord-labs/materialize/lib/sql"
)

type TableIdentifier struct {
	database string
	schema   string
	table    string
}

func NewTableIdentifier(database, schema, table string) TableIdentifier {
	return TableIdentifier{
		database: database,
		schema:   schema,
		table:    table,
	}
}

func (t TableIdentifier) Database() string {
	return t.database
}

func (t TableIdentifier) Schema() string {
	return t.schema
}

func (t TableIdentifier) Table() string {
	return t.table
}

func (t TableIdentifier) WithTable(table string) sql.TableIdentifier {
	return NewTableIdentifier(t.database, t.schema, table)
}

func (t TableIdentifier) EscapedTable() string {
	return SparkDialect{}.QuoteIdentifier(t.table)
}

func (t TableIdentifier) FullyQualifiedName() string {
	dialect := SparkDialect{}
	if t.database == "" {
		return fmt.Sprintf("%s.%s", dialect.QuoteIdentifier(t.schema), t.EscapedTable())
	}

	return fmt.Sprintf("%s.%s.%s", dialect.QuoteIdentifier(t.database), dialect.QuoteIdentifier(t.schema), t.EscapedTable())
}
