package dialect

import (
	"fmt"
	"path"
	"strings"

	"github.com/fjord-labs/materialize/lib/sql"
	"github.com/fjord-labs/materialize/lib/typing"
)

func (d SparkDialect) BuildCreateTableAsQuery(tableID sql.TableIdentifier, query string, opts sql.CreateTableOpts) string {
	verb := "CREATE TABLE"
	if opts.OrReplace {
		// Only delta supports an atomic replace, callers gate on that.
		verb = "CREATE OR REPLACE TABLE"
	}

	parts := []string{fmt.Sprintf("%s %s", verb, tableID.FullyQualifiedName())}
	if opts.FileFormat != "" {
		parts = append(parts, "USING "+opts.FileFormat)
	}

	if len(opts.PartitionBy) > 0 {
		parts = append(parts, fmt.Sprintf("PARTITIONED BY (%s)", strings.Join(d.quoteIdentifiers(opts.PartitionBy), ", ")))
	}

	if len(opts.ClusterBy) > 0 {
		parts = append(parts, fmt.Sprintf("CLUSTER BY (%s)", strings.Join(d.quoteIdentifiers(opts.ClusterBy), ", ")))
	}

	if opts.LocationRoot != "" {
		parts = append(parts, fmt.Sprintf("LOCATION %s", d.QuoteLiteral(path.Join(opts.LocationRoot, tableID.Table()))))
	}

	if opts.Comment != "" {
		parts = append(parts, fmt.Sprintf("COMMENT %s", d.QuoteLiteral(opts.Comment)))
	}

	parts = append(parts, "AS "+query)
	return strings.Join(parts, " ")
}

func (SparkDialect) BuildCreateStagingViewQuery(stagingName string, query string) string {
	return fmt.Sprintf("CREATE OR REPLACE TEMPORARY VIEW %s AS %s", SparkDialect{}.QuoteIdentifier(stagingName), query)
}

func (SparkDialect) BuildDropTableQuery(tableID sql.TableIdentifier) string {
	return "DROP TABLE IF EXISTS " + tableID.FullyQualifiedName()
}

func (SparkDialect) BuildDropViewQuery(tableID sql.TableIdentifier) string {
	return "DROP VIEW IF EXISTS " + tableID.FullyQualifiedName()
}

func (d SparkDialect) BuildDropStagingViewQuery(stagingName string) string {
	return "DROP VIEW IF EXISTS " + d.QuoteIdentifier(stagingName)
}

func (d SparkDialect) BuildShowTablesQuery(schema string) string {
	return "SHOW TABLES IN " + d.QuoteIdentifier(schema)
}

func (SparkDialect) BuildDescribeTableQuery(tableID sql.TableIdentifier) string {
	return "DESCRIBE TABLE EXTENDED " + tableID.FullyQualifiedName()
}

func (d SparkDialect) BuildDescribeStagingViewQuery(stagingName string) string {
	return "DESCRIBE TABLE " + d.QuoteIdentifier(stagingName)
}

func (SparkDialect) BuildAddColumnsQuery(tableID sql.TableIdentifier, cols []typing.Column) string {
	colSQLParts := make([]string, len(cols))
	for i, col := range cols {
		colSQLParts[i] = col.EscapedDeclaration()
	}

	return fmt.Sprintf("ALTER TABLE %s ADD COLUMNS (%s)", tableID.FullyQualifiedName(), strings.Join(colSQLParts, ", "))
}

func (d SparkDialect) BuildDropColumnsQuery(tableID sql.TableIdentifier, cols []typing.Column) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMNS (%s)", tableID.FullyQualifiedName(), strings.Join(d.quoteIdentifiers(typing.ColumnNames(cols)), ", "))
}

func (d SparkDialect) BuildCommentOnTableQuery(tableID sql.TableIdentifier, comment string) string {
	return fmt.Sprintf("COMMENT ON TABLE %s IS %s", tableID.FullyQualifiedName(), d.QuoteLiteral(comment))
}

func (d SparkDialect) BuildAlterColumnCommentQuery(tableID sql.TableIdentifier, colName string, comment string) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s COMMENT %s", tableID.FullyQualifiedName(), d.QuoteIdentifier(colName), d.QuoteLiteral(comment))
}

func (SparkDialect) BuildSetConfigQuery(key string, value string) string {
	return fmt.Sprintf("SET %s = %s", key, value)
}
