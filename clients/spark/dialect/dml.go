package dialect

import (
	"fmt"
	"strings"

	"github.com/fjord-labs/materialize/lib/sql"
)

func (d SparkDialect) BuildInsertAppendQuery(tableID sql.TableIdentifier, stagingName string, colNames []string) string {
	quotedCols := strings.Join(d.quoteIdentifiers(colNames), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		tableID.FullyQualifiedName(), quotedCols, quotedCols, d.QuoteIdentifier(stagingName))
}

func (d SparkDialect) BuildInsertOverwriteQuery(tableID sql.TableIdentifier, stagingName string, colNames []string) string {
	// Partition resolution is dynamic, see spark.sql.sources.partitionOverwriteMode.
	return fmt.Sprintf("INSERT OVERWRITE TABLE %s SELECT %s FROM %s",
		tableID.FullyQualifiedName(), strings.Join(d.quoteIdentifiers(colNames), ", "), d.QuoteIdentifier(stagingName))
}

func (d SparkDialect) BuildMergeQuery(tableID sql.TableIdentifier, stagingName string, uniqueKey []string, colNames []string) string {
	// Without a unique key no row can ever match, which degrades the merge to
	// an insert-only statement.
	equalitySQL := "FALSE"
	if len(uniqueKey) > 0 {
		equalitySQLParts := make([]string, len(uniqueKey))
		for i, key := range uniqueKey {
			equalitySQLParts[i] = fmt.Sprintf("%s.%s = %s.%s", targetAlias, d.QuoteIdentifier(key), stagingAlias, d.QuoteIdentifier(key))
		}
		equalitySQL = strings.Join(equalitySQLParts, " AND ")
	}

	baseQuery := fmt.Sprintf("MERGE INTO %s %s USING %s %s ON %s",
		tableID.FullyQualifiedName(), targetAlias, d.QuoteIdentifier(stagingName), stagingAlias, equalitySQL)

	updateSQLParts := make([]string, len(colNames))
	stagingColSQLParts := make([]string, len(colNames))
	for i, colName := range colNames {
		updateSQLParts[i] = fmt.Sprintf("%s.%s = %s.%s", targetAlias, d.QuoteIdentifier(colName), stagingAlias, d.QuoteIdentifier(colName))
		stagingColSQLParts[i] = fmt.Sprintf("%s.%s", stagingAlias, d.QuoteIdentifier(colName))
	}

	return baseQuery + fmt.Sprintf(" WHEN MATCHED THEN UPDATE SET %s WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)",
		strings.Join(updateSQLParts, ", "),
		strings.Join(d.quoteIdentifiers(colNames), ", "),
		strings.Join(stagingColSQLParts, ", "),
	)
}
