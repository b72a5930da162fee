package dialect

import (
	"fmt"
	"strings"
)

const (
	// Aliases used inside MERGE statements.
	targetAlias  = "tgt"
	stagingAlias = "stg"
)

type SparkDialect struct{}

func (SparkDialect) QuoteIdentifier(identifier string) string {
	return fmt.Sprintf("`%s`", identifier)
}

func (SparkDialect) QuoteLiteral(value string) string {
	return fmt.Sprintf("'%s'", strings.ReplaceAll(strings.ReplaceAll(value, `\`, `\\`), "'", `\'`))
}

func (SparkDialect) IsColumnAlreadyExistsErr(err error) bool {
	if err == nil {
		return false
	}

	return strings.Contains(err.Error(), "[FIELDS_ALREADY_EXISTS]") || strings.Contains(err.Error(), "already exists")
}

func (SparkDialect) IsTableDoesNotExistErr(err error) bool {
	if err == nil {
		return false
	}

	return strings.Contains(err.Error(), "[TABLE_OR_VIEW_NOT_FOUND]") || strings.Contains(err.Error(), "Table or view not found")
}

func (d SparkDialect) quoteIdentifiers(identifiers []string) []string {
	quoted := make([]string, len(identifiers))
	for i, identifier := range identifiers {
		quoted[i] = d.QuoteIdentifier(identifier)
	}

	return quoted
}
