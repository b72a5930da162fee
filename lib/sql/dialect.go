package sql

import (
	"github.com/fjord-labs/materialize/lib/typing"
)

type TableIdentifier interface {
	Schema() string
	Table() string
	WithTable(table string) TableIdentifier
	EscapedTable() string
	FullyQualifiedName() string
}

// CreateTableOpts carries the physical-layout clauses for CREATE TABLE ... AS.
type CreateTableOpts struct {
	OrReplace    bool
	FileFormat   string
	PartitionBy  []string
	ClusterBy    []string
	LocationRoot string
	Comment      string
}

type Dialect interface {
	QuoteIdentifier(identifier string) string
	QuoteLiteral(value string) string

	BuildCreateTableAsQuery(tableID TableIdentifier, query string, opts CreateTableOpts) string
	BuildCreateStagingViewQuery(stagingName string, query string) string
	BuildDropTableQuery(tableID TableIdentifier) string
	BuildDropViewQuery(tableID TableIdentifier) string
	BuildDropStagingViewQuery(stagingName string) string
	BuildShowTablesQuery(schema string) string

	BuildDescribeTableQuery(tableID TableIdentifier) string
	BuildDescribeStagingViewQuery(stagingName string) string
	BuildAddColumnsQuery(tableID TableIdentifier, cols []typing.Column) string
	BuildDropColumnsQuery(tableID TableIdentifier, cols []typing.Column) string

	BuildInsertAppendQuery(tableID TableIdentifier, stagingName string, colNames []string) string
	BuildInsertOverwriteQuery(tableID TableIdentifier, stagingName string, colNames []string) string
	BuildMergeQuery(tableID TableIdentifier, stagingName string, uniqueKey []string, colNames []string) string

	BuildShowGrantsQuery(tableID TableIdentifier) string
	BuildGrantQuery(tableID TableIdentifier, privilege string, grantee string) string
	BuildRevokeQuery(tableID TableIdentifier, privilege string, grantee string) string

	BuildCommentOnTableQuery(tableID TableIdentifier, comment string) string
	BuildAlterColumnCommentQuery(tableID TableIdentifier, colName string, comment string) string
	BuildSetConfigQuery(key string, value string) string

	IsTableDoesNotExistErr(err error) bool
	IsColumnAlreadyExistsErr(err error) bool
}
