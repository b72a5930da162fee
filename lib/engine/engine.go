// Package engine defines the capability ports that the build sequence needs
// from a Spark-compatible SQL engine. Implementations live under clients/.
package engine

import (
	"context"

	"github.com/fjord-labs/materialize/lib/sql"
	"github.com/fjord-labs/materialize/lib/typing"
)

// Session executes statements against a live engine session.
type Session interface {
	ExecContext(ctx context.Context, query string) error
	QueryContext(ctx context.Context, query string) ([]sql.Row, error)
}

// RelationLoader introspects the current state of relations on the engine.
type RelationLoader interface {
	// LoadRelation returns nil (not an error) when the relation does not exist.
	LoadRelation(ctx context.Context, tableID sql.TableIdentifier) (*sql.Relation, error)
	// LoadStagingColumns describes a session-scoped staging view by name.
	LoadStagingColumns(ctx context.Context, stagingName string) ([]typing.Column, error)
}

// Adapter is the full set of capabilities the build sequence needs.
type Adapter interface {
	Session
	RelationLoader
	Dialect() sql.Dialect
	IdentifierFor(database, schema, table string) sql.TableIdentifier
}
