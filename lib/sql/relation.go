package sql

import (
	"strings"

	"github.com/fjord-labs/materialize/lib/typing"
)

type RelationType string

const (
	RelationTypeTable RelationType = "table"
	RelationTypeView  RelationType = "view"
)

// Row is a single introspection result row, keyed by column name.
type Row map[string]any

// Relation describes a table or view that already exists on the engine.
type Relation struct {
	ID       TableIdentifier
	Type     RelationType
	Provider string
	Columns  []typing.Column
}

func (r *Relation) IsView() bool {
	return r != nil && r.Type == RelationTypeView
}

func (r *Relation) IsDelta() bool {
	return r != nil && strings.EqualFold(r.Provider, "delta")
}
