// Package build materializes SQL models incrementally against a Spark engine.
package build

import (
	"github.com/fjord-labs/materialize/lib/sql"
)

type BuildMode string

const (
	// BuildModeCreate builds the target directly because it does not exist yet.
	BuildModeCreate BuildMode = "create"
	// BuildModeReplace rebuilds the target from scratch, discarding prior state.
	BuildModeReplace BuildMode = "replace"
	// BuildModeIncremental merges staged data into the existing target.
	BuildModeIncremental BuildMode = "incremental"
)

type RelationState struct {
	Exists  bool
	IsView  bool
	IsDelta bool
}

func NewRelationState(relation *sql.Relation) RelationState {
	if relation == nil {
		return RelationState{}
	}

	return RelationState{
		Exists:  true,
		IsView:  relation.IsView(),
		IsDelta: relation.IsDelta(),
	}
}

// DecideBuildMode picks exactly one build path. The branches are evaluated in
// priority order and are mutually exclusive.
func DecideBuildMode(state RelationState, fullRefresh bool) BuildMode {
	if !state.Exists {
		return BuildModeCreate
	}

	if state.IsView || fullRefresh {
		return BuildModeReplace
	}

	return BuildModeIncremental
}

// ShouldRevokeGrants returns whether previously granted access needs to be
// diffed and revoked. A brand-new or fully rebuilt table carries no grants.
func ShouldRevokeGrants(existed bool, fullRefresh bool) bool {
	return existed && !fullRefresh
}
