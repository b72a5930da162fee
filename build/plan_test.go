package build

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fjord-labs/materialize/clients/spark/dialect"
	sqllib "github.com/fjord-labs/materialize/lib/sql"
)

func TestNewRelationState(t *testing.T) {
	{
		// Absent relation
		assert.Equal(t, RelationState{}, NewRelationState(nil))
	}
	{
		// Delta table
		state := NewRelationState(&sqllib.Relation{
			ID:       dialect.NewTableIdentifier("", "analytics", "orders"),
			Type:     sqllib.RelationTypeTable,
			Provider: "delta",
		})
		assert.Equal(t, RelationState{Exists: true, IsDelta: true}, state)
	}
	{
		// View
		state := NewRelationState(&sqllib.Relation{
			ID:   dialect.NewTableIdentifier("", "analytics", "orders"),
			Type: sqllib.RelationTypeView,
		})
		assert.Equal(t, RelationState{Exists: true, IsView: true}, state)
	}
}

func TestDecideBuildMode(t *testing.T) {
	{
		// Absent, the full refresh flag does not matter.
		assert.Equal(t, BuildModeCreate, DecideBuildMode(RelationState{}, false))
		assert.Equal(t, BuildModeCreate, DecideBuildMode(RelationState{}, true))
	}
	{
		// Views always get replaced.
		state := RelationState{Exists: true, IsView: true}
		assert.Equal(t, BuildModeReplace, DecideBuildMode(state, false))
		assert.Equal(t, BuildModeReplace, DecideBuildMode(state, true))
	}
	{
		// Existing table, the flag decides.
		state := RelationState{Exists: true}
		assert.Equal(t, BuildModeIncremental, DecideBuildMode(state, false))
		assert.Equal(t, BuildModeReplace, DecideBuildMode(state, true))
	}
}

func TestShouldRevokeGrants(t *testing.T) {
	assert.False(t, ShouldRevokeGrants(false, false))
	assert.False(t, ShouldRevokeGrants(false, true))
	assert.False(t, ShouldRevokeGrants(true, true))
	assert.True(t, ShouldRevokeGrants(true, false))
}
