package typing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	{
		// Identical sets
		cols := []Column{NewColumn("id", "bigint"), NewColumn("name", "string")}
		sourceOnly, targetOnly := Diff(cols, cols)
		assert.Empty(t, sourceOnly)
		assert.Empty(t, targetOnly)
	}
	{
		// Name matching is case-insensitive
		sourceOnly, targetOnly := Diff(
			[]Column{NewColumn("ID", "bigint")},
			[]Column{NewColumn("id", "bigint")},
		)
		assert.Empty(t, sourceOnly)
		assert.Empty(t, targetOnly)
	}
	{
		// Source has a new column
		sourceOnly, targetOnly := Diff(
			[]Column{NewColumn("id", "bigint"), NewColumn("created_at", "timestamp")},
			[]Column{NewColumn("id", "bigint")},
		)
		assert.Equal(t, []Column{NewColumn("created_at", "timestamp")}, sourceOnly)
		assert.Empty(t, targetOnly)
	}
	{
		// Target has a column the source dropped
		sourceOnly, targetOnly := Diff(
			[]Column{NewColumn("id", "bigint")},
			[]Column{NewColumn("id", "bigint"), NewColumn("legacy", "string")},
		)
		assert.Empty(t, sourceOnly)
		assert.Equal(t, []Column{NewColumn("legacy", "string")}, targetOnly)
	}
	{
		// Type changes on matching names are not drift
		sourceOnly, targetOnly := Diff(
			[]Column{NewColumn("id", "string")},
			[]Column{NewColumn("id", "bigint")},
		)
		assert.Empty(t, sourceOnly)
		assert.Empty(t, targetOnly)
	}
}

func TestColumnNames(t *testing.T) {
	assert.Empty(t, ColumnNames(nil))
	assert.Equal(t,
		[]string{"id", "name"},
		ColumnNames([]Column{NewColumn("id", "bigint"), NewColumn("name", "string")}),
	)
}

func TestColumn_EscapedDeclaration(t *testing.T) {
	assert.Equal(t, "`order` bigint", NewColumn("order", "bigint").EscapedDeclaration())
}
