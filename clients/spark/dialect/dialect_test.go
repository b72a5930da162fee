package dialect

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparkDialect_QuoteIdentifier(t *testing.T) {
	dialect := SparkDialect{}
	assert.Equal(t, "`foo`", dialect.QuoteIdentifier("foo"))
	assert.Equal(t, "`FOO`", dialect.QuoteIdentifier("FOO"))
}

func TestSparkDialect_QuoteLiteral(t *testing.T) {
	dialect := SparkDialect{}
	assert.Equal(t, "'foo'", dialect.QuoteLiteral("foo"))
	assert.Equal(t, `'O\'Reilly'`, dialect.QuoteLiteral("O'Reilly"))
	assert.Equal(t, `'a\\b'`, dialect.QuoteLiteral(`a\b`))
}

func TestSparkDialect_IsColumnAlreadyExistsErr(t *testing.T) {
	{
		// No error
		assert.False(t, SparkDialect{}.IsColumnAlreadyExistsErr(nil))
	}
	{
		// Random error
		assert.False(t, SparkDialect{}.IsColumnAlreadyExistsErr(fmt.Errorf("random error")))
	}
	{
		// Valid
		assert.True(t, SparkDialect{}.IsColumnAlreadyExistsErr(fmt.Errorf("[FIELDS_ALREADY_EXISTS] Cannot add column, because `first_name` already exists")))
		assert.True(t, SparkDialect{}.IsColumnAlreadyExistsErr(fmt.Errorf("Column first_name already exists")))
	}
}

func TestSparkDialect_IsTableDoesNotExistErr(t *testing.T) {
	{
		// No error
		assert.False(t, SparkDialect{}.IsTableDoesNotExistErr(nil))
	}
	{
		// Random error
		assert.False(t, SparkDialect{}.IsTableDoesNotExistErr(fmt.Errorf("random error")))
	}
	{
		// Valid
		assert.True(t, SparkDialect{}.IsTableDoesNotExistErr(fmt.Errorf("[TABLE_OR_VIEW_NOT_FOUND] Table or view not found: `foo`")))
		assert.True(t, SparkDialect{}.IsTableDoesNotExistErr(fmt.Errorf("Table or view not found: foo")))
	}
}
