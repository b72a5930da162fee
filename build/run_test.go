package build

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjord-labs/materialize/clients/spark/dialect"
	"github.com/fjord-labs/materialize/lib/config"
	sqllib "github.com/fjord-labs/materialize/lib/sql"
	"github.com/fjord-labs/materialize/lib/telemetry/metrics"
	"github.com/fjord-labs/materialize/lib/typing"
	"github.com/fjord-labs/materialize/models"
)

type fakeAdapter struct {
	relation     *sqllib.Relation
	relationErr  error
	stagingCols  []typing.Column
	stagingErr   error
	rowsByPrefix map[string][]sqllib.Row
	execErrs     map[string]error

	queries []string
}

func (f *fakeAdapter) ExecContext(_ context.Context, query string) error {
	f.queries = append(f.queries, query)
	for prefix, err := range f.execErrs {
		if strings.HasPrefix(query, prefix) {
			return err
		}
	}

	return nil
}

func (f *fakeAdapter) QueryContext(_ context.Context, query string) ([]sqllib.Row, error) {
	f.queries = append(f.queries, query)
	for prefix, rows := range f.rowsByPrefix {
		if strings.HasPrefix(query, prefix) {
			return rows, nil
		}
	}

	return nil, nil
}

func (f *fakeAdapter) LoadRelation(_ context.Context, _ sqllib.TableIdentifier) (*sqllib.Relation, error) {
	return f.relation, f.relationErr
}

func (f *fakeAdapter) LoadStagingColumns(_ context.Context, _ string) ([]typing.Column, error) {
	return f.stagingCols, f.stagingErr
}

func (f *fakeAdapter) Dialect() sqllib.Dialect {
	return dialect.SparkDialect{}
}

func (f *fakeAdapter) IdentifierFor(database, schema, table string) sqllib.TableIdentifier {
	return dialect.NewTableIdentifier(database, schema, table)
}

func testBuilder(adapter *fakeAdapter) *Builder {
	return NewBuilder(adapter, config.Target{Schema: "analytics"}, metrics.NullMetricsProvider{})
}

func existingTable(provider string, cols ...typing.Column) *sqllib.Relation {
	return &sqllib.Relation{
		ID:       dialect.NewTableIdentifier("", "analytics", "orders"),
		Type:     sqllib.RelationTypeTable,
		Provider: provider,
		Columns:  cols,
	}
}

func TestBuilder_Run_InvalidConfig(t *testing.T) {
	adapter := &fakeAdapter{}
	model := models.Model{
		Name:   "orders",
		SQL:    "SELECT * FROM src.orders",
		Config: models.Config{IncrementalStrategy: models.StrategyMerge, FileFormat: "parquet"},
	}

	_, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
	assert.ErrorContains(t, err, "the merge strategy requires file_format to be one of")
	// Validation failures must not reach the engine.
	assert.Empty(t, adapter.queries)
}

func TestBuilder_Run_Create(t *testing.T) {
	adapter := &fakeAdapter{}
	model := models.Model{Name: "orders", SQL: "SELECT * FROM src.orders"}

	result, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
	require.NoError(t, err)
	assert.Equal(t, BuildModeCreate, result.Mode)
	assert.Equal(t, []string{
		"CREATE TABLE `analytics`.`orders` USING parquet AS SELECT * FROM src.orders",
	}, adapter.queries)
}

func TestBuilder_Run_CreateWithLayout(t *testing.T) {
	adapter := &fakeAdapter{}
	model := models.Model{
		Name:        "orders",
		SQL:         "SELECT * FROM src.orders",
		Description: "Orders fact table",
		Config: models.Config{
			FileFormat:   "delta",
			PartitionBy:  []string{"order_date"},
			LocationRoot: "s3://lake/tables",
			PersistDocs:  models.PersistDocs{Relation: true},
		},
	}

	result, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
	require.NoError(t, err)
	assert.Equal(t, BuildModeCreate, result.Mode)
	assert.Equal(t, []string{
		"CREATE TABLE `analytics`.`orders` USING delta PARTITIONED BY (`order_date`) LOCATION 's3://lake/tables/orders' COMMENT 'Orders fact table' AS SELECT * FROM src.orders",
	}, adapter.queries)
}

func TestBuilder_Run_CreateAbsentMergeDelta(t *testing.T) {
	// The merge config only matters once the table exists, a fresh build is a
	// single create with no staging objects.
	adapter := &fakeAdapter{}
	model := models.Model{
		Name: "orders",
		SQL:  "SELECT * FROM src.orders",
		Config: models.Config{
			FileFormat:          "delta",
			IncrementalStrategy: models.StrategyMerge,
			UniqueKey:           []string{"id"},
		},
	}

	result, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
	require.NoError(t, err)
	assert.Equal(t, BuildModeCreate, result.Mode)
	assert.Equal(t, []string{
		"CREATE TABLE `analytics`.`orders` USING delta AS SELECT * FROM src.orders",
	}, adapter.queries)
}

func TestBuilder_Run_ReplaceView(t *testing.T) {
	adapter := &fakeAdapter{
		relation: &sqllib.Relation{
			ID:   dialect.NewTableIdentifier("", "analytics", "orders"),
			Type: sqllib.RelationTypeView,
		},
	}
	model := models.Model{Name: "orders", SQL: "SELECT * FROM src.orders"}

	result, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
	require.NoError(t, err)
	assert.Equal(t, BuildModeReplace, result.Mode)
	assert.Equal(t, []string{
		"DROP VIEW IF EXISTS `analytics`.`orders`",
		"CREATE TABLE `analytics`.`orders` USING parquet AS SELECT * FROM src.orders",
	}, adapter.queries)
}

func TestBuilder_Run_FullRefresh(t *testing.T) {
	{
		// Non-delta tables have to be dropped before the rebuild.
		adapter := &fakeAdapter{relation: existingTable("parquet")}
		model := models.Model{Name: "orders", SQL: "SELECT * FROM src.orders"}

		result, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{FullRefresh: true})
		require.NoError(t, err)
		assert.Equal(t, BuildModeReplace, result.Mode)
		assert.Equal(t, []string{
			"DROP TABLE IF EXISTS `analytics`.`orders`",
			"CREATE TABLE `analytics`.`orders` USING parquet AS SELECT * FROM src.orders",
		}, adapter.queries)
	}
	{
		// Delta swaps atomically without a pre-drop.
		adapter := &fakeAdapter{relation: existingTable("delta")}
		model := models.Model{
			Name:   "orders",
			SQL:    "SELECT * FROM src.orders",
			Config: models.Config{FileFormat: "delta"},
		}

		result, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{FullRefresh: true})
		require.NoError(t, err)
		assert.Equal(t, BuildModeReplace, result.Mode)
		assert.Equal(t, []string{
			"CREATE OR REPLACE TABLE `analytics`.`orders` USING delta AS SELECT * FROM src.orders",
		}, adapter.queries)
	}
	{
		// Changing the file format away from delta forces the drop path.
		adapter := &fakeAdapter{relation: existingTable("delta")}
		model := models.Model{
			Name:   "orders",
			SQL:    "SELECT * FROM src.orders",
			Config: models.Config{FileFormat: "parquet"},
		}

		result, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{FullRefresh: true})
		require.NoError(t, err)
		assert.Equal(t, BuildModeReplace, result.Mode)
		assert.Equal(t, "DROP TABLE IF EXISTS `analytics`.`orders`", adapter.queries[0])
	}
}

func TestBuilder_Run_ModelFullRefreshOverride(t *testing.T) {
	// The model pins full_refresh to false, so the run-level flag is ignored.
	adapter := &fakeAdapter{
		relation:    existingTable("parquet", typing.NewColumn("id", "bigint")),
		stagingCols: []typing.Column{typing.NewColumn("id", "bigint")},
	}
	pinned := false
	model := models.Model{
		Name:   "orders",
		SQL:    "SELECT * FROM src.orders",
		Config: models.Config{FullRefresh: &pinned},
	}

	result, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{FullRefresh: true})
	require.NoError(t, err)
	assert.Equal(t, BuildModeIncremental, result.Mode)
}

func TestBuilder_Run_IncrementalAppend(t *testing.T) {
	adapter := &fakeAdapter{
		relation:    existingTable("parquet", typing.NewColumn("id", "bigint"), typing.NewColumn("amount", "double")),
		stagingCols: []typing.Column{typing.NewColumn("id", "bigint"), typing.NewColumn("amount", "double")},
	}
	model := models.Model{Name: "orders", SQL: "SELECT * FROM src.orders WHERE updated_at > NOW()"}

	result, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
	require.NoError(t, err)
	assert.Equal(t, BuildModeIncremental, result.Mode)
	require.Len(t, adapter.queries, 4)
	assert.True(t, strings.HasPrefix(adapter.queries[0], "CREATE OR REPLACE TEMPORARY VIEW `orders__stg_"))
	assert.True(t, strings.HasSuffix(adapter.queries[0], "AS SELECT * FROM src.orders WHERE updated_at > NOW()"))
	assert.True(t, strings.HasPrefix(adapter.queries[1], "INSERT INTO `analytics`.`orders` (`id`, `amount`) SELECT `id`, `amount` FROM `orders__stg_"))
	assert.True(t, strings.HasPrefix(adapter.queries[2], "DROP VIEW IF EXISTS `orders__stg_"))
	assert.True(t, strings.HasPrefix(adapter.queries[3], "DROP TABLE IF EXISTS `analytics`.`orders__stg_"))
}

func TestBuilder_Run_IncrementalMerge(t *testing.T) {
	adapter := &fakeAdapter{
		relation:    existingTable("delta", typing.NewColumn("id", "bigint"), typing.NewColumn("amount", "double")),
		stagingCols: []typing.Column{typing.NewColumn("id", "bigint"), typing.NewColumn("amount", "double")},
	}
	model := models.Model{
		Name: "orders",
		SQL:  "SELECT * FROM src.orders",
		Config: models.Config{
			FileFormat:          "delta",
			IncrementalStrategy: models.StrategyMerge,
			UniqueKey:           []string{"id"},
		},
	}

	result, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
	require.NoError(t, err)
	assert.Equal(t, BuildModeIncremental, result.Mode)
	require.Len(t, adapter.queries, 4)
	assert.True(t, strings.HasPrefix(adapter.queries[1], "MERGE INTO `analytics`.`orders` tgt USING `orders__stg_"))
	assert.Contains(t, adapter.queries[1], "ON tgt.`id` = stg.`id`")
	assert.Contains(t, adapter.queries[1], "WHEN MATCHED THEN UPDATE SET tgt.`id` = stg.`id`, tgt.`amount` = stg.`amount`")
	assert.Contains(t, adapter.queries[1], "WHEN NOT MATCHED THEN INSERT (`id`, `amount`) VALUES (stg.`id`, stg.`amount`)")
}

func TestBuilder_Run_InsertOverwriteSetsDynamicMode(t *testing.T) {
	adapter := &fakeAdapter{
		relation:    existingTable("parquet", typing.NewColumn("id", "bigint")),
		stagingCols: []typing.Column{typing.NewColumn("id", "bigint")},
	}
	model := models.Model{
		Name: "orders",
		SQL:  "SELECT * FROM src.orders",
		Config: models.Config{
			IncrementalStrategy: models.StrategyInsertOverwrite,
			PartitionBy:         []string{"order_date"},
		},
	}

	_, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
	require.NoError(t, err)
	require.NotEmpty(t, adapter.queries)
	assert.Equal(t, "SET spark.sql.sources.partitionOverwriteMode = DYNAMIC", adapter.queries[0])
	assert.True(t, strings.HasPrefix(adapter.queries[2], "INSERT OVERWRITE TABLE `analytics`.`orders` SELECT `id` FROM `orders__stg_"))
}

func TestBuilder_Run_Hooks(t *testing.T) {
	adapter := &fakeAdapter{}
	model := models.Model{
		Name: "orders",
		SQL:  "SELECT * FROM src.orders",
		Config: models.Config{
			PreHooks:  []string{"SET spark.sql.shuffle.partitions = 64"},
			PostHooks: []string{"OPTIMIZE `analytics`.`orders`"},
		},
	}

	_, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"SET spark.sql.shuffle.partitions = 64",
		"CREATE TABLE `analytics`.`orders` USING parquet AS SELECT * FROM src.orders",
		"OPTIMIZE `analytics`.`orders`",
	}, adapter.queries)
}

func TestBuilder_Run_Grants(t *testing.T) {
	{
		// Fresh table, grants are applied without inspecting the current state.
		adapter := &fakeAdapter{}
		model := models.Model{
			Name:   "orders",
			SQL:    "SELECT * FROM src.orders",
			Config: models.Config{Grants: map[string][]string{"select": {"reporters"}}},
		}

		_, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"CREATE TABLE `analytics`.`orders` USING parquet AS SELECT * FROM src.orders",
			"GRANT SELECT ON TABLE `analytics`.`orders` TO `reporters`",
		}, adapter.queries)
	}
	{
		// Incremental run diffs the standing grants and revokes the stale one.
		adapter := &fakeAdapter{
			relation:    existingTable("parquet", typing.NewColumn("id", "bigint")),
			stagingCols: []typing.Column{typing.NewColumn("id", "bigint")},
			rowsByPrefix: map[string][]sqllib.Row{
				"SHOW GRANTS": {
					{"principal": "reporters", "action_type": "SELECT"},
					{"principal": "interns", "action_type": "SELECT"},
				},
			},
		}
		model := models.Model{
			Name:   "orders",
			SQL:    "SELECT * FROM src.orders",
			Config: models.Config{Grants: map[string][]string{"select": {"reporters"}}},
		}

		_, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
		require.NoError(t, err)
		assert.Contains(t, adapter.queries, "SHOW GRANTS ON TABLE `analytics`.`orders`")
		assert.Contains(t, adapter.queries, "REVOKE SELECT ON TABLE `analytics`.`orders` FROM `interns`")
		assert.NotContains(t, adapter.queries, "GRANT SELECT ON TABLE `analytics`.`orders` TO `reporters`")
	}
	{
		// Full refresh skips the revoke pass entirely.
		adapter := &fakeAdapter{relation: existingTable("parquet")}
		model := models.Model{
			Name:   "orders",
			SQL:    "SELECT * FROM src.orders",
			Config: models.Config{Grants: map[string][]string{"select": {"reporters"}}},
		}

		_, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{FullRefresh: true})
		require.NoError(t, err)
		assert.NotContains(t, adapter.queries, "SHOW GRANTS ON TABLE `analytics`.`orders`")
		assert.Contains(t, adapter.queries, "GRANT SELECT ON TABLE `analytics`.`orders` TO `reporters`")
	}
	{
		// No grants configured and no revoke pass, nothing is issued.
		adapter := &fakeAdapter{}
		model := models.Model{Name: "orders", SQL: "SELECT * FROM src.orders"}

		_, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
		require.NoError(t, err)
		assert.Len(t, adapter.queries, 1)
	}
}

func TestBuilder_Run_PersistDocs(t *testing.T) {
	adapter := &fakeAdapter{
		relation:    existingTable("parquet", typing.NewColumn("id", "bigint")),
		stagingCols: []typing.Column{typing.NewColumn("id", "bigint")},
	}
	model := models.Model{
		Name:        "orders",
		SQL:         "SELECT * FROM src.orders",
		Description: "Orders fact table",
		Columns: []models.ColumnDoc{
			{Name: "id", Description: "Order primary key"},
			{Name: "amount"},
		},
		Config: models.Config{PersistDocs: models.PersistDocs{Relation: true, Columns: true}},
	}

	_, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
	require.NoError(t, err)
	assert.Contains(t, adapter.queries, "COMMENT ON TABLE `analytics`.`orders` IS 'Orders fact table'")
	assert.Contains(t, adapter.queries, "ALTER TABLE `analytics`.`orders` ALTER COLUMN `id` COMMENT 'Order primary key'")
	for _, query := range adapter.queries {
		assert.NotContains(t, query, "ALTER COLUMN `amount`")
	}
}

func TestBuilder_Run_StagingCleanupIsNonFatal(t *testing.T) {
	adapter := &fakeAdapter{
		relation:    existingTable("parquet", typing.NewColumn("id", "bigint")),
		stagingCols: []typing.Column{typing.NewColumn("id", "bigint")},
		execErrs:    map[string]error{"DROP VIEW IF EXISTS `orders__stg_": assert.AnError},
	}
	model := models.Model{Name: "orders", SQL: "SELECT * FROM src.orders"}

	result, err := testBuilder(adapter).Run(context.Background(), model, RunArgs{})
	require.NoError(t, err)
	assert.Equal(t, BuildModeIncremental, result.Mode)
}
