package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fjord-labs/materialize/lib/sql"
	"github.com/fjord-labs/materialize/lib/typing"
)

func TestSparkDialect_BuildCreateTableAsQuery(t *testing.T) {
	tableID := NewTableIdentifier("", "analytics", "orders")
	{
		// Plain parquet table
		assert.Equal(t,
			"CREATE TABLE `analytics`.`orders` USING parquet AS SELECT * FROM raw.orders",
			SparkDialect{}.BuildCreateTableAsQuery(tableID, "SELECT * FROM raw.orders", sql.CreateTableOpts{FileFormat: "parquet"}),
		)
	}
	{
		// Delta replace
		assert.Equal(t,
			"CREATE OR REPLACE TABLE `analytics`.`orders` USING delta AS SELECT * FROM raw.orders",
			SparkDialect{}.BuildCreateTableAsQuery(tableID, "SELECT * FROM raw.orders", sql.CreateTableOpts{OrReplace: true, FileFormat: "delta"}),
		)
	}
	{
		// Partitioned, clustered, external with a comment
		assert.Equal(t,
			"CREATE TABLE `analytics`.`orders` USING parquet PARTITIONED BY (`dt`) CLUSTER BY (`customer_id`) LOCATION '/mnt/lake/orders' COMMENT 'Order facts' AS SELECT 1",
			SparkDialect{}.BuildCreateTableAsQuery(tableID, "SELECT 1", sql.CreateTableOpts{
				FileFormat:   "parquet",
				PartitionBy:  []string{"dt"},
				ClusterBy:    []string{"customer_id"},
				LocationRoot: "/mnt/lake",
				Comment:      "Order facts",
			}),
		)
	}
}

func TestSparkDialect_BuildCreateStagingViewQuery(t *testing.T) {
	assert.Equal(t,
		"CREATE OR REPLACE TEMPORARY VIEW `orders__stg_abc12` AS SELECT * FROM raw.orders",
		SparkDialect{}.BuildCreateStagingViewQuery("orders__stg_abc12", "SELECT * FROM raw.orders"),
	)
}

func TestSparkDialect_BuildDropQueries(t *testing.T) {
	tableID := NewTableIdentifier("", "analytics", "orders")
	assert.Equal(t, "DROP TABLE IF EXISTS `analytics`.`orders`", SparkDialect{}.BuildDropTableQuery(tableID))
	assert.Equal(t, "DROP VIEW IF EXISTS `analytics`.`orders`", SparkDialect{}.BuildDropViewQuery(tableID))
	assert.Equal(t, "DROP VIEW IF EXISTS `orders__stg_abc12`", SparkDialect{}.BuildDropStagingViewQuery("orders__stg_abc12"))
}

func TestSparkDialect_BuildShowTablesQuery(t *testing.T) {
	assert.Equal(t, "SHOW TABLES IN `analytics`", SparkDialect{}.BuildShowTablesQuery("analytics"))
}

func TestSparkDialect_BuildDescribeQueries(t *testing.T) {
	tableID := NewTableIdentifier("", "analytics", "orders")
	assert.Equal(t, "DESCRIBE TABLE EXTENDED `analytics`.`orders`", SparkDialect{}.BuildDescribeTableQuery(tableID))
	assert.Equal(t, "DESCRIBE TABLE `orders__stg_abc12`", SparkDialect{}.BuildDescribeStagingViewQuery("orders__stg_abc12"))
}

func TestSparkDialect_BuildAddColumnsQuery(t *testing.T) {
	tableID := NewTableIdentifier("", "analytics", "orders")
	assert.Equal(t,
		"ALTER TABLE `analytics`.`orders` ADD COLUMNS (`created_at` timestamp, `status` string)",
		SparkDialect{}.BuildAddColumnsQuery(tableID, []typing.Column{
			typing.NewColumn("created_at", "timestamp"),
			typing.NewColumn("status", "string"),
		}),
	)
}

func TestSparkDialect_BuildDropColumnsQuery(t *testing.T) {
	tableID := NewTableIdentifier("", "analytics", "orders")
	assert.Equal(t,
		"ALTER TABLE `analytics`.`orders` DROP COLUMNS (`legacy`)",
		SparkDialect{}.BuildDropColumnsQuery(tableID, []typing.Column{typing.NewColumn("legacy", "string")}),
	)
}

func TestSparkDialect_BuildCommentQueries(t *testing.T) {
	tableID := NewTableIdentifier("", "analytics", "orders")
	assert.Equal(t,
		"COMMENT ON TABLE `analytics`.`orders` IS 'Order facts'",
		SparkDialect{}.BuildCommentOnTableQuery(tableID, "Order facts"),
	)
	assert.Equal(t,
		"ALTER TABLE `analytics`.`orders` ALTER COLUMN `id` COMMENT 'Primary key'",
		SparkDialect{}.BuildAlterColumnCommentQuery(tableID, "id", "Primary key"),
	)
}

func TestSparkDialect_BuildSetConfigQuery(t *testing.T) {
	assert.Equal(t,
		"SET spark.sql.sources.partitionOverwriteMode = DYNAMIC",
		SparkDialect{}.BuildSetConfigQuery("spark.sql.sources.partitionOverwriteMode", "DYNAMIC"),
	)
}
