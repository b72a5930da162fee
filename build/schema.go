package build

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sqllib "github.com/fjord-labs/materialize/lib/sql"
	"github.com/fjord-labs/materialize/lib/typing"
	"github.com/fjord-labs/materialize/models"
)

// SchemaChangeError is raised when on_schema_change is "fail" and the staged
// query no longer matches the target table.
type SchemaChangeError struct {
	TableID    sqllib.TableIdentifier
	SourceOnly []typing.Column
	TargetOnly []typing.Column
}

func (s SchemaChangeError) Error() string {
	return fmt.Sprintf("schema changed on %s and on_schema_change is set to fail, new columns: %v, removed columns: %v",
		s.TableID.FullyQualifiedName(), typing.ColumnNames(s.SourceOnly), typing.ColumnNames(s.TargetOnly))
}

// reconcileSchema adjusts the target table to the staged query's columns per
// the configured policy and returns the final target column set.
func (b *Builder) reconcileSchema(ctx context.Context, policy models.OnSchemaChange, tableID sqllib.TableIdentifier, targetCols []typing.Column, stagingName string, isDelta bool) ([]typing.Column, error) {
	stagingCols, err := b.adapter.LoadStagingColumns(ctx, stagingName)
	if err != nil {
		return nil, err
	}

	sourceOnly, targetOnly := typing.Diff(stagingCols, targetCols)
	if len(sourceOnly) == 0 && len(targetOnly) == 0 {
		return targetCols, nil
	}

	dialect := b.adapter.Dialect()
	switch policy {
	case models.OnSchemaChangeIgnore:
		// Insert statements select the intersection, so drift is benign here.
		return intersect(targetCols, stagingCols), nil
	case models.OnSchemaChangeFail:
		return nil, SchemaChangeError{TableID: tableID, SourceOnly: sourceOnly, TargetOnly: targetOnly}
	case models.OnSchemaChangeAppend:
		if len(sourceOnly) > 0 {
			if err := b.adapter.ExecContext(ctx, dialect.BuildAddColumnsQuery(tableID, sourceOnly)); err != nil {
				return nil, fmt.Errorf("failed to add columns: %w", err)
			}
		}

		return append(targetCols, sourceOnly...), nil
	case models.OnSchemaChangeSync:
		// Only delta can drop columns; everything else has to fail loudly
		// instead of silently diverging.
		if len(targetOnly) > 0 && !isDelta {
			return nil, fmt.Errorf("on_schema_change sync_all_columns needs to drop columns %v but file format is not delta", typing.ColumnNames(targetOnly))
		}

		if len(sourceOnly) > 0 {
			if err := b.adapter.ExecContext(ctx, dialect.BuildAddColumnsQuery(tableID, sourceOnly)); err != nil {
				return nil, fmt.Errorf("failed to add columns: %w", err)
			}
		}

		if len(targetOnly) > 0 {
			if err := b.adapter.ExecContext(ctx, dialect.BuildDropColumnsQuery(tableID, targetOnly)); err != nil {
				return nil, fmt.Errorf("failed to drop columns: %w", err)
			}
		}

		slog.Info("Synced schema changes onto target",
			slog.String("table", tableID.FullyQualifiedName()),
			slog.Any("addedColumns", typing.ColumnNames(sourceOnly)),
			slog.Any("droppedColumns", typing.ColumnNames(targetOnly)),
		)

		return stagingCols, nil
	default:
		return nil, fmt.Errorf("unknown on_schema_change policy: %q", policy)
	}
}

// intersect returns target columns that also exist in the staged query,
// preserving target order.
func intersect(targetCols []typing.Column, stagingCols []typing.Column) []typing.Column {
	stagingNames := make(map[string]bool, len(stagingCols))
	for _, col := range stagingCols {
		stagingNames[strings.ToLower(col.Name)] = true
	}

	var out []typing.Column
	for _, col := range targetCols {
		if stagingNames[strings.ToLower(col.Name)] {
			out = append(out, col)
		}
	}

	return out
}
