package build

import (
	"context"
	"fmt"
	"log/slog"
)

// SweepStaging drops expired staging objects left behind by crashed runs.
func (b *Builder) SweepStaging(ctx context.Context) error {
	slog.Info("Looking to see if there are any expired staging objects to delete...")
	dialect := b.adapter.Dialect()
	rows, err := b.adapter.QueryContext(ctx, dialect.BuildShowTablesQuery(b.target.Schema))
	if err != nil {
		return fmt.Errorf("failed to list tables in schema %q: %w", b.target.Schema, err)
	}

	for _, row := range rows {
		tableName := rowString(row, "tableName", "table_name")
		if tableName == "" || !ShouldSweepFromName(tableName) {
			continue
		}

		slog.Info("Dropping expired staging object", slog.String("tableName", tableName))
		tableID := b.adapter.IdentifierFor(b.target.Database, b.target.Schema, tableName)
		if err = b.adapter.ExecContext(ctx, dialect.BuildDropTableQuery(tableID)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", tableID.FullyQualifiedName(), err)
		}
	}

	return nil
}
