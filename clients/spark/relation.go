package spark

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjord-labs/materialize/clients/spark/dialect"
	sqllib "github.com/fjord-labs/materialize/lib/sql"
	"github.com/fjord-labs/materialize/lib/typing"
)

// LoadRelation returns the current state of the target relation, or nil when it
// does not exist.
func (s Store) LoadRelation(ctx context.Context, tableID sqllib.TableIdentifier) (*sqllib.Relation, error) {
	_dialect := dialect.SparkDialect{}
	rows, err := s.QueryContext(ctx, _dialect.BuildDescribeTableQuery(tableID))
	if err != nil {
		if _dialect.IsTableDoesNotExistErr(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to describe %s: %w", tableID.FullyQualifiedName(), err)
	}

	cols, props := parseDescribeRows(rows)
	relation := &sqllib.Relation{
		ID:       tableID,
		Type:     sqllib.RelationTypeTable,
		Provider: props["Provider"],
		Columns:  cols,
	}

	if strings.EqualFold(props["Type"], "VIEW") {
		relation.Type = sqllib.RelationTypeView
	}

	return relation, nil
}

func (s Store) LoadStagingColumns(ctx context.Context, stagingName string) ([]typing.Column, error) {
	rows, err := s.QueryContext(ctx, dialect.SparkDialect{}.BuildDescribeStagingViewQuery(stagingName))
	if err != nil {
		return nil, fmt.Errorf("failed to describe staging view %s: %w", stagingName, err)
	}

	cols, _ := parseDescribeRows(rows)
	return cols, nil
}

// parseDescribeRows splits DESCRIBE TABLE [EXTENDED] output into the column
// section and the detailed-information key/value section. The partition
// section repeats column names, so columns are de-duplicated by name.
func parseDescribeRows(rows []sqllib.Row) ([]typing.Column, map[string]string) {
	var cols []typing.Column
	seen := make(map[string]bool)
	props := make(map[string]string)

	var inDetailedSection bool
	for _, row := range rows {
		colName := rowString(row, "col_name")
		if colName == "" {
			continue
		}

		if strings.HasPrefix(colName, "#") {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(colName, "#")), "Detailed Table Information") {
				inDetailedSection = true
			}

			continue
		}

		if inDetailedSection {
			props[colName] = rowString(row, "data_type")
			continue
		}

		if seen[strings.ToLower(colName)] {
			continue
		}

		seen[strings.ToLower(colName)] = true
		cols = append(cols, typing.Column{
			Name:     colName,
			DataType: rowString(row, "data_type"),
			Comment:  rowString(row, "comment"),
		})
	}

	return cols, props
}

func rowString(row sqllib.Row, key string) string {
	value, isOk := row[key]
	if !isOk || value == nil {
		return ""
	}

	return fmt.Sprint(value)
}
