package livy

import (
	sqllib "github.com/fjord-labs/materialize/lib/sql"
)

// Rows converts a completed statement's JSON output into name-keyed rows.
// Statements that return no result set (DDL/DML) yield no rows.
func (g GetStatementResponse) Rows() ([]sqllib.Row, error) {
	result, isOk, err := g.result()
	if err != nil {
		return nil, err
	}

	if !isOk {
		return nil, nil
	}

	var rows []sqllib.Row
	for _, values := range result.Data {
		row := make(sqllib.Row, len(result.Schema.Fields))
		for i, field := range result.Schema.Fields {
			if i < len(values) {
				row[field.Name] = values[i]
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}
