package typing

import "strings"

// Diff compares a source column set (the staged query result) against a target
// column set (the existing table). Columns are matched by lowercased name;
// data type changes on matching columns are not treated as drift because Spark
// cannot alter a column's type in place.
func Diff(source []Column, target []Column) (sourceOnly []Column, targetOnly []Column) {
	targetMap := buildColumnMap(target)
	sourceMap := buildColumnMap(source)

	for _, col := range source {
		if _, isOk := targetMap[strings.ToLower(col.Name)]; !isOk {
			sourceOnly = append(sourceOnly, col)
		}
	}

	for _, col := range target {
		if _, isOk := sourceMap[strings.ToLower(col.Name)]; !isOk {
			targetOnly = append(targetOnly, col)
		}
	}

	return sourceOnly, targetOnly
}
