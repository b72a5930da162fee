package livy

import (
	"github.com/fjord-labs/materialize/clients/spark/dialect"
)

func shouldRetry(err error) bool {
	if err == nil {
		return false
	}

	_dialect := dialect.SparkDialect{}
	if _dialect.IsTableDoesNotExistErr(err) {
		return false
	} else if _dialect.IsColumnAlreadyExistsErr(err) {
		return false
	}

	return true
}
