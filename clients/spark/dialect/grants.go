package dialect

import (
	"fmt"
	"strings"

	"github.com/fjord-labs/materialize/lib/sql"
)

func (SparkDialect) BuildShowGrantsQuery(tableID sql.TableIdentifier) string {
	return "SHOW GRANTS ON TABLE " + tableID.FullyQualifiedName()
}

func (d SparkDialect) BuildGrantQuery(tableID sql.TableIdentifier, privilege string, grantee string) string {
	return fmt.Sprintf("GRANT %s ON TABLE %s TO %s", strings.ToUpper(privilege), tableID.FullyQualifiedName(), d.QuoteIdentifier(grantee))
}

func (d SparkDialect) BuildRevokeQuery(tableID sql.TableIdentifier, privilege string, grantee string) string {
	return fmt.Sprintf("REVOKE %s ON TABLE %s FROM %s", strings.ToUpper(privilege), tableID.FullyQualifiedName(), d.QuoteIdentifier(grantee))
}
