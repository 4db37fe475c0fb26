package postgres

import (
	"fmt"

	"github.com/lib/pq"
)

// tableRef builds a schema-qualified table reference. Schema names reach
// this point only after the tenant directory has vetted them against the
// allowlist, and QuoteIdentifier guards against quoting issues on top.
func tableRef(schema, table string) string {
	return fmt.Sprintf("%s.%s", pq.QuoteIdentifier(schema), table)
}
