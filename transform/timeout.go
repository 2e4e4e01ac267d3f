package transform

import "fmt"

// TimeoutTransformerName is the fixed callback name setTimeout installs,
// per §4.7.
const TimeoutTransformerName = "timeout"

// MariaDBStatementTimeout renders the "SET STATEMENT max_statement_time = <s>
// FOR <sql>" rewrite of §4.3. ms is milliseconds; MariaDB's
// max_statement_time takes seconds (fractional allowed).
func MariaDBStatementTimeout(ms int) Callback {
	seconds := float64(ms) / 1000.0
	return func(sqlText string) string {
		return fmt.Sprintf("SET STATEMENT max_statement_time=%g FOR %s", seconds, sqlText)
	}
}

// PostgresStatementTimeoutSQL renders the connection-level "SET
// statement_timeout = <ms>" statement Postgres uses instead of rewriting
// the query text, per §4.4's "Timeouts are set via adapter-level events
// rather than statement rewriting".
func PostgresStatementTimeoutSQL(ms int) string {
	return fmt.Sprintf("SET statement_timeout = %d", ms)
}
