package sqlvalidate

import (
	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// ValidatePostgreSQL parses sqlText with pg_query_go, the same grammar the
// teacher used for validator.ValidatePostgreSQL.
func ValidatePostgreSQL(sqlText string) error {
	_, err := pg_query.Parse(sqlText)
	return err
}
