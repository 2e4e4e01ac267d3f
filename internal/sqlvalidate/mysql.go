// Package sqlvalidate parses generated SQL back through real grammars so
// tests catch malformed DDL/DML before it ever reaches a live server.
package sqlvalidate

import (
	"github.com/xwb1989/sqlparser"
)

// ValidateMySQL parses sqlText with sqlparser, the same grammar the teacher
// used for validator.ValidateMySQL, returning a non-nil error for anything
// that isn't syntactically valid MySQL/MariaDB.
func ValidateMySQL(sqlText string) error {
	_, err := sqlparser.Parse(sqlText)
	return err
}
