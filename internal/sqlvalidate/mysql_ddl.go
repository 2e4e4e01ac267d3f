package sqlvalidate

import (
	tidbparser "github.com/pingcap/tidb/parser"
	_ "github.com/pingcap/tidb/parser/test_driver"
)

// ValidateMySQLDDL parses sqlText with pingcap/tidb's parser, which tracks
// MySQL's DDL grammar (inline index/constraint clauses, column options)
// more closely than xwb1989/sqlparser's DML-oriented grammar. Used for the
// CREATE TABLE/INDEX and ALTER TABLE statements mariadb/ddl.go generates.
func ValidateMySQLDDL(sqlText string) error {
	p := tidbparser.New()
	_, _, err := p.Parse(sqlText, "", "")
	return err
}
