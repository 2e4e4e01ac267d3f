// Package mariadb implements the MariaDB/MySQL-family backend of §4.3.
package mariadb

import (
	"regexp"
	"strings"
)

// Dialect implements dialect.Dialect for MariaDB: backtick identifier
// quoting, "?" positional placeholders regardless of position, MATCH()
// AGAINST() fulltext, and JSON_OVERLAPS() array containment.
type Dialect struct{}

func (Dialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) LikeOperator() string { return "LIKE" }

func (Dialect) FulltextPredicate(qualifiedColumn, placeholder string) string {
	return "MATCH(" + qualifiedColumn + ") AGAINST (" + placeholder + " IN BOOLEAN MODE)"
}

func (Dialect) ArrayContainsPredicate(qualifiedColumn, placeholder string) string {
	return "JSON_OVERLAPS(" + qualifiedColumn + ", " + placeholder + ")"
}

var fulltextOperatorChars = regexp.MustCompile(`[@+\-*)(<>~"]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// CanonicalizeFulltextValue implements §4.2's fulltext canonicalization for
// MariaDB: strip operator chars, collapse whitespace; if the original was
// quoted, emit quoted; else append a trailing "*" so partial-word matches
// behave like the rest of the corpus's boolean-mode search helpers.
func (Dialect) CanonicalizeFulltextValue(raw string) string {
	trimmed := strings.TrimSpace(raw)
	quoted := strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) && len(trimmed) >= 2

	body := trimmed
	if quoted {
		body = trimmed[1 : len(trimmed)-1]
	}
	body = fulltextOperatorChars.ReplaceAllString(body, "")
	body = whitespaceRun.ReplaceAllString(strings.TrimSpace(body), " ")

	if quoted {
		return `"` + body + `"`
	}
	if body == "" {
		return body
	}
	return body + "*"
}
