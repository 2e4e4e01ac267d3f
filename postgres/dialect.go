// Package postgres implements the PostgreSQL backend of §4.4.
package postgres

import (
	"regexp"
	"strconv"
	"strings"
)

// Dialect implements dialect.Dialect for Postgres: double-quote identifier
// quoting, "$N" positional placeholders, to_tsvector/websearch_to_tsquery
// fulltext, and "@>" JSONB containment.
type Dialect struct{}

func (Dialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (Dialect) LikeOperator() string { return "ILIKE" }

func (Dialect) FulltextPredicate(qualifiedColumn, placeholder string) string {
	return "to_tsvector(regexp_replace(" + qualifiedColumn + `, '[^\w]+', ' ', 'g')) @@ websearch_to_tsquery(` + placeholder + ")"
}

func (Dialect) ArrayContainsPredicate(qualifiedColumn, placeholder string) string {
	return qualifiedColumn + " @> " + placeholder
}

var fulltextOperatorChars = regexp.MustCompile(`[@+\-*)(<>~"]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// CanonicalizeFulltextValue implements §4.2's fulltext canonicalization for
// Postgres: strip operator chars, collapse whitespace; if the original was
// quoted, emit quoted; else split on whitespace and join with " or " to
// build a websearch_to_tsquery-friendly input.
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
	return strings.Join(strings.Fields(body), " or ")
}
