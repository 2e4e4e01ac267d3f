// Package dialect implements the SQL Dialect Core of §4.2: the shared base
// both backends specialize for condition compilation, projection,
// permissions predicates, table naming, and row materialization.
package dialect

import "strings"

// Dialect is the small set of backend-specific knobs the shared compiler in
// this package needs. mariadb.Dialect and postgres.Dialect implement it;
// everything else in this package is 100% shared.
type Dialect interface {
	// QuoteIdentifier quotes a single identifier with the backend's quote
	// character (backtick for MariaDB, double-quote for Postgres).
	QuoteIdentifier(name string) string

	// Placeholder returns the bind placeholder for the n'th parameter
	// (1-based): "?" for MariaDB regardless of n, "$n" for Postgres.
	Placeholder(n int) string

	// LikeOperator returns the pattern-match operator for startsWith/
	// endsWith/contains (§4.2): "LIKE" for MariaDB, "ILIKE" for Postgres's
	// case-insensitive matching (§4.4).
	LikeOperator() string

	// FulltextPredicate renders a backend-specific MATCH/to_tsvector
	// predicate against column, binding value at placeholder.
	FulltextPredicate(qualifiedColumn string, placeholder string) string

	// ArrayContainsPredicate renders a backend-specific array/JSON
	// containment predicate.
	ArrayContainsPredicate(qualifiedColumn string, placeholder string) string

	// CanonicalizeFulltextValue sanitizes a search() value per §4.2's
	// "Fulltext value canonicalization".
	CanonicalizeFulltextValue(raw string) string
}

// ReservedAliases maps $-prefixed document fields to their underscore
// column names, per §4.2's "Attribute aliases are rewritten before
// compilation".
var ReservedAliases = map[string]string{
	"$id":         "_uid",
	"$internalId": "_id",
	"$tenant":     "_tenant",
	"$createdAt":  "_createdAt",
	"$updatedAt":  "_updatedAt",
}

// ResolveAttribute rewrites a document-facing attribute name to its
// underlying column name.
func ResolveAttribute(attr string) string {
	if col, ok := ReservedAliases[attr]; ok {
		return col
	}
	return attr
}

// wildcardEscapeSet is the fixed escape set of §4.2: "% _ [ ] ^ - . * + ? ( ) { } |".
var wildcardEscapeSet = []byte{'%', '_', '[', ']', '^', '-', '.', '*', '+', '?', '(', ')', '{', '}', '|'}

// EscapeWildcards backslash-escapes every LIKE/ILIKE metacharacter in s, per
// §4.2's wildcard escape set and §8 law 10 (startsWith(s) matches exactly
// the rows beginning with literal s).
func EscapeWildcards(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		for _, esc := range wildcardEscapeSet {
			if c == esc {
				b.WriteByte('\\')
				break
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// StartsWithPattern, EndsWithPattern, ContainsPattern implement the value
// transforms of §4.2.
func StartsWithPattern(v string) string { return EscapeWildcards(v) + "%" }
func EndsWithPattern(v string) string   { return "%" + EscapeWildcards(v) }
func ContainsPattern(v string) string   { return "%" + EscapeWildcards(v) + "%" }
