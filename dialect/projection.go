package dialect

import "strings"

// reservedProjection replaces $-prefixed document fields with their
// underscore column names in projections, per §4.2's Projection rule
// ("Replace $internalId, $createdAt, $updatedAt with their underscore
// names"). $id/$permissions are always added separately, never selected
// explicitly by name.
var reservedProjection = map[string]string{
	"$internalId": "_id",
	"$createdAt":  "_createdAt",
	"$updatedAt":  "_updatedAt",
	"$tenant":     "_tenant",
}

// BuildProjection renders the SELECT column list of §4.2: if selections is
// empty or contains "*", select "*"; otherwise quote and qualify each
// column, always including _uid and _permissions.
func BuildProjection(d Dialect, selections []string, tableAlias string) string {
	if len(selections) == 0 {
		return qualifiedStar(tableAlias)
	}
	for _, s := range selections {
		if s == "*" {
			return qualifiedStar(tableAlias)
		}
	}

	seen := map[string]bool{"_uid": true, "_permissions": true}
	cols := []string{
		qualifyQuoted(d, tableAlias, "_uid"),
		qualifyQuoted(d, tableAlias, "_permissions"),
	}
	for _, s := range selections {
		col := s
		if renamed, ok := reservedProjection[s]; ok {
			col = renamed
		}
		if seen[col] {
			continue
		}
		seen[col] = true
		cols = append(cols, qualifyQuoted(d, tableAlias, col))
	}
	return strings.Join(cols, ", ")
}

func qualifiedStar(tableAlias string) string {
	if tableAlias == "" {
		return "*"
	}
	return tableAlias + ".*"
}

func qualifyQuoted(d Dialect, tableAlias, column string) string {
	q := d.QuoteIdentifier(column)
	if tableAlias == "" {
		return q
	}
	return tableAlias + "." + q
}
