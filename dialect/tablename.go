package dialect

import (
	"strconv"
	"strings"

	"github.com/jinzhu/inflection"
)

// BuildTableName composes the physical table name for a logical collection,
// per §4.2's "Table name composition": <quote>database<quote>.<quote>prefix_name<quote>,
// shared by both backends since each passes its own QuoteIdentifier. name is
// filtered upstream (§4.1); pluralization mirrors the teacher's
// getMySQLTableName/getPostgresTableName helpers, which pluralize entity
// names via jinzhu/inflection.
func BuildTableName(quote func(string) string, database, prefix, name string, pluralize bool) string {
	base := strings.ToLower(name)
	if pluralize {
		base = inflection.Plural(base)
	}
	physical := prefix + "_" + base
	return quote(database) + "." + quote(physical)
}

// PermsTableName derives the sibling permissions table name for a data
// table name (without quoting/database qualification), per §3's "two
// tables" rule.
func PermsTableName(prefix, name string) string {
	return prefix + "_" + strings.ToLower(name) + "_perms"
}

// JunctionTableName derives a many-to-many junction table name from the two
// parent internal ids, per §4.8: "_<parentInternalId>_<childInternalId>".
func JunctionTableName(prefix string, parentInternalID, childInternalID int64) string {
	return prefix + "__" + strconv.FormatInt(parentInternalID, 10) + "_" + strconv.FormatInt(childInternalID, 10)
}
