package mariadb

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"github.com/nuvix/sqldoc/adapter"
	"github.com/nuvix/sqldoc/dialect"
)

const defaultMaxVarchar = 16381

// columnType implements §4.3's type mapping ladder.
func (a *Adapter) columnType(attr adapter.Attribute) string {
	if attr.Array {
		return "JSON"
	}
	switch attr.Type {
	case adapter.TypeString:
		max := a.maxVarcharLimit()
		switch {
		case attr.Size <= max:
			return fmt.Sprintf("VARCHAR(%d)", attr.Size)
		case attr.Size <= 65535:
			return "TEXT"
		case attr.Size <= 16777215:
			return "MEDIUMTEXT"
		default:
			return "LONGTEXT"
		}
	case adapter.TypeInteger:
		width := "INT"
		if attr.Size >= 8 {
			width = "BIGINT"
		}
		if !attr.Signed {
			width += " UNSIGNED"
		}
		return width
	case adapter.TypeFloat:
		return "DOUBLE"
	case adapter.TypeBoolean:
		return "TINYINT(1)"
	case adapter.TypeDatetime:
		return "DATETIME(3)"
	case adapter.TypeRelationship:
		return "VARCHAR(255)"
	default:
		return "TEXT"
	}
}

func (a *Adapter) maxVarcharLimit() int {
	if a.cfg.MaxVarCharLimit > 0 {
		return a.cfg.MaxVarCharLimit
	}
	return defaultMaxVarchar
}

// GetMaxVarcharLength, GetMaxIndexLength, GetSupportForCastIndexArray
// implement §4.1's limit/support flags.
func (a *Adapter) GetMaxVarcharLength() int { return a.maxVarcharLimit() }
func (a *Adapter) GetMaxIndexLength() int   { return 3072 }

// GetSupportForCastIndexArray is false for MariaDB per §4.3: array-typed
// index entries are not supported; values are inserted as JSON instead.
func (a *Adapter) GetSupportForCastIndexArray() bool { return false }

func (a *Adapter) quote(name string) string { return a.dialect.QuoteIdentifier(name) }

func (a *Adapter) dataTable(name string) string {
	return dialect.BuildTableName(a.quote, a.cfg.Database, a.cfg.Prefix, name, true)
}

func (a *Adapter) permsTable(name string) string {
	plural := inflection.Plural(strings.ToLower(name))
	return a.quote(a.cfg.Database) + "." + a.quote(dialect.PermsTableName(a.cfg.Prefix, plural))
}

func buildColumnDef(quote func(string) string, name, sqlType string, notNull bool) string {
	def := quote(name) + " " + sqlType
	if notNull {
		def += " NOT NULL"
	}
	return def
}

// buildCreateCollectionSQL renders the CREATE TABLE for the data table and
// its _perms sibling, per §4.3 and §6's persisted schema layout.
func (a *Adapter) buildCreateCollectionSQL(name string, attrs []adapter.Attribute, indexes []adapter.Index) (dataSQL, permsSQL string, indexSQLs []string) {
	q := a.quote
	var cols []string
	cols = append(cols, q("_id")+" BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY")
	cols = append(cols, q("_uid")+" VARCHAR(255) NOT NULL")
	if a.cfg.SharedTables {
		cols = append(cols, q("_tenant")+" BIGINT DEFAULT NULL")
	}
	cols = append(cols, q("_createdAt")+" DATETIME(3) DEFAULT NULL")
	cols = append(cols, q("_updatedAt")+" DATETIME(3) DEFAULT NULL")
	cols = append(cols, q("_permissions")+" JSON DEFAULT NULL")

	for _, attr := range attrs {
		cols = append(cols, buildColumnDef(q, attr.ID, a.columnType(attr), attr.Required))
	}

	uidKey := []string{q("_uid")}
	if a.cfg.SharedTables {
		uidKey = []string{q("_tenant"), q("_uid")}
	}
	cols = append(cols, fmt.Sprintf("UNIQUE KEY %s (%s)", q("_uid_unique"), strings.Join(uidKey, ", ")))
	cols = append(cols, fmt.Sprintf("KEY %s (%s)", q("_createdAt_idx"), q("_createdAt")))
	cols = append(cols, fmt.Sprintf("KEY %s (%s)", q("_updatedAt_idx"), q("_updatedAt")))
	if a.cfg.SharedTables {
		cols = append(cols, fmt.Sprintf("KEY %s (%s, %s)", q("_tenant_id_idx"), q("_tenant"), q("_id")))
	}

	for _, idx := range indexes {
		cols = append(cols, a.inlineIndexDef(idx))
	}

	table := a.dataTable(name)
	dataSQL = fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))

	permsCols := []string{
		q("_id") + " BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY",
	}
	if a.cfg.SharedTables {
		permsCols = append(permsCols, q("_tenant")+" BIGINT DEFAULT NULL")
	}
	permsCols = append(permsCols,
		q("_type")+" VARCHAR(12) NOT NULL",
		q("_permission")+" VARCHAR(255) NOT NULL",
		q("_document")+" VARCHAR(255) NOT NULL",
	)
	uniqueKey := []string{q("_document")}
	if a.cfg.SharedTables {
		uniqueKey = append(uniqueKey, q("_tenant"))
	}
	uniqueKey = append(uniqueKey, q("_type"), q("_permission"))
	permsCols = append(permsCols, fmt.Sprintf("UNIQUE KEY %s (%s)", q("_perms_unique"), strings.Join(uniqueKey, ", ")))
	permsCols = append(permsCols, fmt.Sprintf("KEY %s (%s, %s)", q("_perms_lookup"), q("_permission"), q("_type")))

	permsSQL = fmt.Sprintf("CREATE TABLE %s (%s)", a.permsTable(name), strings.Join(permsCols, ", "))

	return dataSQL, permsSQL, indexSQLs
}

func (a *Adapter) inlineIndexDef(idx adapter.Index) string {
	q := a.quote
	var cols []string
	if a.cfg.SharedTables && idx.Type != adapter.IndexFulltext {
		cols = append(cols, q("_tenant"))
	}
	for i, attrName := range idx.Attributes {
		col := q(attrName)
		if i < len(idx.Lengths) && idx.Lengths[i] > 0 {
			col = fmt.Sprintf("%s(%d)", col, idx.Lengths[i])
		}
		if i < len(idx.Orders) && idx.Orders[i] != "" {
			col = col + " " + idx.Orders[i]
		}
		cols = append(cols, col)
	}
	kind := "KEY"
	switch idx.Type {
	case adapter.IndexUnique:
		kind = "UNIQUE KEY"
	case adapter.IndexFulltext:
		kind = "FULLTEXT KEY"
	}
	return fmt.Sprintf("%s %s (%s)", kind, q(idx.Name), strings.Join(cols, ", "))
}

// buildDropCollectionSQL drops the data and perms tables atomically with a
// single statement, per §4.3.
func (a *Adapter) buildDropCollectionSQL(name string) string {
	return fmt.Sprintf("DROP TABLE %s, %s", a.dataTable(name), a.permsTable(name))
}

func (a *Adapter) buildCreateAttributeSQL(collection string, attr adapter.Attribute) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", a.dataTable(collection),
		buildColumnDef(a.quote, attr.ID, a.columnType(attr), attr.Required))
}

func (a *Adapter) buildUpdateAttributeSQL(collection, oldID string, attr adapter.Attribute) string {
	return fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", a.dataTable(collection),
		buildColumnDef(a.quote, oldID, a.columnType(attr), attr.Required))
}

func (a *Adapter) buildDeleteAttributeSQL(collection, id string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", a.dataTable(collection), a.quote(id))
}

func (a *Adapter) buildRenameAttributeSQL(collection, oldName, newName, sqlType string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", a.dataTable(collection), a.quote(oldName), a.quote(newName))
}

func (a *Adapter) buildCreateIndexSQL(collection string, idx adapter.Index) string {
	kind := "INDEX"
	switch idx.Type {
	case adapter.IndexUnique:
		kind = "UNIQUE INDEX"
	case adapter.IndexFulltext:
		kind = "FULLTEXT INDEX"
	}
	var cols []string
	if a.cfg.SharedTables && idx.Type != adapter.IndexFulltext {
		cols = append(cols, a.quote("_tenant"))
	}
	for i, attrName := range idx.Attributes {
		col := a.quote(attrName)
		if i < len(idx.Lengths) && idx.Lengths[i] > 0 {
			col = fmt.Sprintf("%s(%d)", col, idx.Lengths[i])
		}
		cols = append(cols, col)
	}
	return fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, a.quote(idx.Name), a.dataTable(collection), strings.Join(cols, ", "))
}

func (a *Adapter) buildDeleteIndexSQL(collection, name string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP INDEX %s", a.dataTable(collection), a.quote(name))
}

func (a *Adapter) buildRenameIndexSQL(collection, oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME INDEX %s TO %s", a.dataTable(collection), a.quote(oldName), a.quote(newName))
}

// buildSizeQuery, buildSizeOnDiskQuery implement the introspection
// supplemented in SPEC_FULL §3.
func (a *Adapter) buildSizeQuery(collection string) (string, []any) {
	table := a.cfg.Prefix + "_" + inflection.Plural(strings.ToLower(collection))
	return "SELECT data_length FROM information_schema.TABLES WHERE table_schema = ? AND table_name = ?", []any{a.cfg.Database, table}
}

func (a *Adapter) buildSizeOnDiskQuery(collection string) (string, []any) {
	table := a.cfg.Prefix + "_" + inflection.Plural(strings.ToLower(collection))
	return "SELECT data_length + index_length FROM information_schema.TABLES WHERE table_schema = ? AND table_name = ?", []any{a.cfg.Database, table}
}
