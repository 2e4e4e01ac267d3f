package postgres

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"github.com/nuvix/sqldoc/adapter"
	"github.com/nuvix/sqldoc/dialect"
)

const defaultMaxVarchar = 10485

// columnType implements §4.4's Postgres type mapping: VARCHAR(n) below the
// limit, TEXT beyond it (Postgres has no MEDIUMTEXT/LONGTEXT ladder).
func (a *Adapter) columnType(attr adapter.Attribute) string {
	if attr.Array {
		return "JSONB"
	}
	switch attr.Type {
	case adapter.TypeString:
		if attr.Size <= a.maxVarcharLimit() {
			return fmt.Sprintf("VARCHAR(%d)", attr.Size)
		}
		return "TEXT"
	case adapter.TypeInteger:
		if attr.Size >= 8 {
			return "BIGINT"
		}
		return "INTEGER"
	case adapter.TypeFloat:
		return "DOUBLE PRECISION"
	case adapter.TypeBoolean:
		return "BOOLEAN"
	case adapter.TypeDatetime:
		return "TIMESTAMP(3)"
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

func (a *Adapter) GetMaxVarcharLength() int { return a.maxVarcharLimit() }
func (a *Adapter) GetMaxIndexLength() int   { return 0 } // Postgres has no fixed index key-length cap

// GetSupportForCastIndexArray is true for Postgres: JSONB array containment
// indexes are supported (GIN), unlike MariaDB's JSON_OVERLAPS scan.
func (a *Adapter) GetSupportForCastIndexArray() bool { return true }

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

// indexName composes a Postgres index identifier as <prefix><tenant>_<collection>_<index>,
// per §4.4's naming rule — Postgres indexes live in a flat schema namespace,
// unlike MariaDB's per-table key namespace.
func (a *Adapter) indexName(collection, index string) string {
	tenant := ""
	if a.cfg.TenantID != nil {
		tenant = fmt.Sprintf("%d", *a.cfg.TenantID)
	}
	return a.cfg.Prefix + tenant + "_" + strings.ToLower(collection) + "_" + index
}

// buildCreateCollectionSQL returns the CREATE TABLE statements for the data
// and perms tables, plus the separate CREATE INDEX statements Postgres uses
// instead of MariaDB's inline key clauses (§4.4).
func (a *Adapter) buildCreateCollectionSQL(name string, attrs []adapter.Attribute, indexes []adapter.Index) (dataSQL, permsSQL string, indexSQLs []string) {
	q := a.quote
	var cols []string
	cols = append(cols, q("_id")+" BIGSERIAL PRIMARY KEY")
	cols = append(cols, q("_uid")+" VARCHAR(255) NOT NULL")
	if a.cfg.SharedTables {
		cols = append(cols, q("_tenant")+" BIGINT DEFAULT NULL")
	}
	cols = append(cols, q("_createdAt")+" TIMESTAMP(3) DEFAULT NULL")
	cols = append(cols, q("_updatedAt")+" TIMESTAMP(3) DEFAULT NULL")
	cols = append(cols, q("_permissions")+" JSONB DEFAULT NULL")

	for _, attr := range attrs {
		cols = append(cols, buildColumnDef(q, attr.ID, a.columnType(attr), attr.Required))
	}

	table := a.dataTable(name)
	dataSQL = fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))

	uidKeyCols := []string{"_uid"}
	if a.cfg.SharedTables {
		uidKeyCols = []string{"_tenant", "_uid"}
	}
	indexSQLs = append(indexSQLs, a.buildUniqueIndexSQL(name, a.indexName(name, "uid_unique"), uidKeyCols, false))
	indexSQLs = append(indexSQLs, fmt.Sprintf("CREATE INDEX %s ON %s (%s)", q(a.indexName(name, "createdAt_idx")), table, q("_createdAt")))
	indexSQLs = append(indexSQLs, fmt.Sprintf("CREATE INDEX %s ON %s (%s)", q(a.indexName(name, "updatedAt_idx")), table, q("_updatedAt")))
	if a.cfg.SharedTables {
		indexSQLs = append(indexSQLs, fmt.Sprintf("CREATE INDEX %s ON %s (%s, %s)", q(a.indexName(name, "tenant_id_idx")), table, q("_tenant"), q("_id")))
	}
	for _, idx := range indexes {
		indexSQLs = append(indexSQLs, a.buildCreateIndexSQL(name, idx))
	}

	permsTable := a.permsTable(name)
	permsCols := []string{
		q("_id") + " BIGSERIAL PRIMARY KEY",
	}
	if a.cfg.SharedTables {
		permsCols = append(permsCols, q("_tenant")+" BIGINT DEFAULT NULL")
	}
	permsCols = append(permsCols,
		q("_type")+" VARCHAR(12) NOT NULL",
		q("_permission")+" VARCHAR(255) NOT NULL",
		q("_document")+" VARCHAR(255) NOT NULL",
	)
	permsSQL = fmt.Sprintf("CREATE TABLE %s (%s)", permsTable, strings.Join(permsCols, ", "))

	permsUniqueCols := []string{"_document", "_type", "_permission"}
	if a.cfg.SharedTables {
		permsUniqueCols = []string{"_document", "_tenant", "_type", "_permission"}
	}
	var permsUniqueQuoted []string
	for _, c := range permsUniqueCols {
		permsUniqueQuoted = append(permsUniqueQuoted, q(c))
	}
	indexSQLs = append(indexSQLs, fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)", q(a.indexName(name, "perms_unique")), permsTable, strings.Join(permsUniqueQuoted, ", ")))
	indexSQLs = append(indexSQLs, fmt.Sprintf("CREATE INDEX %s ON %s (%s, %s)", q(a.indexName(name, "perms_lookup")), permsTable, q("_permission"), q("_type")))

	return dataSQL, permsSQL, indexSQLs
}

// buildUniqueIndexSQL renders a unique index, using LOWER(col) expression
// columns for case-insensitive uniqueness when caseInsensitive is true,
// per §4.4.
func (a *Adapter) buildUniqueIndexSQL(collection, name string, cols []string, caseInsensitive bool) string {
	q := a.quote
	var exprs []string
	for _, c := range cols {
		if caseInsensitive {
			exprs = append(exprs, "LOWER("+q(c)+")")
		} else {
			exprs = append(exprs, q(c))
		}
	}
	return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)", q(name), a.dataTable(collection), strings.Join(exprs, ", "))
}

func (a *Adapter) buildDropCollectionSQL(name string) string {
	return fmt.Sprintf("DROP TABLE %s, %s", a.dataTable(name), a.permsTable(name))
}

func (a *Adapter) buildCreateAttributeSQL(collection string, attr adapter.Attribute) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", a.dataTable(collection),
		buildColumnDef(a.quote, attr.ID, a.columnType(attr), attr.Required))
}

func (a *Adapter) buildUpdateAttributeSQL(collection, id string, attr adapter.Attribute) string {
	return fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", a.dataTable(collection), a.quote(id), a.columnType(attr))
}

func (a *Adapter) buildDeleteAttributeSQL(collection, id string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", a.dataTable(collection), a.quote(id))
}

func (a *Adapter) buildRenameAttributeSQL(collection, oldName, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", a.dataTable(collection), a.quote(oldName), a.quote(newName))
}

func (a *Adapter) buildCreateIndexSQL(collection string, idx adapter.Index) string {
	q := a.quote
	unique := idx.Type == adapter.IndexUnique
	kind := "INDEX"
	if unique {
		kind = "UNIQUE INDEX"
	}
	if idx.Type == adapter.IndexFulltext {
		var cols []string
		for _, attrName := range idx.Attributes {
			cols = append(cols, "to_tsvector('simple', "+q(attrName)+"::text)")
		}
		return fmt.Sprintf("CREATE INDEX %s ON %s USING GIN (%s)", q(a.indexName(collection, idx.Name)), a.dataTable(collection), strings.Join(cols, " || ' ' || "))
	}

	var cols []string
	if a.cfg.SharedTables {
		cols = append(cols, q("_tenant"))
	}
	for _, attrName := range idx.Attributes {
		cols = append(cols, q(attrName))
	}
	return fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, q(a.indexName(collection, idx.Name)), a.dataTable(collection), strings.Join(cols, ", "))
}

func (a *Adapter) buildDeleteIndexSQL(name string) string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %s.%s", a.quote(a.cfg.Database), a.quote(name))
}

func (a *Adapter) buildRenameIndexSQL(oldName, newName string) string {
	return fmt.Sprintf("ALTER INDEX %s.%s RENAME TO %s", a.quote(a.cfg.Database), a.quote(oldName), a.quote(newName))
}

func (a *Adapter) buildSizeQuery(collection string) (string, []any) {
	table := a.cfg.Prefix + "_" + inflection.Plural(strings.ToLower(collection))
	return "SELECT pg_total_relation_size(quote_ident($1) || '.' || quote_ident($2))", []any{a.cfg.Database, table}
}

func (a *Adapter) buildSizeOnDiskQuery(collection string) (string, []any) {
	return a.buildSizeQuery(collection)
}
