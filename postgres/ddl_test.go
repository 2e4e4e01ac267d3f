package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuvix/sqldoc/adapter"
	"github.com/nuvix/sqldoc/internal/sqlvalidate"
)

func newTestAdapter(shared bool) *Adapter {
	return New(adapter.Config{Database: "appdb", Prefix: "ax", SharedTables: shared})
}

func validateAll(t *testing.T, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		require.NoError(t, sqlvalidate.ValidatePostgreSQL(s), s)
	}
}

func TestBuildCreateCollectionSQLValid(t *testing.T) {
	a := newTestAdapter(false)
	attrs := []adapter.Attribute{
		{ID: "name", Type: adapter.TypeString, Size: 255, Required: true},
		{ID: "age", Type: adapter.TypeInteger, Size: 4},
	}
	indexes := []adapter.Index{
		{Name: "name_idx", Type: adapter.IndexKey, Attributes: []string{"name"}},
	}

	dataSQL, permsSQL, indexSQLs := a.buildCreateCollectionSQL("users", attrs, indexes)
	validateAll(t, dataSQL, permsSQL)
	validateAll(t, indexSQLs...)
	assert.NotEmpty(t, indexSQLs, "Postgres emits separate CREATE INDEX statements")
	assert.Contains(t, dataSQL, `"appdb"."ax_users"`)
	assert.Contains(t, dataSQL, `"name" VARCHAR(255) NOT NULL`)
}

func TestBuildCreateCollectionSQLSharedTables(t *testing.T) {
	a := newTestAdapter(true)
	dataSQL, permsSQL, indexSQLs := a.buildCreateCollectionSQL("users", nil, nil)
	validateAll(t, dataSQL, permsSQL)
	validateAll(t, indexSQLs...)
	assert.Contains(t, dataSQL, `"_tenant" BIGINT DEFAULT NULL`)
}

func TestBuildDropCollectionSQL(t *testing.T) {
	a := newTestAdapter(false)
	sqlText := a.buildDropCollectionSQL("users")
	validateAll(t, sqlText)
	assert.Equal(t, `DROP TABLE "appdb"."ax_users", "appdb"."ax_users_perms"`, sqlText)
}

func TestBuildCreateIndexSQLFulltext(t *testing.T) {
	a := newTestAdapter(false)
	sqlText := a.buildCreateIndexSQL("articles", adapter.Index{
		Name:       "body_fulltext",
		Type:       adapter.IndexFulltext,
		Attributes: []string{"body"},
	})
	validateAll(t, sqlText)
	assert.Contains(t, sqlText, "USING GIN")
	assert.Contains(t, sqlText, "to_tsvector")
}

func TestBuildUpdateAttributeSQL(t *testing.T) {
	a := newTestAdapter(false)
	sqlText := a.buildUpdateAttributeSQL("users", "age", adapter.Attribute{Type: adapter.TypeInteger, Size: 8})
	validateAll(t, sqlText)
	assert.Contains(t, sqlText, "ALTER COLUMN")
	assert.Contains(t, sqlText, "BIGINT")
}

func TestColumnTypeLadder(t *testing.T) {
	a := newTestAdapter(false)
	cases := []struct {
		attr adapter.Attribute
		want string
	}{
		{adapter.Attribute{Type: adapter.TypeString, Size: 255}, "VARCHAR(255)"},
		{adapter.Attribute{Type: adapter.TypeString, Size: 100000}, "TEXT"},
		{adapter.Attribute{Type: adapter.TypeInteger, Size: 4}, "INTEGER"},
		{adapter.Attribute{Type: adapter.TypeInteger, Size: 8}, "BIGINT"},
		{adapter.Attribute{Type: adapter.TypeFloat}, "DOUBLE PRECISION"},
		{adapter.Attribute{Type: adapter.TypeBoolean}, "BOOLEAN"},
		{adapter.Attribute{Type: adapter.TypeDatetime}, "TIMESTAMP(3)"},
		{adapter.Attribute{Type: adapter.TypeRelationship}, "VARCHAR(255)"},
		{adapter.Attribute{Type: adapter.TypeString, Size: 10, Array: true}, "JSONB"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, a.columnType(c.attr))
	}
}
