package mariadb

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
	require.NoError(t, sqlvalidate.ValidateMySQL(dataSQL), dataSQL)
	require.NoError(t, sqlvalidate.ValidateMySQL(permsSQL), permsSQL)
	require.NoError(t, sqlvalidate.ValidateMySQLDDL(dataSQL), dataSQL)
	require.NoError(t, sqlvalidate.ValidateMySQLDDL(permsSQL), permsSQL)
	assert.Empty(t, indexSQLs, "MariaDB inlines indexes into CREATE TABLE")
	assert.Contains(t, dataSQL, "`ax_users`")
	assert.Contains(t, dataSQL, "`name` VARCHAR(255) NOT NULL")
}

func TestBuildCreateCollectionSQLSharedTables(t *testing.T) {
	a := newTestAdapter(true)
	dataSQL, permsSQL, _ := a.buildCreateCollectionSQL("users", nil, nil)
	require.NoError(t, sqlvalidate.ValidateMySQL(dataSQL), dataSQL)
	require.NoError(t, sqlvalidate.ValidateMySQL(permsSQL), permsSQL)
	require.NoError(t, sqlvalidate.ValidateMySQLDDL(dataSQL), dataSQL)
	require.NoError(t, sqlvalidate.ValidateMySQLDDL(permsSQL), permsSQL)
	assert.Contains(t, dataSQL, "`_tenant` BIGINT DEFAULT NULL")
	assert.Contains(t, dataSQL, "`_tenant`, `_uid`")
}

func TestBuildDropCollectionSQL(t *testing.T) {
	a := newTestAdapter(false)
	sqlText := a.buildDropCollectionSQL("users")
	require.NoError(t, sqlvalidate.ValidateMySQL(sqlText), sqlText)
	require.NoError(t, sqlvalidate.ValidateMySQLDDL(sqlText), sqlText)
	assert.Equal(t, "DROP TABLE `appdb`.`ax_users`, `appdb`.`ax_users_perms`", sqlText)
}

func TestBuildCreateAttributeSQL(t *testing.T) {
	a := newTestAdapter(false)
	sqlText := a.buildCreateAttributeSQL("users", adapter.Attribute{ID: "bio", Type: adapter.TypeString, Size: 1000})
	require.NoError(t, sqlvalidate.ValidateMySQL(sqlText), sqlText)
	require.NoError(t, sqlvalidate.ValidateMySQLDDL(sqlText), sqlText)
	assert.Contains(t, sqlText, "ADD COLUMN `bio`")
}

func TestBuildCreateIndexSQLFulltextSkipsTenant(t *testing.T) {
	a := newTestAdapter(true)
	sqlText := a.buildCreateIndexSQL("articles", adapter.Index{
		Name:       "body_fulltext",
		Type:       adapter.IndexFulltext,
		Attributes: []string{"body"},
	})
	require.NoError(t, sqlvalidate.ValidateMySQL(sqlText), sqlText)
	require.NoError(t, sqlvalidate.ValidateMySQLDDL(sqlText), sqlText)
	assert.NotContains(t, sqlText, "_tenant")
	assert.Contains(t, sqlText, "FULLTEXT INDEX")
}

func TestColumnTypeLadder(t *testing.T) {
	a := newTestAdapter(false)
	cases := []struct {
		attr adapter.Attribute
		want string
	}{
		{adapter.Attribute{Type: adapter.TypeString, Size: 255}, "VARCHAR(255)"},
		{adapter.Attribute{Type: adapter.TypeString, Size: 100000}, "MEDIUMTEXT"},
		{adapter.Attribute{Type: adapter.TypeInteger, Size: 4, Signed: true}, "INT"},
		{adapter.Attribute{Type: adapter.TypeInteger, Size: 8}, "BIGINT UNSIGNED"},
		{adapter.Attribute{Type: adapter.TypeFloat}, "DOUBLE"},
		{adapter.Attribute{Type: adapter.TypeBoolean}, "TINYINT(1)"},
		{adapter.Attribute{Type: adapter.TypeDatetime}, "DATETIME(3)"},
		{adapter.Attribute{Type: adapter.TypeRelationship}, "VARCHAR(255)"},
		{adapter.Attribute{Type: adapter.TypeString, Size: 10, Array: true}, "JSON"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, a.columnType(c.attr))
	}
}
