package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
default = "primary"

[profiles.primary]
backend = "mariadb"
host = "127.0.0.1"
port = 3306
user = "root"
password = "secret"
database = "app"
prefix = "ax"
shared_tables = true
tenant_id = 7

[profiles.replica]
backend = "postgres"
host = "127.0.0.1"
port = 5432
user = "app"
database = "app"
`

func TestParse(t *testing.T) {
	profiles, def, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, "primary", def)
	require.Len(t, profiles, 2)

	primary, ok := Find(profiles, "primary")
	require.True(t, ok)
	assert.Equal(t, "mariadb", primary.Backend)
	assert.Equal(t, "app", primary.Config.Database)
	assert.True(t, primary.Config.SharedTables)
	require.NotNil(t, primary.Config.TenantID)
	assert.EqualValues(t, 7, *primary.Config.TenantID)

	replica, ok := Find(profiles, "replica")
	require.True(t, ok)
	assert.Equal(t, "postgres", replica.Backend)
	assert.Nil(t, replica.Config.TenantID)
}

func TestParseUnsupportedBackend(t *testing.T) {
	_, _, err := Parse(strings.NewReader(`
[profiles.bad]
backend = "sqlite"
`))
	assert.Error(t, err)
}

func TestParseUnknownDefault(t *testing.T) {
	_, _, err := Parse(strings.NewReader(`
default = "missing"

[profiles.primary]
backend = "mariadb"
`))
	assert.Error(t, err)
}

func TestFindMissing(t *testing.T) {
	_, ok := Find(nil, "nope")
	assert.False(t, ok)
}
