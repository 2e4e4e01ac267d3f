// Package testutil spins up disposable MariaDB/PostgreSQL containers for
// integration tests, the same testcontainers-go pattern Pieczasz-smf uses
// for its own connector tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nuvix/sqldoc/adapter"
)

// MariaDBContainer wraps a running MySQL/MariaDB container plus the
// adapter.Config to reach it.
type MariaDBContainer struct {
	container *mysql.MySQLContainer
	Config    adapter.Config
}

// StartMariaDB launches a MySQL 8 container, skipping the test in -short
// mode. The container is terminated via t.Cleanup.
func StartMariaDB(t *testing.T) *MariaDBContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed integration test in short mode")
	}
	ctx := context.Background()

	c, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("sqldoc_test"),
		mysql.WithUsername("root"),
		mysql.WithPassword("sqldoc_test"),
	)
	require.NoError(t, err, "failed to start MariaDB container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(c); err != nil {
			t.Logf("failed to terminate MariaDB container: %v", err)
		}
	})

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	return &MariaDBContainer{
		container: c,
		Config: adapter.Config{
			Host:     host,
			Port:     port.Int(),
			User:     "root",
			Password: "sqldoc_test",
			Database: "sqldoc_test",
		},
	}
}

// PostgresContainer wraps a running generic Postgres container plus the
// adapter.Config to reach it.
type PostgresContainer struct {
	container testcontainers.Container
	Config    adapter.Config
}

// StartPostgres launches a Postgres 15 container via the generic
// testcontainers request, skipping the test in -short mode. The generic
// form is used (no dedicated modules/postgres import) since the teacher's
// own dependency set never carried one.
func StartPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed integration test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "sqldoc_test",
			"POSTGRES_PASSWORD": "sqldoc_test",
			"POSTGRES_DB":       "sqldoc_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start Postgres container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(c); err != nil {
			t.Logf("failed to terminate Postgres container: %v", err)
		}
	})

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return &PostgresContainer{
		container: c,
		Config: adapter.Config{
			Host:     host,
			Port:     port.Int(),
			User:     "sqldoc_test",
			Password: "sqldoc_test",
			Database: "sqldoc_test",
		},
	}
}
