// Package txn implements the Transaction & Connection component of §4.6:
// the pool contract, nested-transaction depth tracking, and the
// withTransaction retry envelope.
package txn

import (
	"context"
	"database/sql"
)

// Pool is the external pool contract of §4.6: acquire/release plus
// introspection. database/sql's *sql.DB already pools connections
// internally; Pool exists as the seam the adapter depends on so tests can
// substitute a fake, and so Stats() surfaces through the same shape as the
// rest of the adapter's introspection methods.
type Pool interface {
	Acquire(ctx context.Context) (*sql.Conn, error)
	Release(conn *sql.Conn) error
	Stats() sql.DBStats
}

// SQLPool adapts a *sql.DB to Pool.
type SQLPool struct {
	DB *sql.DB
}

func NewSQLPool(db *sql.DB) *SQLPool { return &SQLPool{DB: db} }

func (p *SQLPool) Acquire(ctx context.Context) (*sql.Conn, error) {
	return p.DB.Conn(ctx)
}

func (p *SQLPool) Release(conn *sql.Conn) error {
	return conn.Close()
}

func (p *SQLPool) Stats() sql.DBStats {
	return p.DB.Stats()
}
