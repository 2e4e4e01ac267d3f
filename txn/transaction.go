package txn

import (
	"context"
	"database/sql"
	"time"

	"github.com/nuvix/sqldoc/dberrors"
)

// Transactor tracks the per-connection nested-transaction depth of §4.6. A
// Transactor is scoped to a single connection's transactional envelope — it
// is not safe to share across parallel callers (§5's shared-resource
// policy); withTransaction below creates one per acquisition.
type Transactor struct {
	conn     *sql.Conn
	beginSQL string
	// rollbackEveryFrame is true for Postgres (no savepoints in this
	// design — every inner frame issues ROLLBACK) and false for MariaDB
	// (only the outermost frame does).
	rollbackEveryFrame bool
	depth              int
}

func NewTransactor(conn *sql.Conn, beginSQL string, rollbackEveryFrame bool) *Transactor {
	return &Transactor{conn: conn, beginSQL: beginSQL, rollbackEveryFrame: rollbackEveryFrame}
}

func (t *Transactor) Depth() int { return t.depth }

// Begin issues BEGIN/START TRANSACTION only on the 0->1 transition.
func (t *Transactor) Begin(ctx context.Context) error {
	t.depth++
	if t.depth == 1 {
		if _, err := t.conn.ExecContext(ctx, t.beginSQL); err != nil {
			t.depth--
			return dberrors.NewTransaction("begin failed", err)
		}
	}
	return nil
}

// Commit issues COMMIT only on the 1->0 transition.
func (t *Transactor) Commit(ctx context.Context) error {
	if t.depth == 0 {
		return dberrors.NewTransaction("commit called outside a transaction", nil)
	}
	t.depth--
	if t.depth == 0 {
		if _, err := t.conn.ExecContext(ctx, "COMMIT"); err != nil {
			return dberrors.NewTransaction("commit failed", err)
		}
	}
	return nil
}

// Rollback issues ROLLBACK per the backend's policy and always resets depth
// to 0 afterwards to avoid stuck state, per §4.6.
func (t *Transactor) Rollback(ctx context.Context) error {
	issue := t.rollbackEveryFrame || t.depth <= 1
	t.depth = 0
	if !issue {
		return nil
	}
	if _, err := t.conn.ExecContext(ctx, "ROLLBACK"); err != nil {
		return dberrors.NewTransaction("rollback failed", err)
	}
	return nil
}

// WithTransaction implements the retry envelope of §4.6: up to 3 attempts
// to acquire, begin, run fn, and commit. A callback error triggers
// rollback; if rollback itself fails on an inner attempt, the whole
// envelope backs off ~5ms and retries; on the final failed attempt the
// original callback error is rethrown. The connection is always released.
func WithTransaction(ctx context.Context, pool Pool, beginSQL string, rollbackEveryFrame bool, fn func(ctx context.Context, conn *sql.Conn, tx *Transactor) error) error {
	const maxAttempts = 3
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			// Acquisition failure is fatal, not retried by the adapter
			// (the pool handles its own retry policy), per §4.11.
			return dberrors.New(dberrors.KindDatabase, "connection acquisition failed", err)
		}

		tx := NewTransactor(conn, beginSQL, rollbackEveryFrame)
		runErr := runAttempt(ctx, conn, tx, fn)
		_ = pool.Release(conn)

		if runErr == nil {
			return nil
		}
		lastErr = runErr

		if !isRollbackFailure(runErr) {
			return runErr
		}
		if attempt < maxAttempts {
			time.Sleep(5 * time.Millisecond)
		}
	}
	return lastErr
}

func runAttempt(ctx context.Context, conn *sql.Conn, tx *Transactor, fn func(context.Context, *sql.Conn, *Transactor) error) error {
	if err := tx.Begin(ctx); err != nil {
		return err
	}
	cbErr := fn(ctx, conn, tx)
	if cbErr != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return &rollbackFailure{cause: rbErr, original: cbErr}
		}
		return cbErr
	}
	return tx.Commit(ctx)
}

// rollbackFailure marks an error as a rollback-path failure so
// WithTransaction knows to retry the whole envelope rather than returning
// immediately.
type rollbackFailure struct {
	cause    error
	original error
}

func (r *rollbackFailure) Error() string { return r.original.Error() }
func (r *rollbackFailure) Unwrap() error { return r.original }

func isRollbackFailure(err error) bool {
	_, ok := err.(*rollbackFailure)
	return ok
}
