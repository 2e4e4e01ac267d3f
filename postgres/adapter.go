// Package postgres implements the PostgreSQL backend of §4.4.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/lib/pq"

	"github.com/nuvix/sqldoc/adapter"
	"github.com/nuvix/sqldoc/dberrors"
	"github.com/nuvix/sqldoc/internal/idfilter"
	"github.com/nuvix/sqldoc/observability"
	"github.com/nuvix/sqldoc/transform"
	"github.com/nuvix/sqldoc/txn"
)

// Adapter is the concrete §4.4 PostgreSQL backend implementing
// adapter.Adapter.
type Adapter struct {
	cfg     adapter.Config
	dialect Dialect

	mu   sync.RWMutex
	db   *sql.DB
	pool *txn.SQLPool

	pipeline  *transform.Pipeline
	metadata  *transform.Metadata
	timeoutMS map[string]int
}

func New(cfg adapter.Config) *Adapter {
	return &Adapter{
		cfg:       cfg,
		pipeline:  transform.NewPipeline(),
		metadata:  transform.NewMetadata(),
		timeoutMS: map[string]int{},
	}
}

func (a *Adapter) dsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		a.cfg.Host, a.cfg.Port, a.cfg.User, a.cfg.Password, a.cfg.Database)
}

func (a *Adapter) Init(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db != nil {
		return nil
	}
	db, err := sql.Open("postgres", a.dsn())
	if err != nil {
		return dberrors.NewInitialization("open failed: " + err.Error())
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return dberrors.NewInitialization("ping failed: " + err.Error())
	}
	a.db = db
	a.pool = txn.NewSQLPool(db)
	observability.Emit(observability.EventPoolCreated, map[string]any{"backend": "postgres", "database": a.cfg.Database})
	return nil
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	a.pool = nil
	observability.Emit(observability.EventPoolReleased, map[string]any{"backend": "postgres"})
	observability.Emit(observability.EventShutdown, map[string]any{"backend": "postgres"})
	return err
}

func (a *Adapter) Ping(ctx context.Context) error {
	a.mu.RLock()
	db := a.db
	a.mu.RUnlock()
	if db == nil {
		return dberrors.NewInitialization("adapter not initialized")
	}
	return mapError(db.PingContext(ctx))
}

func (a *Adapter) IsInitialized() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.db != nil
}

func (a *Adapter) GetClient() any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.db
}

// Create/Drop/Use manage the Postgres schema that holds every collection's
// table pair, per §4.1 (Postgres uses "schema", MariaDB uses "database" for
// the same concept).
func (a *Adapter) Create(ctx context.Context, name string) error {
	name, err := idfilter.Filter(name)
	if err != nil {
		return err
	}
	_, err = a.exec(ctx, "schema:create", fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", a.quote(name)))
	return mapError(err)
}

func (a *Adapter) Drop(ctx context.Context, name string) error {
	name, err := idfilter.Filter(name)
	if err != nil {
		return err
	}
	_, err = a.exec(ctx, "schema:drop", fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", a.quote(name)))
	return mapError(err)
}

func (a *Adapter) Exists(ctx context.Context, name string, collection string) (bool, error) {
	if collection == "" {
		row := a.queryRow(ctx, "schema:exists", "SELECT 1 FROM information_schema.schemata WHERE schema_name = $1", name)
		var one int
		err := row.Scan(&one)
		if err == sql.ErrNoRows {
			return false, nil
		}
		return err == nil, mapError(err)
	}
	table, _ := idfilter.Filter(collection)
	row := a.queryRow(ctx, "schema:exists", "SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2", name, table)
	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, mapError(err)
}

func (a *Adapter) Use(ctx context.Context, name string) error {
	name, err := idfilter.Filter(name)
	if err != nil {
		return err
	}
	a.cfg.Database = name
	return nil
}

// CreateCollection emits the data/_perms table pair, then the sequence of
// CREATE INDEX statements Postgres uses instead of MariaDB's inline keys
// (§4.4).
func (a *Adapter) CreateCollection(ctx context.Context, name string, attrs []adapter.Attribute, indexes []adapter.Index, ifExists bool) error {
	name, err := idfilter.Filter(name)
	if err != nil {
		return err
	}
	dataSQL, permsSQL, indexSQLs := a.buildCreateCollectionSQL(name, attrs, indexes)
	return txn.WithTransaction(ctx, a.pool, "BEGIN", true, func(ctx context.Context, conn *sql.Conn, tx *txn.Transactor) error {
		if _, err := conn.ExecContext(ctx, a.pipeline.Apply("collection:create", dataSQL)); err != nil {
			if ifExists && dberrors.IsDuplicate(mapError(err), dberrors.DuplicateTable) {
				return nil
			}
			return mapError(err)
		}
		if _, err := conn.ExecContext(ctx, a.pipeline.Apply("collection:create", permsSQL)); err != nil {
			return mapError(err)
		}
		for _, stmt := range indexSQLs {
			if _, err := conn.ExecContext(ctx, a.pipeline.Apply("collection:create", stmt)); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

func (a *Adapter) DropCollection(ctx context.Context, name string, ifExists bool) error {
	name, err := idfilter.Filter(name)
	if err != nil {
		return err
	}
	sqlText := a.buildDropCollectionSQL(name)
	_, err = a.exec(ctx, "collection:delete", sqlText)
	if err != nil && ifExists && dberrors.IsDuplicate(mapError(err), dberrors.DuplicateUnknown) {
		return nil
	}
	return mapError(err)
}

func (a *Adapter) CreateAttribute(ctx context.Context, collection string, attr adapter.Attribute) error {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return err
	}
	attr.ID, err = idfilter.Filter(attr.ID)
	if err != nil {
		return err
	}
	_, err = a.exec(ctx, "attribute:create", a.buildCreateAttributeSQL(collection, attr))
	return mapError(err)
}

func (a *Adapter) UpdateAttribute(ctx context.Context, collection string, oldID string, attr adapter.Attribute) error {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return err
	}
	_, err = a.exec(ctx, "attribute:update", a.buildUpdateAttributeSQL(collection, oldID, attr))
	return mapError(err)
}

func (a *Adapter) DeleteAttribute(ctx context.Context, collection string, id string) error {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return err
	}
	_, err = a.exec(ctx, "attribute:delete", a.buildDeleteAttributeSQL(collection, id))
	return mapError(err)
}

func (a *Adapter) RenameAttribute(ctx context.Context, collection, oldName, newName string) error {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return err
	}
	_, err = a.exec(ctx, "attribute:update", a.buildRenameAttributeSQL(collection, oldName, newName))
	return mapError(err)
}

func (a *Adapter) CreateIndex(ctx context.Context, collection string, index adapter.Index) error {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return err
	}
	_, err = a.exec(ctx, "index:create", a.buildCreateIndexSQL(collection, index))
	return mapError(err)
}

func (a *Adapter) DeleteIndex(ctx context.Context, collection, name string) error {
	if _, err := idfilter.Filter(collection); err != nil {
		return err
	}
	_, err := a.exec(ctx, "index:delete", a.buildDeleteIndexSQL(a.indexName(collection, name)))
	return mapError(err)
}

func (a *Adapter) RenameIndex(ctx context.Context, collection, oldName, newName string) error {
	if _, err := idfilter.Filter(collection); err != nil {
		return err
	}
	_, err := a.exec(ctx, "index:update", a.buildRenameIndexSQL(a.indexName(collection, oldName), a.indexName(collection, newName)))
	return mapError(err)
}

func (a *Adapter) GetSizeOfCollection(ctx context.Context, collection string) (int64, error) {
	sqlText, binds := a.buildSizeQuery(collection)
	return a.scanInt64(ctx, "collection:size", sqlText, binds...)
}

func (a *Adapter) GetSizeOfCollectionOnDisk(ctx context.Context, collection string) (int64, error) {
	sqlText, binds := a.buildSizeOnDiskQuery(collection)
	return a.scanInt64(ctx, "collection:size", sqlText, binds...)
}

func (a *Adapter) GetConnectionID(ctx context.Context) (string, error) {
	row := a.queryRow(ctx, "connection:id", "SELECT pg_backend_pid()::text")
	var id string
	err := row.Scan(&id)
	return id, mapError(err)
}

func (a *Adapter) scanInt64(ctx context.Context, event, sqlText string, binds ...any) (int64, error) {
	row := a.queryRow(ctx, event, sqlText, binds...)
	var n sql.NullInt64
	if err := row.Scan(&n); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, mapError(err)
	}
	return n.Int64, nil
}

func (a *Adapter) Before(event, name string, cb func(sql string) string) {
	a.pipeline.Before(event, name, cb)
}

// SetTimeout installs the event's timeout by recording it for the
// connection-level "SET statement_timeout" issued at execution time,
// rather than rewriting the statement text (§4.4's documented deviation
// from MariaDB's statement-rewrite approach).
func (a *Adapter) SetTimeout(ms int, event string) {
	a.timeoutMS[event] = ms
}

func (a *Adapter) ClearTimeout(event string) {
	delete(a.timeoutMS, event)
}

func (a *Adapter) SetMetadata(key, value string) {
	a.pipeline.Before(transform.EventAll, transform.MetadataTransformerName, a.metadata.Set(key, value))
}

func (a *Adapter) ResetMetadata() {
	a.metadata.Reset()
	a.pipeline.Before(transform.EventAll, transform.MetadataTransformerName, nil)
}

func (a *Adapter) timeoutFor(event string) (int, bool) {
	if ms, ok := a.timeoutMS[event]; ok {
		return ms, true
	}
	ms, ok := a.timeoutMS[transform.EventAll]
	return ms, ok
}

// exec/queryRow/query apply the transform pipeline, then run the statement.
// When a timeout is registered for the event, exec and query acquire a
// dedicated connection and issue "SET statement_timeout" first, per §4.4.
// queryRow always runs on the shared pool and does not apply a registered
// timeout.
func (a *Adapter) exec(ctx context.Context, event, sqlText string, args ...any) (sql.Result, error) {
	rendered := a.pipeline.Apply(event, sqlText)
	if ms, ok := a.timeoutFor(event); ok {
		conn, err := a.db.Conn(ctx)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		if _, err := conn.ExecContext(ctx, transform.PostgresStatementTimeoutSQL(ms)); err != nil {
			a.emitQueryEvent(event, err)
			return nil, err
		}
		res, err := conn.ExecContext(ctx, rendered, args...)
		a.emitQueryEvent(event, err)
		return res, err
	}
	res, err := a.db.ExecContext(ctx, rendered, args...)
	a.emitQueryEvent(event, err)
	return res, err
}

func (a *Adapter) queryRow(ctx context.Context, event, sqlText string, args ...any) *sql.Row {
	row := a.db.QueryRowContext(ctx, a.pipeline.Apply(event, sqlText), args...)
	observability.Emit(observability.EventQueryExecuted, map[string]any{"backend": "postgres", "event": event})
	return row
}

// emitQueryEvent fires query:executed on success or query:error on failure,
// the pair spec.md §6 requires around every statement.
func (a *Adapter) emitQueryEvent(event string, err error) {
	if err != nil {
		observability.Emit(observability.EventQueryError, map[string]any{"backend": "postgres", "event": event, "error": err.Error()})
		return
	}
	observability.Emit(observability.EventQueryExecuted, map[string]any{"backend": "postgres", "event": event})
}

// Rows wraps *sql.Rows, additionally releasing a pinned *sql.Conn (when one
// was acquired to carry a statement_timeout) on Close. Callers use it
// exactly like *sql.Rows.
type Rows struct {
	*sql.Rows
	conn *sql.Conn
}

func (r *Rows) Close() error {
	rowsErr := r.Rows.Close()
	if r.conn == nil {
		return rowsErr
	}
	connErr := r.conn.Close()
	if rowsErr != nil {
		return rowsErr
	}
	return connErr
}

func (a *Adapter) query(ctx context.Context, event, sqlText string, args ...any) (*Rows, error) {
	if ms, ok := a.timeoutFor(event); ok {
		conn, err := a.db.Conn(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := conn.ExecContext(ctx, transform.PostgresStatementTimeoutSQL(ms)); err != nil {
			conn.Close()
			a.emitQueryEvent(event, err)
			return nil, err
		}
		rows, err := conn.QueryContext(ctx, a.pipeline.Apply(event, sqlText), args...)
		if err != nil {
			conn.Close()
			a.emitQueryEvent(event, err)
			return nil, err
		}
		a.emitQueryEvent(event, nil)
		return &Rows{Rows: rows, conn: conn}, nil
	}
	rows, err := a.db.QueryContext(ctx, a.pipeline.Apply(event, sqlText), args...)
	if err != nil {
		a.emitQueryEvent(event, err)
		return nil, err
	}
	a.emitQueryEvent(event, nil)
	return &Rows{Rows: rows}, nil
}
