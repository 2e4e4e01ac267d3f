package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/nuvix/sqldoc/adapter"
	"github.com/nuvix/sqldoc/dberrors"
	"github.com/nuvix/sqldoc/internal/idfilter"
	"github.com/nuvix/sqldoc/observability"
	"github.com/nuvix/sqldoc/transform"
	"github.com/nuvix/sqldoc/txn"
)

// Adapter is the concrete §4.3 MariaDB/MySQL backend implementing
// adapter.Adapter.
type Adapter struct {
	cfg     adapter.Config
	dialect Dialect

	mu  sync.RWMutex
	db  *sql.DB
	pool *txn.SQLPool

	pipeline  *transform.Pipeline
	metadata  *transform.Metadata
	timeoutMS map[string]int
}

// New builds an Adapter from cfg without opening a connection; call Init to
// connect, mirroring the teacher's Wrap*/lazy-connect split in client.go.
func New(cfg adapter.Config) *Adapter {
	return &Adapter{
		cfg:       cfg,
		pipeline:  transform.NewPipeline(),
		metadata:  transform.NewMetadata(),
		timeoutMS: map[string]int{},
	}
}

func (a *Adapter) dsn() string {
	c := mysqldriver.NewConfig()
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", a.cfg.Host, a.cfg.Port)
	c.User = a.cfg.User
	c.Passwd = a.cfg.Password
	c.DBName = a.cfg.Database
	c.ParseTime = true
	c.MultiStatements = false
	c.InterpolateParams = false
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// Init opens the connection pool, per §4.1's lifecycle.
func (a *Adapter) Init(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db != nil {
		return nil
	}
	db, err := sql.Open("mysql", a.dsn())
	if err != nil {
		return dberrors.NewInitialization("open failed: " + err.Error())
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return dberrors.NewInitialization("ping failed: " + err.Error())
	}
	a.db = db
	a.pool = txn.NewSQLPool(db)
	observability.Emit(observability.EventPoolCreated, map[string]any{"backend": "mariadb", "database": a.cfg.Database})
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
	observability.Emit(observability.EventPoolReleased, map[string]any{"backend": "mariadb"})
	observability.Emit(observability.EventShutdown, map[string]any{"backend": "mariadb"})
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

// Create/Drop/Use manage the MariaDB database (schema) that holds every
// collection's table pair, per §4.1.
func (a *Adapter) Create(ctx context.Context, name string) error {
	name, err := idfilter.Filter(name)
	if err != nil {
		return err
	}
	_, err = a.exec(ctx, "schema:create", fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", a.quote(name)))
	return mapError(err)
}

func (a *Adapter) Drop(ctx context.Context, name string) error {
	name, err := idfilter.Filter(name)
	if err != nil {
		return err
	}
	_, err = a.exec(ctx, "schema:drop", fmt.Sprintf("DROP DATABASE IF EXISTS %s", a.quote(name)))
	return mapError(err)
}

func (a *Adapter) Exists(ctx context.Context, name string, collection string) (bool, error) {
	if collection == "" {
		row := a.queryRow(ctx, "schema:exists", "SELECT 1 FROM information_schema.SCHEMATA WHERE SCHEMA_NAME = ?", name)
		var one int
		err := row.Scan(&one)
		if err == sql.ErrNoRows {
			return false, nil
		}
		return err == nil, mapError(err)
	}
	table, _ := idfilter.Filter(collection)
	row := a.queryRow(ctx, "schema:exists", "SELECT 1 FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?", name, table)
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

// CreateCollection emits the data/_perms table pair of §4.3.
func (a *Adapter) CreateCollection(ctx context.Context, name string, attrs []adapter.Attribute, indexes []adapter.Index, ifExists bool) error {
	name, err := idfilter.Filter(name)
	if err != nil {
		return err
	}
	dataSQL, permsSQL, _ := a.buildCreateCollectionSQL(name, attrs, indexes)
	return txn.WithTransaction(ctx, a.pool, "START TRANSACTION", false, func(ctx context.Context, conn *sql.Conn, tx *txn.Transactor) error {
		if _, err := conn.ExecContext(ctx, a.pipeline.Apply("collection:create", dataSQL)); err != nil {
			if ifExists && dberrors.IsDuplicate(mapError(err), dberrors.DuplicateTable) {
				return nil
			}
			return mapError(err)
		}
		if _, err := conn.ExecContext(ctx, a.pipeline.Apply("collection:create", permsSQL)); err != nil {
			return mapError(err)
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
	_, err = a.exec(ctx, "attribute:update", a.buildRenameAttributeSQL(collection, oldName, newName, ""))
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
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return err
	}
	_, err = a.exec(ctx, "index:delete", a.buildDeleteIndexSQL(collection, name))
	return mapError(err)
}

func (a *Adapter) RenameIndex(ctx context.Context, collection, oldName, newName string) error {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return err
	}
	_, err = a.exec(ctx, "index:update", a.buildRenameIndexSQL(collection, oldName, newName))
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
	row := a.queryRow(ctx, "connection:id", "SELECT CONNECTION_ID()")
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

// Before, SetTimeout, ClearTimeout, SetMetadata, ResetMetadata wire the
// transform pipeline of §4.7 into the public hook surface of §4.1.
func (a *Adapter) Before(event, name string, cb func(sql string) string) {
	a.pipeline.Before(event, name, cb)
}

func (a *Adapter) SetTimeout(ms int, event string) {
	a.timeoutMS[event] = ms
	a.pipeline.Before(event, transform.TimeoutTransformerName, transform.MariaDBStatementTimeout(ms))
}

func (a *Adapter) ClearTimeout(event string) {
	delete(a.timeoutMS, event)
	a.pipeline.Before(event, transform.TimeoutTransformerName, nil)
}

func (a *Adapter) SetMetadata(key, value string) {
	a.pipeline.Before(transform.EventAll, transform.MetadataTransformerName, a.metadata.Set(key, value))
}

func (a *Adapter) ResetMetadata() {
	a.metadata.Reset()
	a.pipeline.Before(transform.EventAll, transform.MetadataTransformerName, nil)
}

// exec/queryRow apply the transform pipeline before delegating to *sql.DB,
// per §4.7's "every statement passes through Apply before execution", and
// emit the query:executed/query:error events of §6.
func (a *Adapter) exec(ctx context.Context, event, sqlText string, args ...any) (sql.Result, error) {
	res, err := a.db.ExecContext(ctx, a.pipeline.Apply(event, sqlText), args...)
	a.emitQueryEvent(event, err)
	return res, err
}

func (a *Adapter) queryRow(ctx context.Context, event, sqlText string, args ...any) *sql.Row {
	row := a.db.QueryRowContext(ctx, a.pipeline.Apply(event, sqlText), args...)
	observability.Emit(observability.EventQueryExecuted, map[string]any{"backend": "mariadb", "event": event})
	return row
}

func (a *Adapter) query(ctx context.Context, event, sqlText string, args ...any) (*sql.Rows, error) {
	rows, err := a.db.QueryContext(ctx, a.pipeline.Apply(event, sqlText), args...)
	a.emitQueryEvent(event, err)
	return rows, err
}

// emitQueryEvent fires query:executed on success or query:error on failure,
// the pair spec.md §6 requires around every statement.
func (a *Adapter) emitQueryEvent(event string, err error) {
	if err != nil {
		observability.Emit(observability.EventQueryError, map[string]any{"backend": "mariadb", "event": event, "error": err.Error()})
		return
	}
	observability.Emit(observability.EventQueryExecuted, map[string]any{"backend": "mariadb", "event": event})
}
