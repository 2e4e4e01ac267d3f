package mariadb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nuvix/sqldoc/adapter"
	"github.com/nuvix/sqldoc/dialect"
	"github.com/nuvix/sqldoc/internal/idfilter"
)

func (a *Adapter) tenantID() any {
	if a.cfg.TenantID == nil {
		return nil
	}
	return *a.cfg.TenantID
}

func attributeSQLValue(v adapter.AttributeValue) any {
	if v.IsArray() || v.IsObject() {
		b, _ := v.JSON()
		return string(b)
	}
	return v.Native()
}

func permissionsJSON(perms []string) string {
	if perms == nil {
		perms = []string{}
	}
	b, _ := json.Marshal(perms)
	return string(b)
}

func scanDocuments(rows *sql.Rows) ([]*adapter.Document, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var docs []*adapter.Document
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := dialect.Row{}
		for i, c := range cols {
			row[c] = vals[i]
		}
		doc, err := dialect.MaterializeDocument(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CreateDocument inserts the data row then the document's permission rows,
// per §4.9.
func (a *Adapter) CreateDocument(ctx context.Context, collection string, doc *adapter.Document) (*adapter.Document, error) {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return nil, err
	}
	table := a.dataTable(collection)

	var cols []string
	var vals []any
	if a.cfg.SharedTables {
		cols = append(cols, "_tenant")
		vals = append(vals, a.tenantID())
	}
	cols = append(cols, "_uid", "_createdAt", "_updatedAt", "_permissions")
	vals = append(vals, doc.ID, doc.CreatedAt, doc.UpdatedAt, permissionsJSON(doc.Permissions))

	var attrNames []string
	for name := range doc.Attributes {
		attrNames = append(attrNames, name)
	}
	sort.Strings(attrNames)
	for _, name := range attrNames {
		cols = append(cols, name)
		vals = append(vals, attributeSQLValue(doc.Attributes[name]))
	}

	colList := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		colList[i] = a.quote(c)
		placeholders[i] = "?"
	}
	sqlText := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(colList, ", "), strings.Join(placeholders, ", "))

	res, err := a.exec(ctx, "documentCreate", sqlText, vals...)
	if err != nil {
		return nil, mapError(err)
	}
	if id, err := res.LastInsertId(); err == nil {
		doc.InternalID = id
	}
	if err := a.insertPermissions(ctx, collection, doc.ID, doc.Permissions); err != nil {
		return nil, err
	}
	return doc, nil
}

// CreateDocuments batches inserts of batchSize rows at a time, per §4.9.
func (a *Adapter) CreateDocuments(ctx context.Context, collection string, docs []*adapter.Document, batchSize int) ([]*adapter.Document, error) {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return docs, nil
	}
	if batchSize <= 0 {
		batchSize = len(docs)
	}
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := a.createDocumentBatch(ctx, collection, docs[start:end]); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (a *Adapter) createDocumentBatch(ctx context.Context, collection string, docs []*adapter.Document) error {
	table := a.dataTable(collection)

	attrSet := map[string]bool{}
	for _, d := range docs {
		for name := range d.Attributes {
			attrSet[name] = true
		}
	}
	var attrCols []string
	for name := range attrSet {
		attrCols = append(attrCols, name)
	}
	sort.Strings(attrCols)

	var cols []string
	if a.cfg.SharedTables {
		cols = append(cols, "_tenant")
	}
	cols = append(cols, "_uid", "_createdAt", "_updatedAt", "_permissions")
	cols = append(cols, attrCols...)

	colList := make([]string, len(cols))
	for i, c := range cols {
		colList[i] = a.quote(c)
	}

	var rowSQLs []string
	var binds []any
	for _, d := range docs {
		rowVals := make([]any, 0, len(cols))
		if a.cfg.SharedTables {
			rowVals = append(rowVals, a.tenantID())
		}
		rowVals = append(rowVals, d.ID, d.CreatedAt, d.UpdatedAt, permissionsJSON(d.Permissions))
		for _, name := range attrCols {
			if v, ok := d.Attributes[name]; ok {
				rowVals = append(rowVals, attributeSQLValue(v))
			} else {
				rowVals = append(rowVals, nil)
			}
		}
		placeholders := make([]string, len(rowVals))
		for i := range placeholders {
			placeholders[i] = "?"
		}
		rowSQLs = append(rowSQLs, "("+strings.Join(placeholders, ", ")+")")
		binds = append(binds, rowVals...)
	}

	sqlText := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(colList, ", "), strings.Join(rowSQLs, ", "))
	res, err := a.exec(ctx, "documentsCreate", sqlText, binds...)
	if err != nil {
		return mapError(err)
	}
	if firstID, err := res.LastInsertId(); err == nil && firstID > 0 {
		for i, d := range docs {
			d.InternalID = firstID + int64(i)
		}
	}
	for _, d := range docs {
		if err := a.insertPermissions(ctx, collection, d.ID, d.Permissions); err != nil {
			return err
		}
	}
	return nil
}

// UpdateDocument writes the changed columns and reconciles permission rows
// to exactly the document's desired set, per §4.9 and §8's invariant 3.
func (a *Adapter) UpdateDocument(ctx context.Context, collection string, doc *adapter.Document) (*adapter.Document, error) {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return nil, err
	}
	table := a.dataTable(collection)

	sets := []string{a.quote("_updatedAt") + " = ?", a.quote("_permissions") + " = ?"}
	binds := []any{doc.UpdatedAt, permissionsJSON(doc.Permissions)}

	var attrNames []string
	for name := range doc.Attributes {
		attrNames = append(attrNames, name)
	}
	sort.Strings(attrNames)
	for _, name := range attrNames {
		sets = append(sets, a.quote(name)+" = ?")
		binds = append(binds, attributeSQLValue(doc.Attributes[name]))
	}

	where := a.quote("_uid") + " = ?"
	binds = append(binds, doc.ID)
	if a.cfg.SharedTables {
		where += " AND " + a.quote("_tenant") + " = ?"
		binds = append(binds, a.tenantID())
	}

	sqlText := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(sets, ", "), where)
	if _, err := a.exec(ctx, "documentUpdate", sqlText, binds...); err != nil {
		return nil, mapError(err)
	}

	current, err := a.currentPermissions(ctx, collection, doc.ID)
	if err != nil {
		return nil, err
	}
	toRemove, toAdd := adapter.DiffPermissions(current, doc.Permissions)
	if err := a.deletePermissions(ctx, collection, doc.ID, toRemove); err != nil {
		return nil, err
	}
	if err := a.insertPermissions(ctx, collection, doc.ID, toAdd); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDocuments applies patch to every listed document and, when
// permissions is non-nil, replaces their permission rows wholesale.
func (a *Adapter) UpdateDocuments(ctx context.Context, collection string, ids []string, patch map[string]adapter.AttributeValue, permissions []string) (int64, error) {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	table := a.dataTable(collection)

	sets := []string{a.quote("_updatedAt") + " = ?"}
	binds := []any{time.Now().UTC()}

	var patchNames []string
	for name := range patch {
		patchNames = append(patchNames, name)
	}
	sort.Strings(patchNames)
	for _, name := range patchNames {
		sets = append(sets, a.quote(name)+" = ?")
		binds = append(binds, attributeSQLValue(patch[name]))
	}

	placeholders := make([]string, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		binds = append(binds, id)
	}
	where := a.quote("_uid") + " IN (" + strings.Join(placeholders, ", ") + ")"
	if a.cfg.SharedTables {
		where += " AND " + a.quote("_tenant") + " = ?"
		binds = append(binds, a.tenantID())
	}

	sqlText := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(sets, ", "), where)
	res, err := a.exec(ctx, "documentsUpdate", sqlText, binds...)
	if err != nil {
		return 0, mapError(err)
	}
	n, _ := res.RowsAffected()

	if permissions != nil {
		if err := a.deleteAllPermissions(ctx, collection, ids); err != nil {
			return n, err
		}
		for _, id := range ids {
			if err := a.insertPermissions(ctx, collection, id, permissions); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// IncreaseDocumentAttribute implements §4.9's atomic clamp-and-increment via
// a CASE expression, returning whether a row was affected.
func (a *Adapter) IncreaseDocumentAttribute(ctx context.Context, collection, id, attr string, delta float64, min, max *float64) (bool, error) {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return false, err
	}
	attr, err = idfilter.Filter(attr)
	if err != nil {
		return false, err
	}
	table := a.dataTable(collection)
	col := a.quote(attr)

	var caseExpr strings.Builder
	var caseBinds []any
	caseExpr.WriteString("CASE")
	if max != nil {
		caseExpr.WriteString(fmt.Sprintf(" WHEN (%s + ?) > ? THEN ?", col))
		caseBinds = append(caseBinds, delta, *max, *max)
	}
	if min != nil {
		caseExpr.WriteString(fmt.Sprintf(" WHEN (%s + ?) < ? THEN ?", col))
		caseBinds = append(caseBinds, delta, *min, *min)
	}
	caseExpr.WriteString(fmt.Sprintf(" ELSE (%s + ?) END", col))
	caseBinds = append(caseBinds, delta)

	where := a.quote("_uid") + " = ?"
	whereBinds := []any{id}
	if a.cfg.SharedTables {
		where += " AND " + a.quote("_tenant") + " = ?"
		whereBinds = append(whereBinds, a.tenantID())
	}

	binds := append([]any{}, caseBinds...)
	binds = append(binds, time.Now().UTC())
	binds = append(binds, whereBinds...)

	sqlText := fmt.Sprintf("UPDATE %s SET %s = %s, %s = ? WHERE %s", table, col, caseExpr.String(), a.quote("_updatedAt"), where)
	res, err := a.exec(ctx, "documentUpdate", sqlText, binds...)
	if err != nil {
		return false, mapError(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (a *Adapter) DeleteDocument(ctx context.Context, collection, id string) error {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return err
	}
	table := a.dataTable(collection)
	where := a.quote("_uid") + " = ?"
	binds := []any{id}
	if a.cfg.SharedTables {
		where += " AND " + a.quote("_tenant") + " = ?"
		binds = append(binds, a.tenantID())
	}
	sqlText := fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
	if _, err := a.exec(ctx, "documentDelete", sqlText, binds...); err != nil {
		return mapError(err)
	}
	return a.deleteAllPermissions(ctx, collection, []string{id})
}

func (a *Adapter) DeleteDocuments(ctx context.Context, collection string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return 0, err
	}
	table := a.dataTable(collection)
	placeholders := make([]string, len(ids))
	binds := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		binds[i] = id
	}
	where := a.quote("_uid") + " IN (" + strings.Join(placeholders, ", ") + ")"
	if a.cfg.SharedTables {
		where += " AND " + a.quote("_tenant") + " = ?"
		binds = append(binds, a.tenantID())
	}
	sqlText := fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
	res, err := a.exec(ctx, "documentsDelete", sqlText, binds...)
	if err != nil {
		return 0, mapError(err)
	}
	n, _ := res.RowsAffected()
	if err := a.deleteAllPermissions(ctx, collection, ids); err != nil {
		return n, err
	}
	return n, nil
}

func (a *Adapter) insertPermissions(ctx context.Context, collection, docID string, perms []string) error {
	if len(perms) == 0 {
		return nil
	}
	table := a.permsTable(collection)
	cols := []string{"_document", "_type", "_permission"}
	if a.cfg.SharedTables {
		cols = append(cols, "_tenant")
	}
	var rowSQLs []string
	var binds []any
	for _, p := range perms {
		action, role, ok := adapter.ParsePermission(p)
		if !ok {
			continue
		}
		vals := []any{docID, action, role}
		if a.cfg.SharedTables {
			vals = append(vals, a.tenantID())
		}
		placeholders := make([]string, len(vals))
		for i := range placeholders {
			placeholders[i] = "?"
		}
		rowSQLs = append(rowSQLs, "("+strings.Join(placeholders, ", ")+")")
		binds = append(binds, vals...)
	}
	if len(rowSQLs) == 0 {
		return nil
	}
	colList := make([]string, len(cols))
	for i, c := range cols {
		colList[i] = a.quote(c)
	}
	sqlText := fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES %s", table, strings.Join(colList, ", "), strings.Join(rowSQLs, ", "))
	_, err := a.exec(ctx, "permissionsCreate", sqlText, binds...)
	return mapError(err)
}

func (a *Adapter) deletePermissions(ctx context.Context, collection, docID string, perms []string) error {
	if len(perms) == 0 {
		return nil
	}
	table := a.permsTable(collection)
	var clauses []string
	var clauseBinds []any
	for _, p := range perms {
		action, role, ok := adapter.ParsePermission(p)
		if !ok {
			continue
		}
		clauses = append(clauses, "(_type = ? AND _permission = ?)")
		clauseBinds = append(clauseBinds, action, role)
	}
	if len(clauses) == 0 {
		return nil
	}
	where := a.quote("_document") + " = ? AND (" + strings.Join(clauses, " OR ") + ")"
	binds := append([]any{docID}, clauseBinds...)
	sqlText := fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
	_, err := a.exec(ctx, "permissionsDelete", sqlText, binds...)
	return mapError(err)
}

func (a *Adapter) deleteAllPermissions(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	table := a.permsTable(collection)
	placeholders := make([]string, len(ids))
	binds := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		binds[i] = id
	}
	sqlText := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)", table, a.quote("_document"), strings.Join(placeholders, ", "))
	_, err := a.exec(ctx, "permissionsDelete", sqlText, binds...)
	return mapError(err)
}

func (a *Adapter) currentPermissions(ctx context.Context, collection, docID string) ([]string, error) {
	table := a.permsTable(collection)
	where := a.quote("_document") + " = ?"
	binds := []any{docID}
	if a.cfg.SharedTables {
		where += " AND " + a.quote("_tenant") + " = ?"
		binds = append(binds, a.tenantID())
	}
	sqlText := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s", a.quote("_type"), a.quote("_permission"), table, where)
	rows, err := a.query(ctx, "permissionsList", sqlText, binds...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	var perms []string
	for rows.Next() {
		var action, role string
		if err := rows.Scan(&action, &role); err != nil {
			return nil, mapError(err)
		}
		perms = append(perms, adapter.FormatPermission(action, role))
	}
	return perms, rows.Err()
}

// buildFilterAndPermissions compiles the query filters and appends the
// permissions predicate, returning the next unused placeholder number.
func (a *Adapter) buildFilterAndPermissions(collection string, opts adapter.FindOptions, alias string) (string, []any, int, error) {
	conds, binds, next, err := dialect.CompileConditions(a.dialect, opts.Queries, 1, alias)
	if err != nil {
		return "", nil, 0, err
	}
	var clauses []string
	if conds != "" {
		clauses = append(clauses, conds)
	}

	action := opts.ForPermission
	if action == "" {
		action = "read"
	}
	// The "OR _tenant IS NULL" branch is reserved for the metadata
	// collection, in both the permissions and the tenant predicate (§9).
	includeNull := collection == "_metadata"
	permPred, permBinds := dialect.BuildPermissionsPredicate(a.dialect, alias, a.permsTable(collection), opts.Roles, action, a.cfg.SharedTables, includeNull, next, a.tenantID())
	clauses = append(clauses, permPred)
	binds = append(binds, permBinds...)
	if a.cfg.SharedTables {
		next++
	}

	if a.cfg.SharedTables {
		tenantPred, tenantBinds := dialect.BuildTenantPredicate(a.dialect, alias, includeNull, next, a.tenantID())
		clauses = append(clauses, tenantPred)
		binds = append(binds, tenantBinds...)
		next++
	}

	if len(clauses) == 0 {
		return "1=1", binds, next, nil
	}
	return strings.Join(clauses, " AND "), binds, next, nil
}

func cursorValue(doc *adapter.Document, attr string) any {
	switch attr {
	case "$id":
		return doc.ID
	case "$internalId":
		return doc.InternalID
	case "$createdAt":
		return doc.CreatedAt
	case "$updatedAt":
		return doc.UpdatedAt
	case "$tenant":
		if doc.Tenant != nil {
			return *doc.Tenant
		}
		return nil
	default:
		if v, ok := doc.Attributes[attr]; ok {
			return v.Native()
		}
		return nil
	}
}

// cursorPredicate renders the keyset predicate of §4.10 against the first
// order attribute (defaulting to $internalId when no order was requested).
func (a *Adapter) cursorPredicate(alias string, opts adapter.FindOptions, startParam int) (string, []any, int, error) {
	if opts.Cursor == nil {
		return "", nil, 0, nil
	}
	orderAttr := "$internalId"
	orderDir := "ASC"
	if len(opts.OrderAttributes) > 0 {
		orderAttr = opts.OrderAttributes[0]
	}
	if len(opts.OrderTypes) > 0 {
		orderDir = opts.OrderTypes[0]
	}

	after := opts.CursorDirection != "before"
	cmp := "<"
	if (orderDir != "DESC" && after) || (orderDir == "DESC" && !after) {
		cmp = ">"
	}

	resolved := dialect.ResolveAttribute(orderAttr)
	col := a.quote(resolved)
	if alias != "" {
		col = alias + "." + col
	}

	clause, binds, consumed := dialect.BuildKeysetPredicate(a.dialect, alias, col, cmp, cursorValue(opts.Cursor, orderAttr), opts.Cursor.InternalID, startParam)
	return clause, binds, consumed, nil
}

// orderByClause renders ORDER BY, always tiebreaking on _id. When invert is
// true (CURSOR_BEFORE), every direction is flipped so LIMIT takes the
// correct end of the window; the caller reverses the scanned rows
// afterwards to restore caller-visible order, per §4.10.
func (a *Adapter) orderByClause(opts adapter.FindOptions, alias string, invert bool) string {
	var parts []string
	for i, attr := range opts.OrderAttributes {
		dir := "ASC"
		if i < len(opts.OrderTypes) {
			dir = opts.OrderTypes[i]
		}
		if invert {
			if dir == "DESC" {
				dir = "ASC"
			} else {
				dir = "DESC"
			}
		}
		resolved := dialect.ResolveAttribute(attr)
		col := a.quote(resolved)
		if alias != "" {
			col = alias + "." + col
		}
		parts = append(parts, col+" "+dir)
	}
	idDir := "ASC"
	if invert {
		idDir = "DESC"
	}
	idCol := a.quote("_id")
	if alias != "" {
		idCol = alias + "." + idCol
	}
	parts = append(parts, idCol+" "+idDir)
	return strings.Join(parts, ", ")
}

// Find implements §4.1's find: compiled filters, permissions predicate,
// optional keyset pagination, projection, ordering, limit/offset.
func (a *Adapter) Find(ctx context.Context, collection string, opts adapter.FindOptions) ([]*adapter.Document, error) {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return nil, err
	}
	alias := "table_main"
	table := a.dataTable(collection)

	where, binds, next, err := a.buildFilterAndPermissions(collection, opts, alias)
	if err != nil {
		return nil, err
	}

	if opts.Cursor != nil {
		clause, cursorBinds, consumed, err := a.cursorPredicate(alias, opts, next)
		if err != nil {
			return nil, err
		}
		if clause != "" {
			where += " AND " + clause
			binds = append(binds, cursorBinds...)
			next += consumed
		}
	}

	before := opts.CursorDirection == "before"
	projection := dialect.BuildProjection(a.dialect, opts.Selections, alias)
	order := a.orderByClause(opts, alias, before)

	sqlText := fmt.Sprintf("SELECT %s FROM %s AS %s WHERE %s ORDER BY %s", projection, table, alias, where, order)
	if opts.Limit > 0 {
		sqlText += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		sqlText += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}

	rows, err := a.query(ctx, "documentFind", sqlText, binds...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	if before {
		for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
			docs[i], docs[j] = docs[j], docs[i]
		}
	}
	return docs, nil
}

func (a *Adapter) Count(ctx context.Context, collection string, opts adapter.FindOptions, max int) (int64, error) {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return 0, err
	}
	alias := "table_main"
	table := a.dataTable(collection)
	where, binds, _, err := a.buildFilterAndPermissions(collection, opts, alias)
	if err != nil {
		return 0, err
	}
	sqlText := fmt.Sprintf("SELECT COUNT(*) FROM %s AS %s WHERE %s", table, alias, where)
	if max > 0 {
		sqlText = fmt.Sprintf("SELECT COUNT(*) FROM (SELECT 1 FROM %s AS %s WHERE %s LIMIT %d) AS limited", table, alias, where, max)
	}
	return a.scanInt64(ctx, "documentCount", sqlText, binds...)
}

func (a *Adapter) Sum(ctx context.Context, collection, attr string, opts adapter.FindOptions, max int) (float64, error) {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return 0, err
	}
	attr, err = idfilter.Filter(attr)
	if err != nil {
		return 0, err
	}
	alias := "table_main"
	table := a.dataTable(collection)
	where, binds, _, err := a.buildFilterAndPermissions(collection, opts, alias)
	if err != nil {
		return 0, err
	}
	col := alias + "." + a.quote(attr)
	sqlText := fmt.Sprintf("SELECT SUM(%s) FROM %s AS %s WHERE %s", col, table, alias, where)
	if max > 0 {
		sqlText = fmt.Sprintf("SELECT SUM(%s) FROM (SELECT %s FROM %s AS %s WHERE %s LIMIT %d) AS limited", col, col, table, alias, where, max)
	}
	row := a.queryRow(ctx, "documentSum", sqlText, binds...)
	var sum sql.NullFloat64
	if err := row.Scan(&sum); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, mapError(err)
	}
	return sum.Float64, nil
}

func (a *Adapter) GetDocument(ctx context.Context, collection, id string, opts adapter.FindOptions, forUpdate bool) (*adapter.Document, error) {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return nil, err
	}
	alias := "table_main"
	table := a.dataTable(collection)

	where, binds, next, err := a.buildFilterAndPermissions(collection, opts, alias)
	if err != nil {
		return nil, err
	}
	idCol := alias + "." + a.quote("_uid")
	where += fmt.Sprintf(" AND %s = %s", idCol, a.dialect.Placeholder(next))
	binds = append(binds, id)

	projection := dialect.BuildProjection(a.dialect, opts.Selections, alias)
	sqlText := fmt.Sprintf("SELECT %s FROM %s AS %s WHERE %s LIMIT 1", projection, table, alias, where)
	if forUpdate {
		sqlText += " FOR UPDATE"
	}

	rows, err := a.query(ctx, "documentRead", sqlText, binds...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}
