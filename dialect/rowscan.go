package dialect

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/nuvix/sqldoc/adapter"
)

// reservedColumns names the columns §3 reserves to the core; they are never
// exposed as user attributes (§6's compatibility invariant).
var reservedColumns = map[string]bool{
	"_id": true, "_uid": true, "_tenant": true,
	"_createdAt": true, "_updatedAt": true, "_permissions": true,
}

// Row is the backend-neutral shape a driver row decodes into before
// materialization: column name -> raw scanned value.
type Row map[string]any

// MaterializeDocument implements §4.2's "Row -> document materialization":
// strip and rename reserved columns to $id/$internalId/$tenant/$createdAt/
// $updatedAt, parse _permissions JSON, attach the remainder as attributes.
func MaterializeDocument(row Row) (*adapter.Document, error) {
	doc := adapter.NewDocument("")

	if v, ok := row["_uid"]; ok {
		doc.ID = toString(v)
	}
	if v, ok := row["_id"]; ok {
		doc.InternalID = toInt64(v)
	}
	if v, ok := row["_createdAt"]; ok {
		doc.CreatedAt = toTime(v)
	}
	if v, ok := row["_updatedAt"]; ok {
		doc.UpdatedAt = toTime(v)
	}
	if v, ok := row["_tenant"]; ok && v != nil {
		t := toInt64(v)
		doc.Tenant = &t
	}
	if v, ok := row["_permissions"]; ok && v != nil {
		perms, err := parsePermissionsJSON(v)
		if err != nil {
			return nil, err
		}
		doc.Permissions = perms
	}

	for col, raw := range row {
		if reservedColumns[col] {
			continue
		}
		if b, ok := raw.([]byte); ok {
			raw = string(b)
		}
		val, err := adapter.FromAny(raw)
		if err != nil {
			return nil, err
		}
		doc.SetAttribute(col, val)
	}

	return doc, nil
}

func parsePermissionsJSON(v any) ([]string, error) {
	var raw []byte
	switch t := v.(type) {
	case []byte:
		raw = t
	case string:
		raw = []byte(t)
	default:
		return nil, nil
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var perms []string
	if err := json.Unmarshal(raw, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case []byte:
		n, _ := strconv.ParseInt(string(t), 10, 64)
		return n
	default:
		return 0
	}
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	default:
		return time.Time{}
	}
}
