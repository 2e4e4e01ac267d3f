package dialect

import "strings"

// BuildPermissionsPredicate renders §4.2's permissions predicate:
//
//	table_main._uid IN (
//	  SELECT _document FROM <name>_perms
//	  WHERE _permission IN (<roles>) AND _type = '<action>'
//	  [AND (_tenant = ? OR _tenant IS NULL)]
//	)
//
// Roles are inlined as SQL string literals (the caller has already
// validated them — they are role expressions, never raw user input); "any"
// is always implicitly included. When sharedTables is true, a tenant-scoped
// clause using the next placeholder is appended; allowNullTenant controls
// whether "OR _tenant IS NULL" is included; both backends set it only for
// the metadata collection (§9).
func BuildPermissionsPredicate(d Dialect, tableAlias, permsTable string, roles []string, action string, sharedTables bool, allowNullTenant bool, tenantParamNum int, tenantID any) (string, []any) {
	roleSet := map[string]bool{"any": true}
	for _, r := range roles {
		roleSet[r] = true
	}
	literals := make([]string, 0, len(roleSet))
	for r := range roleSet {
		literals = append(literals, "'"+escapeLiteral(r)+"'")
	}

	var b strings.Builder
	b.WriteString(qualify(tableAlias, "_uid"))
	b.WriteString(" IN (SELECT _document FROM ")
	b.WriteString(permsTable)
	b.WriteString(" WHERE _permission IN (")
	b.WriteString(strings.Join(literals, ", "))
	b.WriteString(") AND _type = '")
	b.WriteString(escapeLiteral(action))
	b.WriteString("'")

	var binds []any
	if sharedTables {
		if allowNullTenant {
			b.WriteString(" AND (_tenant = ")
			b.WriteString(d.Placeholder(tenantParamNum))
			b.WriteString(" OR _tenant IS NULL)")
		} else {
			b.WriteString(" AND _tenant = ")
			b.WriteString(d.Placeholder(tenantParamNum))
		}
		binds = append(binds, tenantID)
	}
	b.WriteString(")")
	return b.String(), binds
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// BuildTenantPredicate renders §4.10's shared-table tenancy clause:
//
//	(table_main._tenant = ? OR table_main._tenant IS NULL)
//
// allowNullTenant is false for ordinary collections and true only for the
// metadata collection, per the canonical Postgres rule (§9).
func BuildTenantPredicate(d Dialect, tableAlias string, allowNullTenant bool, paramNum int, tenantID any) (string, []any) {
	col := qualify(tableAlias, "_tenant")
	ph := d.Placeholder(paramNum)
	if allowNullTenant {
		return "(" + col + " = " + ph + " OR " + col + " IS NULL)", []any{tenantID}
	}
	return col + " = " + ph, []any{tenantID}
}
