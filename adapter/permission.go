package adapter

import "regexp"

// permissionPattern mirrors the façade's (\w+)\("([^"]+)"\) regex (§6) used
// to diff permission strings like read("any") or update("user:123").
var permissionPattern = regexp.MustCompile(`^(\w+)\("([^"]+)"\)$`)

// PermissionAction enumerates the fixed _type enumeration of §3.
type PermissionAction string

const (
	ActionCreate PermissionAction = "create"
	ActionRead   PermissionAction = "read"
	ActionUpdate PermissionAction = "update"
	ActionDelete PermissionAction = "delete"
	ActionWrite  PermissionAction = "write"
)

// ParsePermission splits a permission string into its action and role, e.g.
// ParsePermission(`read("any")`) -> ("read", "any", true).
func ParsePermission(s string) (action string, role string, ok bool) {
	m := permissionPattern.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// FormatPermission is the inverse of ParsePermission.
func FormatPermission(action, role string) string {
	return string(action) + `("` + role + `")`
}

// DiffPermissions computes the rows to delete and insert to move a
// document's permission set from current to desired, per §4.9's
// updateDocument semantics (invariant 3 of §8: final rows equal desired
// exactly, no duplicates).
func DiffPermissions(current, desired []string) (toRemove, toAdd []string) {
	curSet := map[string]bool{}
	for _, p := range current {
		curSet[p] = true
	}
	desSet := map[string]bool{}
	for _, p := range desired {
		desSet[p] = true
	}
	for p := range curSet {
		if !desSet[p] {
			toRemove = append(toRemove, p)
		}
	}
	for p := range desSet {
		if !curSet[p] {
			toAdd = append(toAdd, p)
		}
	}
	return toRemove, toAdd
}
