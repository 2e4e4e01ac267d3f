package dialect

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nuvix/sqldoc/query"
)

// CompileConditions implements §4.2's condition compilation: a query tree
// compiled recursively into a parameterized SQL fragment (without the
// leading " WHERE ") and its bind values, in left-to-right AST order.
//
// tableAlias, when non-empty, qualifies every column reference
// (alias.column) — used by find() which always selects FROM ... AS
// table_main.
func CompileConditions(d Dialect, queries []*query.Query, startParam int, tableAlias string) (string, []any, int, error) {
	var parts []string
	var binds []any
	paramNum := startParam

	for _, q := range queries {
		clause, clauseBinds, consumed, err := compileOne(d, q, paramNum, tableAlias)
		if err != nil {
			return "", nil, 0, err
		}
		if clause == "" {
			continue
		}
		if len(parts) == 0 {
			parts = append(parts, clause)
		} else {
			parts = append(parts, "AND "+clause)
		}
		binds = append(binds, clauseBinds...)
		paramNum += consumed
	}

	return strings.Join(parts, " "), binds, paramNum, nil
}

func compileOne(d Dialect, q *query.Query, paramNum int, tableAlias string) (string, []any, int, error) {
	if q.IsLogical() {
		return compileGroup(d, q, paramNum, tableAlias)
	}
	return compileFilter(d, q, paramNum, tableAlias)
}

// compileGroup compiles a nested And/Or group. An empty group compiles to
// the empty string and is omitted from the parent, per §4.2.
func compileGroup(d Dialect, q *query.Query, paramNum int, tableAlias string) (string, []any, int, error) {
	if len(q.Queries) == 0 {
		return "", nil, 0, nil
	}
	logic := "AND"
	if q.Method == query.Or {
		logic = "OR"
	}

	var parts []string
	var binds []any
	consumedTotal := 0
	for _, child := range q.Queries {
		clause, childBinds, consumed, err := compileOne(d, child, paramNum+consumedTotal, tableAlias)
		if err != nil {
			return "", nil, 0, err
		}
		if clause == "" {
			continue
		}
		parts = append(parts, clause)
		binds = append(binds, childBinds...)
		consumedTotal += consumed
	}
	if len(parts) == 0 {
		return "", nil, 0, nil
	}
	return "(" + strings.Join(parts, " "+logic+" ") + ")", binds, consumedTotal, nil
}

func qualify(tableAlias, column string) string {
	if tableAlias == "" {
		return column
	}
	return tableAlias + "." + column
}

func compileFilter(d Dialect, q *query.Query, paramNum int, tableAlias string) (string, []any, int, error) {
	col := qualify(tableAlias, ResolveAttribute(q.Attribute))

	switch q.Method {
	case query.IsNull:
		return fmt.Sprintf("%s IS NULL", col), nil, 0, nil
	case query.IsNotNull:
		return fmt.Sprintf("%s IS NOT NULL", col), nil, 0, nil

	case query.Equal:
		if len(q.Values) > 1 {
			return buildIn(d, col, "IN", q.Values, paramNum)
		}
		ph := d.Placeholder(paramNum)
		return fmt.Sprintf("%s = %s", col, ph), []any{q.Values[0]}, 1, nil

	case query.NotEqual:
		if len(q.Values) > 1 {
			return buildIn(d, col, "NOT IN", q.Values, paramNum)
		}
		ph := d.Placeholder(paramNum)
		return fmt.Sprintf("%s != %s", col, ph), []any{q.Values[0]}, 1, nil

	case query.Lesser:
		return buildComparison(d, col, "<", q.Value(), paramNum)
	case query.LesserEqual:
		return buildComparison(d, col, "<=", q.Value(), paramNum)
	case query.Greater:
		return buildComparison(d, col, ">", q.Value(), paramNum)
	case query.GreaterEqual:
		return buildComparison(d, col, ">=", q.Value(), paramNum)

	case query.Between:
		if len(q.Values) < 2 {
			return "", nil, 0, fmt.Errorf("between requires two values for %q", q.Attribute)
		}
		ph1, ph2 := d.Placeholder(paramNum), d.Placeholder(paramNum+1)
		return fmt.Sprintf("%s BETWEEN %s AND %s", col, ph1, ph2), []any{q.Values[0], q.Values[1]}, 2, nil

	case query.StartsWith:
		return buildLike(d, col, StartsWithPattern(fmt.Sprint(q.Value())), paramNum)
	case query.EndsWith:
		return buildLike(d, col, EndsWithPattern(fmt.Sprint(q.Value())), paramNum)

	case query.Contains:
		if q.OnArray() {
			value, err := json.Marshal(q.Values)
			if err != nil {
				return "", nil, 0, err
			}
			ph := d.Placeholder(paramNum)
			return d.ArrayContainsPredicate(col, ph), []any{string(value)}, 1, nil
		}
		return buildLike(d, col, ContainsPattern(fmt.Sprint(q.Value())), paramNum)

	case query.Search:
		canonical := d.CanonicalizeFulltextValue(fmt.Sprint(q.Value()))
		ph := d.Placeholder(paramNum)
		return d.FulltextPredicate(col, ph), []any{canonical}, 1, nil

	default:
		return "", nil, 0, fmt.Errorf("unsupported filter method %q", q.Method)
	}
}

func buildComparison(d Dialect, col, op string, value any, paramNum int) (string, []any, int, error) {
	ph := d.Placeholder(paramNum)
	return fmt.Sprintf("%s %s %s", col, op, ph), []any{value}, 1, nil
}

func buildLike(d Dialect, col, pattern string, paramNum int) (string, []any, int, error) {
	ph := d.Placeholder(paramNum)
	return fmt.Sprintf("%s %s %s", col, d.LikeOperator(), ph), []any{pattern}, 1, nil
}

func buildIn(d Dialect, col, op string, values []any, paramNum int) (string, []any, int, error) {
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = d.Placeholder(paramNum + i)
	}
	return fmt.Sprintf("%s %s (%s)", col, op, strings.Join(placeholders, ", ")), values, len(values), nil
}

// BuildKeysetPredicate implements §4.10's cursor predicate:
//
//	(col <cmp> ?) OR (col = ? AND _id <cmp> ?)
//
// cmp is ">" for ASC+after or DESC+before, "<" otherwise (the caller
// computes direction; see cursorPredicate in mariadb/dml.go and
// postgres/dml.go).
func BuildKeysetPredicate(d Dialect, tableAlias, col string, cmp string, colValue any, tiebreakValue any, startParam int) (string, []any, int) {
	ph1 := d.Placeholder(startParam)
	ph2 := d.Placeholder(startParam + 1)
	ph3 := d.Placeholder(startParam + 2)
	idCol := qualify(tableAlias, "_id")
	clause := fmt.Sprintf("((%s %s %s) OR (%s = %s AND %s %s %s))", col, cmp, ph1, col, ph2, idCol, cmp, ph3)
	return clause, []any{colValue, colValue, tiebreakValue}, 3
}
