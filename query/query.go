// Package query implements the structured query AST of §4.5: filters,
// logical groups, and modifiers, plus the JSON wire form the façade passes
// across the adapter boundary.
package query

import "fmt"

// Method is one of the recognized query methods.
type Method string

const (
	Equal          Method = "equal"
	NotEqual       Method = "notEqual"
	Lesser         Method = "lesser"
	LesserEqual    Method = "lesserEqual"
	Greater        Method = "greater"
	GreaterEqual   Method = "greaterEqual"
	Search         Method = "search"
	Between        Method = "between"
	IsNull         Method = "isNull"
	IsNotNull      Method = "isNotNull"
	StartsWith     Method = "startsWith"
	EndsWith       Method = "endsWith"
	Contains       Method = "contains"
	And            Method = "and"
	Or             Method = "or"
	Select         Method = "select"
	OrderAsc       Method = "orderAsc"
	OrderDesc      Method = "orderDesc"
	Limit          Method = "limit"
	Offset         Method = "offset"
	CursorAfter    Method = "cursorAfter"
	CursorBefore   Method = "cursorBefore"
)

var filterMethods = map[Method]bool{
	Equal: true, NotEqual: true, Lesser: true, LesserEqual: true,
	Greater: true, GreaterEqual: true, Search: true, Between: true,
	IsNull: true, IsNotNull: true, StartsWith: true, EndsWith: true,
	Contains: true,
}

var logicalMethods = map[Method]bool{And: true, Or: true}

var modifierMethods = map[Method]bool{
	Select: true, OrderAsc: true, OrderDesc: true, Limit: true,
	Offset: true, CursorAfter: true, CursorBefore: true,
}

// IsMethod reports whether name is a recognized query method, per §4.5's
// "isMethod(name)" recognizer.
func IsMethod(name string) bool {
	m := Method(name)
	return filterMethods[m] || logicalMethods[m] || modifierMethods[m]
}

// Query is one node of the query AST: a filter, a logical group, or a
// modifier. Exactly one of the value-shaped fields is populated, matching
// the method.
type Query struct {
	Method    Method
	Attribute string
	Values    []any
	Queries   []*Query // nested, for And/Or

	onArray bool // set by the façade/caller when the target attribute is array-typed
}

// NewFilter builds a terminal filter query, e.g. NewFilter(Equal, "name", "hi").
func NewFilter(method Method, attribute string, values ...any) *Query {
	return &Query{Method: method, Attribute: attribute, Values: values}
}

// NewGroup builds And/Or over nested queries.
func NewGroup(method Method, nested ...*Query) *Query {
	return &Query{Method: method, Queries: nested}
}

// NewModifier builds Select/OrderAsc/.../CursorAfter modifiers.
func NewModifier(method Method, values ...any) *Query {
	return &Query{Method: method, Values: values}
}

// SetOnArray marks this filter as targeting an array-typed attribute,
// dispatching contains() to array-containment semantics per §4.5.
func (q *Query) SetOnArray(onArray bool) { q.onArray = onArray }

// OnArray reports whether the target attribute is array-typed.
func (q *Query) OnArray() bool { return q.onArray }

// IsFilter, IsLogical, IsModifier classify the node.
func (q *Query) IsFilter() bool   { return filterMethods[q.Method] }
func (q *Query) IsLogical() bool  { return logicalMethods[q.Method] }
func (q *Query) IsModifier() bool { return modifierMethods[q.Method] }

// Value returns the first value, or nil.
func (q *Query) Value() any {
	if len(q.Values) == 0 {
		return nil
	}
	return q.Values[0]
}

// ValidationError is a typed parse/validation failure, mirroring the
// teacher's lexer.ParseError shape but for query JSON instead of OQL tokens.
type ValidationError struct {
	Method string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query method %q: %s", e.Method, e.Reason)
}
