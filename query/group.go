package query

// CursorDirection selects keyset pagination direction (§4.10).
type CursorDirection string

const (
	CursorDirectionAfter  CursorDirection = "after"
	CursorDirectionBefore CursorDirection = "before"
)

// OrderDirection is ASC or DESC.
type OrderDirection string

const (
	Asc  OrderDirection = "ASC"
	Desc OrderDirection = "DESC"
)

// Grouped is the partitioned shape the adapter's find/count/sum consume,
// per §4.5's grouping routine.
type Grouped struct {
	Filters         []*Query
	Selections      []string
	Limit           int
	Offset          int
	OrderAttributes []string
	OrderTypes      []OrderDirection
	Cursor          any
	CursorDirection CursorDirection
}

// Group partitions a flat query list into filters, selections, and
// modifiers. Nested And/Or queries are kept intact as single filter entries
// (their children are compiled recursively by the dialect condition
// compiler, not flattened here).
func Group(queries []*Query) *Grouped {
	g := &Grouped{CursorDirection: CursorDirectionAfter}
	for _, q := range queries {
		switch {
		case q.IsFilter() || q.IsLogical():
			g.Filters = append(g.Filters, q)
		case q.Method == Select:
			for _, v := range q.Values {
				if s, ok := v.(string); ok {
					g.Selections = append(g.Selections, s)
				}
			}
		case q.Method == OrderAsc:
			g.OrderAttributes = append(g.OrderAttributes, q.Attribute)
			g.OrderTypes = append(g.OrderTypes, Asc)
		case q.Method == OrderDesc:
			g.OrderAttributes = append(g.OrderAttributes, q.Attribute)
			g.OrderTypes = append(g.OrderTypes, Desc)
		case q.Method == Limit:
			if n, ok := q.Value().(int); ok {
				g.Limit = n
			} else if f, ok := q.Value().(float64); ok {
				g.Limit = int(f)
			}
		case q.Method == Offset:
			if n, ok := q.Value().(int); ok {
				g.Offset = n
			} else if f, ok := q.Value().(float64); ok {
				g.Offset = int(f)
			}
		case q.Method == CursorAfter:
			g.Cursor = q.Value()
			g.CursorDirection = CursorDirectionAfter
		case q.Method == CursorBefore:
			g.Cursor = q.Value()
			g.CursorDirection = CursorDirectionBefore
		}
	}
	return g
}
