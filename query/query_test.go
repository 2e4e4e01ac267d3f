package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMethod(t *testing.T) {
	assert.True(t, IsMethod("equal"))
	assert.True(t, IsMethod("orderAsc"))
	assert.True(t, IsMethod("cursorBefore"))
	assert.False(t, IsMethod("bogus"))
}

func TestParseJSONRoundTrip(t *testing.T) {
	raw := []byte(`{"method":"equal","attribute":"name","values":["hi"]}`)
	q, err := ParseJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, Equal, q.Method)
	assert.Equal(t, "name", q.Attribute)
	assert.Equal(t, []any{"hi"}, q.Values)

	out, err := q.MarshalJSON()
	require.NoError(t, err)
	q2, err := ParseJSON(out)
	require.NoError(t, err)
	assert.Equal(t, q.Method, q2.Method)
	assert.Equal(t, q.Attribute, q2.Attribute)
}

func TestParseJSONUnknownMethod(t *testing.T) {
	_, err := ParseJSON([]byte(`{"method":"bogus"}`))
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestParseJSONNestedAnd(t *testing.T) {
	raw := []byte(`{"method":"and","values":[{"method":"equal","attribute":"a","values":[1]},{"method":"equal","attribute":"b","values":[2]}]}`)
	q, err := ParseJSON(raw)
	require.NoError(t, err)
	require.True(t, q.IsLogical())
	require.Len(t, q.Queries, 2)
	assert.Equal(t, "a", q.Queries[0].Attribute)
}

func TestGroup(t *testing.T) {
	queries := []*Query{
		NewFilter(Equal, "name", "hi"),
		NewModifier(OrderAsc, "name").setAttr("name"),
		NewModifier(Limit, 10),
		NewModifier(Offset, 5),
		NewModifier(CursorAfter, "cursor-id"),
	}
	g := Group(queries)
	assert.Len(t, g.Filters, 1)
	assert.Equal(t, []string{"name"}, g.OrderAttributes)
	assert.Equal(t, []OrderDirection{Asc}, g.OrderTypes)
	assert.Equal(t, 10, g.Limit)
	assert.Equal(t, 5, g.Offset)
	assert.Equal(t, "cursor-id", g.Cursor)
	assert.Equal(t, CursorDirectionAfter, g.CursorDirection)
}

// setAttr is a tiny test helper since NewModifier doesn't take an attribute.
func (q *Query) setAttr(attr string) *Query {
	q.Attribute = attr
	return q
}
