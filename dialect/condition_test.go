package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuvix/sqldoc/query"
)

// fakeDialect is a minimal Dialect for exercising the shared compiler
// without depending on mariadb/postgres (which import dialect, not the
// other way around).
type fakeDialect struct {
	positional bool
	likeOp     string // defaults to "LIKE" when empty
}

func (f fakeDialect) QuoteIdentifier(name string) string { return "`" + name + "`" }
func (f fakeDialect) Placeholder(n int) string {
	if f.positional {
		return "$" + itoaTest(n)
	}
	return "?"
}
func (f fakeDialect) FulltextPredicate(col, ph string) string {
	return "MATCH(" + col + ") AGAINST (" + ph + ")"
}
func (f fakeDialect) ArrayContainsPredicate(col, ph string) string {
	return col + " @> " + ph
}
func (f fakeDialect) CanonicalizeFulltextValue(raw string) string { return raw }
func (f fakeDialect) LikeOperator() string {
	if f.likeOp == "" {
		return "LIKE"
	}
	return f.likeOp
}

func itoaTest(n int) string {
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if len(digits) == 0 {
		return "0"
	}
	return string(digits)
}

func TestCompileConditionsEqualAndIn(t *testing.T) {
	d := fakeDialect{}
	qs := []*query.Query{query.NewFilter(query.Equal, "name", "alice")}
	sql, binds, _, err := CompileConditions(d, qs, 1, "table_main")
	require.NoError(t, err)
	assert.Equal(t, "table_main.name = ?", sql)
	assert.Equal(t, []any{"alice"}, binds)

	qs = []*query.Query{query.NewFilter(query.Equal, "name", "a", "b", "c")}
	sql, binds, _, err = CompileConditions(d, qs, 1, "table_main")
	require.NoError(t, err)
	assert.Equal(t, "table_main.name IN (?, ?, ?)", sql)
	assert.Equal(t, []any{"a", "b", "c"}, binds)
}

func TestCompileConditionsPostgresPositional(t *testing.T) {
	d := fakeDialect{positional: true}
	qs := []*query.Query{
		query.NewFilter(query.Equal, "a", 1),
		query.NewFilter(query.Equal, "b", 2),
	}
	sql, binds, next, err := CompileConditions(d, qs, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "a = $1 AND b = $2", sql)
	assert.Equal(t, []any{1, 2}, binds)
	assert.Equal(t, 3, next)
}

func TestCompileConditionsNestedOr(t *testing.T) {
	d := fakeDialect{}
	group := query.NewGroup(query.Or,
		query.NewFilter(query.Equal, "a", 1),
		query.NewFilter(query.Equal, "b", 2),
	)
	sql, binds, _, err := CompileConditions(d, []*query.Query{group}, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "(a = ? OR b = ?)", sql)
	assert.Equal(t, []any{1, 2}, binds)
}

func TestCompileConditionsEmptyGroupOmitted(t *testing.T) {
	d := fakeDialect{}
	group := query.NewGroup(query.And)
	other := query.NewFilter(query.Equal, "a", 1)
	sql, _, _, err := CompileConditions(d, []*query.Query{group, other}, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "a = ?", sql)
}

func TestStartsWithEscapesWildcards(t *testing.T) {
	assert.Equal(t, `50\%\_off%`, StartsWithPattern(`50%_off`))
}

func TestBetween(t *testing.T) {
	d := fakeDialect{}
	qs := []*query.Query{query.NewFilter(query.Between, "age", 10, 20)}
	sql, binds, _, err := CompileConditions(d, qs, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "age BETWEEN ? AND ?", sql)
	assert.Equal(t, []any{10, 20}, binds)
}

func TestStartsWithUsesLikeByDefault(t *testing.T) {
	d := fakeDialect{}
	qs := []*query.Query{query.NewFilter(query.StartsWith, "name", "al")}
	sql, binds, _, err := CompileConditions(d, qs, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "name LIKE ?", sql)
	assert.Equal(t, []any{`al%`}, binds)
}

func TestContainsUsesDialectsLikeOperator(t *testing.T) {
	d := fakeDialect{likeOp: "ILIKE"}
	qs := []*query.Query{query.NewFilter(query.Contains, "name", "al")}
	sql, _, _, err := CompileConditions(d, qs, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "name ILIKE ?", sql)
}

func TestArrayContains(t *testing.T) {
	d := fakeDialect{}
	q := query.NewFilter(query.Contains, "tags", "red")
	q.SetOnArray(true)
	sql, binds, _, err := CompileConditions(d, []*query.Query{q}, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "tags @> ?", sql)
	require.Len(t, binds, 1)
	assert.Equal(t, `["red"]`, binds[0])
}

func TestProjectionDefaultsToStar(t *testing.T) {
	d := fakeDialect{}
	assert.Equal(t, "table_main.*", BuildProjection(d, nil, "table_main"))
	assert.Equal(t, "*", BuildProjection(d, []string{"*"}, ""))
}

func TestProjectionAlwaysIncludesUidAndPermissions(t *testing.T) {
	d := fakeDialect{}
	out := BuildProjection(d, []string{"name"}, "table_main")
	assert.Equal(t, "table_main.`_uid`, table_main.`_permissions`, table_main.`name`", out)
}
