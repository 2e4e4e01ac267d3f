package mariadb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuvix/sqldoc/adapter"
	"github.com/nuvix/sqldoc/mariadb"
	"github.com/nuvix/sqldoc/testutil"
)

func TestMariaDBCollectionAndDocumentLifecycle(t *testing.T) {
	tc := testutil.StartMariaDB(t)
	ctx := context.Background()

	a := mariadb.New(tc.Config)
	require.NoError(t, a.Init(ctx))
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.Ping(ctx))

	attrs := []adapter.Attribute{
		{ID: "title", Type: adapter.TypeString, Size: 255, Required: true},
		{ID: "views", Type: adapter.TypeInteger, Size: 4},
	}
	require.NoError(t, a.CreateCollection(ctx, "articles", attrs, nil, false))

	doc := adapter.NewDocument("article-1")
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	doc.Permissions = []string{`read("any")`}
	doc.Attributes["title"] = adapter.NewStringValue("Hello")
	doc.Attributes["views"] = adapter.NewNumberValue(0)

	created, err := a.CreateDocument(ctx, "articles", doc)
	require.NoError(t, err)
	assert.Equal(t, "article-1", created.ID)
	assert.NotZero(t, created.InternalID)

	got, err := a.GetDocument(ctx, "articles", "article-1", adapter.FindOptions{}, false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Hello", got.Attributes["title"].Native())

	ok, err := a.IncreaseDocumentAttribute(ctx, "articles", "article-1", "views", 1, nil, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	docs, err := a.Find(ctx, "articles", adapter.FindOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.EqualValues(t, 1, docs[0].Attributes["views"].Native())

	require.NoError(t, a.DeleteDocument(ctx, "articles", "article-1"))
	require.NoError(t, a.DropCollection(ctx, "articles", false))
}
