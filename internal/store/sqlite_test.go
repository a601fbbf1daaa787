package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/blogsave/internal/blog"
)

func openTestSqliteStore(t *testing.T) *SqliteStore {
	t.Helper()
	store, err := OpenSqliteStore(context.Background(), filepath.Join(t.TempDir(), "blogs.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestSqliteStore_PutAll(t *testing.T) {
	ctx := context.Background()
	store := openTestSqliteStore(t)

	records, err := store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	ts := time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.UTC)
	for i := 0; i < 10; i++ {
		require.NoError(t, store.Put(ctx, &blog.Record{
			ID:        gofakeit.UUID(),
			Title:     gofakeit.Sentence(4),
			Content:   gofakeit.Paragraph(1, 2, 10, " "),
			Timestamp: blog.NewTimestamp(ts.Add(time.Duration(i) * time.Second)),
		}))
	}
	cats := testRecord("cats-id", ts)
	require.NoError(t, store.Put(ctx, cats))

	records, err = store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 11)
	require.Contains(t, records, "cats-id")
	assert.Equal(t, cats.Title, records["cats-id"].Title)
	assert.Equal(t, cats.Content, records["cats-id"].Content)
	assert.True(t, ts.Equal(records["cats-id"].Timestamp.Time))
}

func TestSqliteStore_Put_DuplicateID(t *testing.T) {
	ctx := context.Background()
	store := openTestSqliteStore(t)

	require.NoError(t, store.Put(ctx, testRecord("dup", time.Now())))
	assert.Error(t, store.Put(ctx, testRecord("dup", time.Now())))
}

func TestSqliteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blogs.db")

	store, err := OpenSqliteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, testRecord("persisted", time.Now())))
	require.NoError(t, store.Close())

	store, err = OpenSqliteStore(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	records, err := store.All(ctx)
	require.NoError(t, err)
	assert.Contains(t, records, "persisted")
}

func TestOpenSqliteStore_NoPath(t *testing.T) {
	store, err := OpenSqliteStore(context.Background(), "")
	assert.Error(t, err)
	assert.Nil(t, store)
}
