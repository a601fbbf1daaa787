package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/blogsave/internal/blog"
)

func testRecord(id string, ts time.Time) *blog.Record {
	return &blog.Record{
		ID:        id,
		Title:     "Write about cats",
		Content:   "Cats are great.",
		Timestamp: blog.NewTimestamp(ts),
	}
}

func TestRedisStore_Put(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()
	store := NewRedisStore(redisClient, "blogs")

	record := testRecord("id-1", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	recordJson, err := json.Marshal(record)
	require.NoError(t, err)

	mock.ExpectHSet("blogs", "id-1", string(recordJson)).SetVal(1)

	require.NoError(t, store.Put(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Put_Error(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()
	store := NewRedisStore(redisClient, "blogs")

	record := testRecord("id-1", time.Now())
	recordJson, err := json.Marshal(record)
	require.NoError(t, err)

	mock.ExpectHSet("blogs", "id-1", string(recordJson)).SetErr(errors.New("READONLY"))

	err = store.Put(context.Background(), record)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READONLY")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Put_NilRecord(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()
	store := NewRedisStore(redisClient, "blogs")

	assert.ErrorIs(t, store.Put(context.Background(), nil), ErrNilRecord)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_All(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()
	store := NewRedisStore(redisClient, "blogs")

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r1, err := json.Marshal(testRecord("id-1", ts))
	require.NoError(t, err)
	r2, err := json.Marshal(testRecord("id-2", ts.Add(time.Minute)))
	require.NoError(t, err)

	mock.ExpectHGetAll("blogs").SetVal(map[string]string{
		"id-1":    string(r1),
		"id-2":    string(r2),
		"corrupt": "{not json",
	})

	records, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "id-1", records["id-1"].ID)
	assert.Equal(t, "Cats are great.", records["id-2"].Content)
	assert.True(t, ts.Add(time.Minute).Equal(records["id-2"].Timestamp.Time))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_All_Empty(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()
	store := NewRedisStore(redisClient, "blogs")

	mock.ExpectHGetAll("blogs").SetVal(map[string]string{})

	records, err := store.All(context.Background())
	require.NoError(t, err)
	require.NotNil(t, records)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_All_Error(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()
	store := NewRedisStore(redisClient, "blogs")

	mock.ExpectHGetAll("blogs").SetErr(errors.New("connection refused"))

	records, err := store.All(context.Background())
	require.Error(t, err)
	assert.Nil(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
