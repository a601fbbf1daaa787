package blog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/2beens/blogsave/internal/telemetry/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRepo_SaveRecord_ListRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	metricsManager := metrics.NewTestManager()
	repo := NewRepo(store, metricsManager)

	before := time.Now().Add(-time.Second)
	repo.SaveRecord(ctx, "Write about cats", "Cats are great.")

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	for id, record := range records {
		assert.Equal(t, id, record.ID)
		_, err := uuid.Parse(record.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Write about cats", record.Title)
		assert.Equal(t, "Cats are great.", record.Content)
		assert.True(t, before.Before(record.Timestamp.Time), "%v should be before %v", before, record.Timestamp)
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRecordsSaved))
	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.CounterRecordSaveFailures))
}

func TestRepo_SaveRecord_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	repo := NewRepo(store, nil)

	for i := 0; i < 1000; i++ {
		repo.SaveRecord(ctx, gofakeit.Sentence(5), gofakeit.Paragraph(1, 3, 20, " "))
	}

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1000)
	assert.Equal(t, 1000, store.puts)
}

func TestRepo_SaveRecord_SameTitleTwice(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newMemoryStore(), nil)

	repo.SaveRecord(ctx, "Write about cats", "first")
	repo.SaveRecord(ctx, "Write about cats", "second")

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRepo_SaveRecord_InjectedClockAndID(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	repo := NewRepo(store, nil)

	fixed := time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.UTC)
	repo.now = func() time.Time { return fixed }
	repo.newID = func() string { return "fixed-id" }

	repo.SaveRecord(ctx, "t", "c")

	require.Contains(t, store.records, "fixed-id")
	assert.Equal(t, fixed, store.records["fixed-id"].Timestamp.Time)
}

func TestRepo_SaveRecord_StoreFails(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.putErr = errors.New("permission denied")
	metricsManager := metrics.NewTestManager()
	repo := NewRepo(store, metricsManager)

	assert.NotPanics(t, func() {
		repo.SaveRecord(ctx, "Write about cats", "Cats are great.")
	})

	assert.Equal(t, 1, store.puts)
	assert.Empty(t, store.records)
	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.CounterRecordsSaved))
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRecordSaveFailures))
}

func TestRepo_ListRecords_Empty(t *testing.T) {
	repo := NewRepo(newMemoryStore(), nil)

	records, err := repo.ListRecords(context.Background())
	require.NoError(t, err)
	require.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRepo_ListRecords_StoreFails(t *testing.T) {
	store := newMemoryStore()
	storeErr := errors.New("store unreachable")
	store.allErr = storeErr
	repo := NewRepo(store, nil)

	records, err := repo.ListRecords(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, records)
}
