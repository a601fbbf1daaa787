package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/blogsave/internal/telemetry/metrics"
	"github.com/2beens/blogsave/internal/telemetry/tracing"
)

// RecordStore is the document store holding the records collection.
// Put writes the record under its ID, All returns the whole collection keyed by ID.
type RecordStore interface {
	Put(ctx context.Context, record *Record) error
	All(ctx context.Context) (map[string]*Record, error)
}

var _ recordsRepo = (*Repo)(nil)

type Repo struct {
	store          RecordStore
	metricsManager *metrics.Manager
	now            func() time.Time
	newID          func() string
}

func NewRepo(store RecordStore, metricsManager *metrics.Manager) *Repo {
	return &Repo{
		store:          store,
		metricsManager: metricsManager,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// SaveRecord stores a new record with a fresh ID and the current time.
// A failed write is logged and counted, callers are never told about it.
func (r *Repo) SaveRecord(ctx context.Context, title, content string) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.saveRecord")
	defer span.End()

	record := &Record{
		ID:        r.newID(),
		Title:     title,
		Content:   content,
		Timestamp: NewTimestamp(r.now()),
	}
	span.SetAttributes(attribute.String("record.id", record.ID))

	if err := r.store.Put(ctx, record); err != nil {
		span.RecordError(err)
		log.Errorf("save record %s: %s", record.ID, err)
		if r.metricsManager != nil {
			r.metricsManager.CounterRecordSaveFailures.Inc()
		}
		return
	}

	log.Infof("record saved with id: %s", record.ID)
	if r.metricsManager != nil {
		r.metricsManager.CounterRecordsSaved.Inc()
	}
}

// ListRecords returns every stored record keyed by ID. An empty store
// yields an empty map.
func (r *Repo) ListRecords(ctx context.Context) (map[string]*Record, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.listRecords")
	defer span.End()

	records, err := r.store.All(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	if records == nil {
		records = make(map[string]*Record)
	}
	span.SetAttributes(attribute.Int("records.count", len(records)))

	return records, nil
}
