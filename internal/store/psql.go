package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/blogsave/internal/blog"
	"github.com/2beens/blogsave/internal/telemetry/tracing"
)

const psqlSchema = `CREATE TABLE IF NOT EXISTS blog_record (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`

type PsqlStore struct {
	db *pgxpool.Pool
}

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

func (s *PsqlStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, psqlSchema); err != nil {
		return fmt.Errorf("create blog_record table: %w", err)
	}
	return nil
}

func (s *PsqlStore) Put(ctx context.Context, record *blog.Record) error {
	if err := validRecord(record); err != nil {
		return err
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "psqlStore.put")
	defer span.End()
	span.SetAttributes(attribute.String("record.id", record.ID))

	if _, err := s.db.Exec(
		ctx,
		`INSERT INTO blog_record (id, title, content, created_at) VALUES ($1, $2, $3, $4);`,
		record.ID, record.Title, record.Content, record.Timestamp.Time,
	); err != nil {
		return fmt.Errorf("insert record %s: %w", record.ID, err)
	}

	return nil
}

func (s *PsqlStore) All(ctx context.Context) (map[string]*blog.Record, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "psqlStore.all")
	defer span.End()

	rows, err := s.db.Query(ctx, `SELECT id, title, content, created_at FROM blog_record;`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]*blog.Record)
	for rows.Next() {
		var id, title, content string
		var createdAt time.Time
		if err := rows.Scan(&id, &title, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records[id] = &blog.Record{
			ID:        id,
			Title:     title,
			Content:   content,
			Timestamp: blog.NewTimestamp(createdAt),
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	span.SetAttributes(attribute.Int("records.count", len(records)))

	return records, nil
}
