package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/2beens/blogsave/internal/blog"
)

const (
	sqliteBusyTimeoutMS   = 5000
	sqliteConnMaxLifetime = 5 * time.Minute
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS blog_record (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL
);`

// SqliteStore is a single file store meant for local development.
type SqliteStore struct {
	db *sql.DB
}

func OpenSqliteStore(ctx context.Context, path string) (*SqliteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	// pragmas in the DSN are applied to every new connection
	dsn := url.URL{
		Scheme: "file",
		Path:   path,
		RawQuery: url.Values{"_pragma": {
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
			fmt.Sprintf("busy_timeout(%d)", sqliteBusyTimeoutMS),
		}}.Encode(),
	}

	db, err := sql.Open("sqlite", dsn.String())
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(sqliteConnMaxLifetime)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap sqlite: %w", err)
	}

	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SqliteStore) Put(ctx context.Context, record *blog.Record) error {
	if err := validRecord(record); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO blog_record (id, title, content, created_at) VALUES (?, ?, ?, ?);`,
		record.ID, record.Title, record.Content, record.Timestamp.String(),
	); err != nil {
		return fmt.Errorf("insert record %s: %w", record.ID, err)
	}

	return nil
}

func (s *SqliteStore) All(ctx context.Context) (map[string]*blog.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, content, created_at FROM blog_record;`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]*blog.Record)
	for rows.Next() {
		var record blog.Record
		var createdAt string
		if err := rows.Scan(&record.ID, &record.Title, &record.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if record.Timestamp, err = blog.ParseTimestamp(createdAt); err != nil {
			return nil, err
		}
		records[record.ID] = &record
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}
