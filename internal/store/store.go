// Package store holds the document store backends for blog records.
package store

import (
	"errors"
	"strings"

	"github.com/2beens/blogsave/internal/blog"
)

var (
	_ blog.RecordStore = (*FirebaseStore)(nil)
	_ blog.RecordStore = (*PsqlStore)(nil)
	_ blog.RecordStore = (*RedisStore)(nil)
	_ blog.RecordStore = (*SqliteStore)(nil)
)

var ErrNilRecord = errors.New("nil record")

func validRecord(record *blog.Record) error {
	if record == nil {
		return ErrNilRecord
	}
	if record.ID == "" {
		return errors.New("record id empty")
	}
	return nil
}

func recordPath(root, id string) string {
	return strings.TrimRight(root, "/") + "/" + id
}
