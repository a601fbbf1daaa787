package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogsave/internal/blog"
)

// RedisStore keeps all records in a single hash, field = record ID,
// value = record JSON.
type RedisStore struct {
	redisClient *redis.Client
	key         string
}

func NewRedisStore(redisClient *redis.Client, recordsPath string) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
		key:         recordsPath,
	}
}

func (s *RedisStore) Put(ctx context.Context, record *blog.Record) error {
	if err := validRecord(record); err != nil {
		return err
	}

	recordJson, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", record.ID, err)
	}

	if err := s.redisClient.HSet(ctx, s.key, record.ID, string(recordJson)).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", record.ID, err)
	}

	return nil
}

func (s *RedisStore) All(ctx context.Context) (map[string]*blog.Record, error) {
	entries, err := s.redisClient.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", s.key, err)
	}

	records := make(map[string]*blog.Record, len(entries))
	for id, recordJson := range entries {
		var record blog.Record
		if err := json.Unmarshal([]byte(recordJson), &record); err != nil {
			// one corrupt entry should not hide the rest of the collection
			log.Errorf("redis store, skipping record %s: %s", id, err)
			continue
		}
		records[id] = &record
	}

	return records, nil
}
