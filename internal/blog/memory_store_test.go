package blog

import (
	"context"
	"sync"
)

var _ RecordStore = (*memoryStore)(nil)

type memoryStore struct {
	mutex   sync.Mutex
	records map[string]*Record
	putErr  error
	allErr  error
	puts    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		records: make(map[string]*Record),
	}
}

func (s *memoryStore) Put(_ context.Context, record *Record) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	copied := *record
	s.records[record.ID] = &copied
	return nil
}

func (s *memoryStore) All(_ context.Context) (map[string]*Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.allErr != nil {
		return nil, s.allErr
	}
	if len(s.records) == 0 {
		// mimics a document store returning null for a missing node
		return nil, nil
	}
	all := make(map[string]*Record, len(s.records))
	for id, record := range s.records {
		copied := *record
		all[id] = &copied
	}
	return all, nil
}
