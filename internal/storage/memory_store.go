package storage

import "fmt"

// MemoryStore is an in-process Provider. Records live only as long as the
// value does.
type MemoryStore struct {
	records map[string][]byte
	loaded  bool

	// FailWrites makes PutRecord return this error when set.
	FailWrites error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (s *MemoryStore) Init() error {
	s.loaded = true
	return nil
}

func (s *MemoryStore) Load() error {
	s.loaded = true
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) GetRecord(key string) ([]byte, error) {
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	data, ok := s.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) PutRecord(key string, data []byte) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.records[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) GetConfigPath() string {
	return ":memory:"
}
