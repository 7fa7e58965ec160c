package store

import (
	"sync"

	"TariffSentinel/internal/model"
)

// MemoryStore keeps state in process memory only. Used when SQLite is not
// configured or fails to open; guarded values and resolved names then reset
// on restart.
type MemoryStore struct {
	mu     sync.Mutex
	values map[model.SeriesKey]float64
	names  map[model.SeriesKey]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[model.SeriesKey]float64),
		names:  make(map[model.SeriesKey]string),
	}
}

func (s *MemoryStore) LoadValues() (map[model.SeriesKey]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make(map[model.SeriesKey]float64, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	return values, nil
}

func (s *MemoryStore) SaveValue(key model.SeriesKey, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) LoadNames() (map[model.SeriesKey]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make(map[model.SeriesKey]string, len(s.names))
	for k, v := range s.names {
		names[k] = v
	}
	return names, nil
}

func (s *MemoryStore) SaveName(key model.SeriesKey, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[key] = name
	return nil
}

func (s *MemoryStore) Close() error { return nil }
