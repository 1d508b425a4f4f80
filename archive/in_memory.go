package archive

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/labinsight/insightmesh/core"
)

// InMemoryStore is an in-process Store useful for tests, examples and
// single-process deployments. Results are kept serialized in a nested map
// guarded by an RWMutex, so callers can never mutate archived state through
// a retained pointer.
//
// Layout: userID -> resultID -> serialized result
//
// It does not enforce retention limits or eviction. For production, prefer a
// durable implementation that survives process restarts.
type InMemoryStore struct {
	mu      sync.RWMutex
	results map[string]map[string][]byte
}

// NewInMemoryStore returns an empty in-memory archive.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{results: make(map[string]map[string][]byte)}
}

// Save implements Store.
func (s *InMemoryStore) Save(userID string, result *core.AdvancedHealthInsights) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.results[userID]; !exists {
		s.results[userID] = make(map[string][]byte)
	}
	s.results[userID][result.ID] = data
	return nil
}

// Get implements Store.
func (s *InMemoryStore) Get(userID, resultID string) (*core.AdvancedHealthInsights, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.results[userID]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := m[resultID]
	if !ok {
		return nil, ErrNotFound
	}
	return decode(data)
}

// List implements Store.
func (s *InMemoryStore) List(userID string, limit int) ([]*core.AdvancedHealthInsights, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := s.results[userID]
	out := make([]*core.AdvancedHealthInsights, 0, len(m))
	for _, data := range m {
		result, err := decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete implements Store.
func (s *InMemoryStore) Delete(userID, resultID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.results[userID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m[resultID]; !ok {
		return ErrNotFound
	}
	delete(m, resultID)
	return nil
}

func decode(data []byte) (*core.AdvancedHealthInsights, error) {
	var result core.AdvancedHealthInsights
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
