package workspace

import "sync"

// InMemoryStore keeps workspace files in a nested map guarded by an
// RWMutex, suitable for tests, examples and single-process runs. Data is
// copied on save and retrieval to avoid accidental external mutation of
// internal buffers.
//
// Layout: runID -> name -> raw bytes
//
// No retention limits, size quotas or eviction are enforced. For runs
// whose by-products must survive the process, use FilesystemStore.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[string]map[string][]byte
}

// NewInMemoryStore returns an empty in-memory workspace store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[string]map[string][]byte)}
}

// Save stores (or overwrites) the file bytes for the given run and name.
// The input slice is copied before storage.
func (s *InMemoryStore) Save(runID, name string, data []byte) error {
	if !validName(runID) || !validName(name) {
		return ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[runID]; !exists {
		s.runs[runID] = make(map[string][]byte)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.runs[runID][name] = cp
	return nil
}

// Get returns a copy of the stored file bytes or ErrNotFound.
func (s *InMemoryStore) Get(runID, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files, ok := s.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := files[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the file names stored for the run. The slice is a
// snapshot and safe for caller mutation.
func (s *InMemoryStore) List(runID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files, ok := s.runs[runID]
	if !ok {
		return []string{}, nil
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	return names, nil
}

// Delete removes the file if present or returns ErrNotFound.
func (s *InMemoryStore) Delete(runID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, ok := s.runs[runID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := files[name]; !ok {
		return ErrNotFound
	}
	delete(files, name)
	return nil
}
