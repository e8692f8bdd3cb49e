package index

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory Store used by tests and as the hydration target
// for the persistent drivers.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory returns an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{entries: map[string]Entry{}}
}

func (m *Memory) Put(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Path] = entry
	return nil
}

func (m *Memory) Get(_ context.Context, path string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[path]
	return entry, ok, nil
}

func (m *Memory) List(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *Memory) Delete(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[path]
	delete(m.entries, path)
	return ok, nil
}

func (m *Memory) Close() error { return nil }

// snapshot exports every entry for the persistent drivers to serialize.
func (m *Memory) snapshot() []Entry {
	out, _ := m.List(context.Background())
	return out
}

// restore replaces the catalog contents wholesale.
func (m *Memory) restore(entries []Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		m.entries[entry.Path] = entry
	}
}
