package store

import "context"

type memoryKV struct {
	data map[string][]byte
}

func (m *memoryKV) get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memoryKV) close() error { return nil }

// NewMemoryStore returns a process-local store, used in tests and when no
// backend is configured.
func NewMemoryStore() Store {
	return newDocStore(&memoryKV{data: make(map[string][]byte)})
}
