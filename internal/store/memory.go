package store

import "context"

// Memory is an in-process KV used when the database is unavailable and in tests.
type Memory struct {
	values map[string]string
}

var _ KV = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

// Get implements KV.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements KV.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

// Delete implements KV.
func (m *Memory) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}
