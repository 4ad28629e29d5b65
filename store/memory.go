package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store used in tests and for local development
// without Postgres.
type Memory struct {
	mu   sync.Mutex
	data *Data
}

func NewMemory() *Memory {
	d := &Data{}
	applyDefaults(d)
	return &Memory{data: d}
}

func (m *Memory) Read(ctx context.Context) (*Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.data)
}

func (m *Memory) Update(ctx context.Context, fn func(*Data) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := clone(m.data)
	if err != nil {
		return err
	}
	if err := fn(next); err != nil {
		return err
	}
	m.data = next
	return nil
}

func (m *Memory) Close() {}
