package docstore

import (
	"context"
	"sync"
	"time"
)

// Memory keeps documents in process. Used in dev mode and tests.
type Memory struct {
	// Now drives lease expiry.
	Now func() time.Time

	mu     sync.RWMutex
	docs   map[string][]byte
	leases map[string]time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{Now: time.Now, docs: map[string][]byte{}, leases: map[string]time.Time{}}
}

func (m *Memory) Get(_ context.Context, container, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.docs[container+"/"+name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (m *Memory) Put(_ context.Context, container, name string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[container+"/"+name] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Delete(_ context.Context, container, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, container+"/"+name)
	delete(m.leases, container+"/"+name)
	return nil
}

func (m *Memory) Lease(_ context.Context, container, name string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	key := container + "/" + name
	if until, ok := m.leases[key]; ok && now.Before(until) {
		return false, nil
	}
	m.leases[key] = now.Add(ttl)
	return true, nil
}
