package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store and AwardLog.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string][]byte
	awards []Award
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[string][]byte{}}
}

func (m *MemoryStore) Get(_ context.Context, user, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[user][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Put(_ context.Context, user string, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(user, values)
	return nil
}

func (m *MemoryStore) putLocked(user string, values map[string][]byte) {
	u := m.data[user]
	if u == nil {
		u = map[string][]byte{}
		m.data[user] = u
	}
	for k, v := range values {
		u[k] = append([]byte(nil), v...)
	}
}

func (m *MemoryStore) Delete(_ context.Context, user string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data[user], k)
	}
	return nil
}

func (m *MemoryStore) Snapshot(_ context.Context, user string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte, len(m.data[user]))
	for k, v := range m.data[user] {
		out[k] = append([]byte(nil), v...)
	}
	return out, nil
}

func (m *MemoryStore) Replace(_ context.Context, user string, values map[string][]byte, keep ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := map[string][]byte{}
	for _, k := range keep {
		if v, ok := m.data[user][k]; ok {
			kept[k] = v
		}
	}
	m.data[user] = kept
	m.putLocked(user, values)
	return nil
}

func (m *MemoryStore) AppendAwards(_ context.Context, awards []Award) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range awards {
		a.ID = int64(len(m.awards) + 1)
		m.awards = append(m.awards, a)
	}
	return nil
}

func (m *MemoryStore) ListAwards(_ context.Context, user string, limit int) ([]Award, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Award
	for _, a := range m.awards {
		if a.User == user {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
