package communities

import (
	"context"
	"sort"
	"sync"
)

type memStore struct {
	mu       sync.RWMutex
	byTenant map[string]Community
}

// NewMemoryStore returns a map-backed Store for dev and tests.
func NewMemoryStore() Store {
	return &memStore{byTenant: map[string]Community{}}
}

func (m *memStore) Save(ctx context.Context, c Community) (Community, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byTenant[c.TenantID] = c
	return c, nil
}

func (m *memStore) Find(ctx context.Context, f Filter) ([]Community, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Community
	for _, c := range m.byTenant {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	// map iteration order is random; keep results stable for callers
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

func (m *memStore) Remove(ctx context.Context, tenantID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byTenant[tenantID]; !ok {
		return false, nil
	}
	delete(m.byTenant, tenantID)
	return true, nil
}
