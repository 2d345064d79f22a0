package replay

import (
	"context"
	"sync"
	"time"
)

const purgeEvery = 256

// Memory is a single-process replay guard.
type Memory struct {
	mu     sync.Mutex
	now    func() time.Time
	used   map[string]time.Time
	claims int
}

func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{now: now, used: make(map[string]time.Time)}
}

func (m *Memory) Claim(_ context.Context, id string, ttl time.Duration) (bool, error) {
	if id == "" {
		return false, nil
	}
	if ttl < minTTL {
		ttl = minTTL
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.claims++
	if m.claims%purgeEvery == 0 {
		m.purge(now)
	}
	if exp, ok := m.used[id]; ok && now.Before(exp) {
		return false, nil
	}
	m.used[id] = now.Add(ttl)
	return true, nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.used)
}

// caller holds mu
func (m *Memory) purge(now time.Time) {
	for id, exp := range m.used {
		if !now.Before(exp) {
			delete(m.used, id)
		}
	}
}
