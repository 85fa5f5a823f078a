package provider

import "sync"

// Memory remembers which items have already been shown during this process.
type Memory struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{seen: make(map[string]struct{})}
}

// Seen reports whether id was remembered.
func (m *Memory) Seen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[id]
	return ok
}

// Remember marks id as seen.
func (m *Memory) Remember(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[id] = struct{}{}
}

// Forget clears everything.
func (m *Memory) Forget() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = make(map[string]struct{})
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}
