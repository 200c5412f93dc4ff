package discovery

import (
	"context"
	"sync"
)

// Memory is an in-process publisher used in tests and DSN-less runs.
type Memory struct {
	mu       sync.Mutex
	listings map[string]MatchListing
}

func NewMemory() *Memory {
	return &Memory{listings: make(map[string]MatchListing)}
}

func (m *Memory) Announce(_ context.Context, code, gameMode, region string, capacity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[code] = MatchListing{
		Code:     code,
		GameMode: gameMode,
		Region:   region,
		Capacity: capacity,
		Joinable: true,
	}
}

func (m *Memory) SetJoinable(_ context.Context, code string, joinable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[code]
	if !ok {
		return
	}
	l.Joinable = joinable
	m.listings[code] = l
}

func (m *Memory) SetBackfill(_ context.Context, code string, needed bool, slots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[code]
	if !ok {
		return
	}
	l.NeedsBackfill = needed
	l.OpenSlots = slots
	m.listings[code] = l
}

func (m *Memory) Remove(_ context.Context, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listings, code)
}

// Listing returns a copy of the current record for assertions.
func (m *Memory) Listing(code string) (MatchListing, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[code]
	return l, ok
}
