// Package availability answers which dining areas are already booked for a
// (date, time) slot. A slot without an entry is fully available.
package availability

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DateLayout is the layout of the date part of a slot key.
const DateLayout = "2006-01-02"

// Index is the (date, time) → occupied environments lookup used to gate
// bookings.
type Index interface {
	// IsBooked reports whether envID is occupied at the exact slot.
	IsBooked(ctx context.Context, date, slot, envID string) (bool, error)
	// Occupied lists the environments occupied at the slot.
	Occupied(ctx context.Context, date, slot string) ([]string, error)
	// Book marks envID as occupied at the slot, creating the slot entry if
	// needed. Booking an occupied environment again is a no-op.
	Book(ctx context.Context, date, slot, envID string) error
}

// Slots maps date → time → occupied environment ids.
type Slots map[string]map[string][]string

// Existing holds the bookings every index starts with.
func Existing() Slots {
	return Slots{
		"2025-10-20": {
			"19:00": {"salon-principal", "terraza-vip"},
			"20:00": {"bar-lounge"},
			"21:00": {"salon-familiar"},
		},
		"2025-10-21": {
			"13:00": {"salon-principal"},
			"19:00": {"terraza-vip", "salon-familiar"},
			"20:30": {"bar-lounge"},
		},
	}
}

// Memory is an in-process Index.
type Memory struct {
	mu    sync.RWMutex
	slots map[string]map[string]map[string]struct{}
}

// NewMemory returns an index holding seed.
func NewMemory(seed Slots) *Memory {
	m := &Memory{slots: make(map[string]map[string]map[string]struct{})}
	for date, times := range seed {
		for slot, envs := range times {
			for _, env := range envs {
				m.add(date, slot, env)
			}
		}
	}
	return m
}

func (m *Memory) IsBooked(_ context.Context, date, slot, envID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.slots[date][slot][envID]
	return ok, nil
}

func (m *Memory) Occupied(_ context.Context, date, slot string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.slots[date][slot]))
	for env := range m.slots[date][slot] {
		out = append(out, env)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Book(_ context.Context, date, slot, envID string) error {
	m.mu.Lock()
	m.add(date, slot, envID)
	m.mu.Unlock()
	return nil
}

// PruneBefore drops every date strictly before day and returns how many
// dates were removed. Dates that do not parse are kept. The server never
// calls it; it is for tools that reset a long-running index.
func (m *Memory) PruneBefore(day time.Time) int {
	cutoff := day.Format(DateLayout)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for date := range m.slots {
		if _, err := time.Parse(DateLayout, date); err != nil {
			continue
		}
		// YYYY-MM-DD sorts lexically
		if date < cutoff {
			delete(m.slots, date)
			n++
		}
	}
	return n
}

// caller holds mu
func (m *Memory) add(date, slot, envID string) {
	times, ok := m.slots[date]
	if !ok {
		times = make(map[string]map[string]struct{})
		m.slots[date] = times
	}
	envs, ok := times[slot]
	if !ok {
		envs = make(map[string]struct{})
		times[slot] = envs
	}
	envs[envID] = struct{}{}
}

var (
	_ Index = (*Memory)(nil)
	_ Index = (*Redis)(nil)
)
