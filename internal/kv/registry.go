package kv

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Registry hands out the Store of a scope. Device stores are durable; tab
// stores expire after TabTTL of inactivity.
type Registry struct {
	rdb    *redis.Client
	tabTTL time.Duration
	now    func() time.Time

	mu       sync.Mutex
	devices  map[string]*Memory
	tabs     map[string]*Memory
	lastSeen map[string]time.Time
}

// NewRegistry returns a Registry backed by rdb, or by process memory when
// rdb is nil.
func NewRegistry(rdb *redis.Client, tabTTL time.Duration) *Registry {
	return &Registry{
		rdb:      rdb,
		tabTTL:   tabTTL,
		now:      time.Now,
		devices:  make(map[string]*Memory),
		tabs:     make(map[string]*Memory),
		lastSeen: make(map[string]time.Time),
	}
}

// Durable returns the durable store of a device.
func (r *Registry) Durable(deviceID string) Store {
	if r.rdb != nil {
		return NewRedis(r.rdb, "bocatto:device:"+deviceID+":", 0)
	}
	return r.memory(r.devices, deviceID)
}

// PerTab returns the per-tab store of a tab.
func (r *Registry) PerTab(tabID string) Store {
	if r.rdb != nil {
		return NewRedis(r.rdb, "bocatto:tab:"+tabID+":", r.tabTTL)
	}
	s := r.memory(r.tabs, tabID)
	r.mu.Lock()
	r.lastSeen[tabID] = r.now()
	r.mu.Unlock()
	return s
}

func (r *Registry) memory(m map[string]*Memory, id string) *Memory {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := m[id]
	if !ok {
		s = NewMemory()
		m[id] = s
	}
	return s
}

// SweepTabs drops in-memory tab stores not opened for longer than TabTTL and
// reports how many were removed. It is a no-op when Redis backs the registry
// or TabTTL is not positive.
func (r *Registry) SweepTabs() int {
	if r.rdb != nil || r.tabTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.tabTTL)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, seen := range r.lastSeen {
		if seen.Before(cutoff) {
			delete(r.tabs, id)
			delete(r.lastSeen, id)
			removed++
		}
	}
	return removed
}

// SweepEvery calls SweepTabs on every tick of interval until ctx is done.
func (r *Registry) SweepEvery(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.SweepTabs()
		}
	}
}
