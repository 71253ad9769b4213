package kv

import (
	"context"
	"testing"
	"time"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := m.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, _ := m.Get(ctx, "k")
	if !ok || v != "v" {
		t.Fatalf("expected v, got %q ok=%v", v, ok)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatalf("expected key to be gone")
	}
}

func TestRegistryWithoutRedis(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil, 0)

	_ = r.Durable("device-a").Set(ctx, "k", "a")
	if v, ok, _ := r.Durable("device-a").Get(ctx, "k"); !ok || v != "a" {
		t.Fatalf("expected device store to be reused, got %q ok=%v", v, ok)
	}
	if _, ok, _ := r.Durable("device-b").Get(ctx, "k"); ok {
		t.Fatalf("devices must not share a store")
	}
	if _, ok, _ := r.PerTab("device-a").Get(ctx, "k"); ok {
		t.Fatalf("tab and device tiers must be separate")
	}
}

func TestRegistrySweepTabs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 20, 19, 0, 0, 0, time.UTC)
	r := NewRegistry(nil, 30*time.Minute)
	r.now = func() time.Time { return now }

	_ = r.PerTab("idle").Set(ctx, "k", "v")
	_ = r.Durable("device").Set(ctx, "k", "v")
	now = now.Add(20 * time.Minute)
	_ = r.PerTab("active").Set(ctx, "k", "v")

	now = now.Add(15 * time.Minute)
	if n := r.SweepTabs(); n != 1 {
		t.Fatalf("expected one idle tab removed, got %d", n)
	}
	if _, ok, _ := r.PerTab("idle").Get(ctx, "k"); ok {
		t.Error("idle tab store survived the sweep")
	}
	if _, ok, _ := r.PerTab("active").Get(ctx, "k"); !ok {
		t.Error("active tab store was swept")
	}
	if _, ok, _ := r.Durable("device").Get(ctx, "k"); !ok {
		t.Error("device store was swept")
	}

	if n := NewRegistry(nil, 0).SweepTabs(); n != 0 {
		t.Errorf("sweep without a ttl removed %d", n)
	}
}
