package session

import (
	"context"
	"testing"
	"time"

	"github.com/bocattovalley/bocatto-server/internal/kv"
	"github.com/bocattovalley/bocatto-server/internal/model"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 20, 18, 0, 0, 0, time.UTC)
	user := model.SafeUser{ID: 7, Email: "ana@example.com", IsActive: true, Profile: model.ClientProfile{}}

	t.Run("remember me writes the durable tier", func(t *testing.T) {
		durable, tab := kv.NewMemory(), kv.NewMemory()
		s := NewStore(durable, tab, func() time.Time { return now }, nil)

		if err := s.Save(ctx, user, true); err != nil {
			t.Fatalf("save: %v", err)
		}
		if _, ok, _ := durable.Get(ctx, Key); !ok {
			t.Fatalf("expected durable record")
		}
		if _, ok, _ := tab.Get(ctx, Key); ok {
			t.Fatalf("expected no per-tab record")
		}
		rec, ok, err := s.Load(ctx)
		if err != nil || !ok {
			t.Fatalf("load: ok=%v err=%v", ok, err)
		}
		if rec.User.ID != 7 || !rec.CreatedAt().Equal(now) {
			t.Fatalf("unexpected record %+v", rec)
		}
	})

	t.Run("without remember me writes the per-tab tier", func(t *testing.T) {
		durable, tab := kv.NewMemory(), kv.NewMemory()
		s := NewStore(durable, tab, func() time.Time { return now }, nil)

		_ = s.Save(ctx, user, true)
		if err := s.Save(ctx, user, false); err != nil {
			t.Fatalf("save: %v", err)
		}
		if _, ok, _ := durable.Get(ctx, Key); ok {
			t.Fatalf("expected durable record to be replaced")
		}
		if _, ok, _ := tab.Get(ctx, Key); !ok {
			t.Fatalf("expected per-tab record")
		}
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		durable, tab := kv.NewMemory(), kv.NewMemory()
		s := NewStore(durable, tab, func() time.Time { return now }, nil)
		_ = s.Save(ctx, user, true)

		if err := s.Clear(ctx); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if err := s.Clear(ctx); err != nil {
			t.Fatalf("second clear: %v", err)
		}
		if _, ok, _ := s.Load(ctx); ok {
			t.Fatalf("expected no session")
		}
	})

	t.Run("malformed record is treated as absent", func(t *testing.T) {
		durable, tab := kv.NewMemory(), kv.NewMemory()
		_ = durable.Set(ctx, Key, "{not json")
		s := NewStore(durable, tab, nil, nil)

		if _, ok, err := s.Load(ctx); ok || err != nil {
			t.Fatalf("expected absent session, got ok=%v err=%v", ok, err)
		}
	})
}

func TestRecordExpired(t *testing.T) {
	created := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
	rec := Record{Timestamp: created.UnixMilli()}

	if rec.Expired(created.Add(MaxAge)) {
		t.Fatalf("a record exactly MaxAge old is still valid")
	}
	if !rec.Expired(created.Add(MaxAge + time.Millisecond)) {
		t.Fatalf("expected record to be expired")
	}
}
