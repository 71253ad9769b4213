package workspace

import (
	"context"
	"testing"

	"github.com/bocattovalley/bocatto-server/internal/auth"
	"github.com/bocattovalley/bocatto-server/internal/availability"
	"github.com/bocattovalley/bocatto-server/internal/directory"
	"github.com/bocattovalley/bocatto-server/internal/kv"
	"github.com/bocattovalley/bocatto-server/internal/reservation"
)

type prefixHasher struct{}

func (prefixHasher) Hash(pw string) (string, error) { return "h:" + pw, nil }
func (prefixHasher) Verify(hash, pw string) bool    { return hash == "h:"+pw }

func newProvider(t *testing.T) *Provider {
	t.Helper()
	seed, err := directory.SeedUsers(prefixHasher{})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &Provider{
		Registry: kv.NewRegistry(nil, 0),
		Seed:     seed,
		Hasher:   prefixHasher{},
		Index:    availability.NewMemory(availability.Existing()),
		Catalog:  reservation.DefaultCatalog(),
	}
}

func TestSessionTiers(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	t.Run("remember me survives a new tab", func(t *testing.T) {
		w := p.Open(ctx, "device-a", "tab-1")
		if _, err := w.Auth.Login(ctx, "cliente@bocatto.com", "cliente123", true); err != nil {
			t.Fatalf("login: %v", err)
		}
		w.Close()

		other := p.Open(ctx, "device-a", "tab-2")
		defer other.Close()
		if !other.Auth.IsAuthenticated() {
			t.Fatalf("expected durable session on a new tab")
		}
	})

	t.Run("per-tab session stays in its tab", func(t *testing.T) {
		w := p.Open(ctx, "device-b", "tab-1")
		if _, err := w.Auth.Login(ctx, "cliente@bocatto.com", "cliente123", false); err != nil {
			t.Fatalf("login: %v", err)
		}
		w.Close()

		same := p.Open(ctx, "device-b", "tab-1")
		if !same.Auth.IsAuthenticated() {
			t.Fatalf("expected session on the same tab")
		}
		same.Close()

		other := p.Open(ctx, "device-b", "tab-2")
		defer other.Close()
		if other.Auth.IsAuthenticated() {
			t.Fatalf("per-tab session must not leak to another tab")
		}
	})

	t.Run("devices do not share users", func(t *testing.T) {
		w := p.Open(ctx, "device-c", "tab-1")
		_, err := w.Auth.Register(ctx, auth.RegisterInput{
			FirstName: "Ana", LastName: "Vera", Email: "ana@example.com",
			Password: "secreto1", ConfirmPassword: "secreto1",
		})
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		w.Close()

		other := p.Open(ctx, "device-d", "tab-1")
		defer other.Close()
		if _, ok := other.Directory.FindByEmail(ctx, "ana@example.com"); ok {
			t.Fatalf("user must stay on its device")
		}
	})
}

func TestFlowOwner(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	w := p.Open(ctx, "device-e", "tab-1")
	defer w.Close()
	if _, err := w.Auth.Login(ctx, "juan.perez@example.com", "123456", false); err != nil {
		t.Fatalf("login: %v", err)
	}
	f := w.NewFlow()
	if _, err := f.SelectEnvironment("bar-lounge"); err != nil {
		t.Fatalf("select: %v", err)
	}
	_ = f.ChooseSlot("2025-10-22", "18:00")
	r, err := f.Confirm(ctx, reservation.Details{PartySize: 4})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if r.ClientID == nil || *r.ClientID != 3 {
		t.Fatalf("expected owner 3, got %v", r.ClientID)
	}
	if n := len(w.Reservations.All(ctx)); n != 1 {
		t.Fatalf("expected 1 stored reservation, got %d", n)
	}
}
