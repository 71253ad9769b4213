package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bocattovalley/bocatto-server/internal/directory"
	"github.com/bocattovalley/bocatto-server/internal/kv"
	"github.com/bocattovalley/bocatto-server/internal/model"
	"github.com/bocattovalley/bocatto-server/internal/session"
	"github.com/bocattovalley/bocatto-server/internal/utils"
)

type prefixHasher struct{}

func (prefixHasher) Hash(pw string) (string, error) { return "h:" + pw, nil }
func (prefixHasher) Verify(hash, pw string) bool    { return hash == "h:"+pw }

type fixture struct {
	svc     *Service
	dir     *directory.Directory
	durable *kv.Memory
	tab     *kv.Memory
	now     time.Time
}

func newFixture(t *testing.T, hasher PasswordHasher) *fixture {
	t.Helper()
	seed, err := directory.SeedUsers(hasher)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	f := &fixture{durable: kv.NewMemory(), tab: kv.NewMemory(), now: time.Date(2025, 10, 20, 18, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }
	f.dir = directory.New(f.durable, seed, nil)
	f.svc = New(Options{
		Directory: f.dir,
		Sessions:  session.NewStore(f.durable, f.tab, clock, nil),
		Hasher:    hasher,
		Now:       clock,
	})
	f.svc.Init(context.Background())
	return f
}

func validInput() RegisterInput {
	return RegisterInput{
		FirstName: " Lucía ", LastName: "Ramos", Email: " Lucia.Ramos@Example.com ",
		Password: "secreto1", ConfirmPassword: "secreto1", Phone: "099 123 4567", Address: "Quito",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("valid input signs the user in", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		u, err := f.svc.Register(ctx, validInput())
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		if !f.svc.IsAuthenticated() || !f.svc.IsClient() {
			t.Fatalf("expected authenticated client")
		}
		if u.ID != 4 || u.Email != "lucia.ramos@example.com" || u.FirstName != "Lucía" || u.Phone != "0991234567" {
			t.Fatalf("unexpected user %+v", u)
		}
		if p, ok := u.Profile.(model.ClientProfile); !ok || p.LoyaltyPoints != 0 {
			t.Fatalf("expected fresh client profile, got %#v", u.Profile)
		}
		b, _ := json.Marshal(u)
		if strings.Contains(string(b), "password") {
			t.Fatalf("projection leaks password: %s", b)
		}
		if _, ok, _ := f.durable.Get(ctx, session.Key); !ok {
			t.Fatalf("expected durable session after registration")
		}
	})

	t.Run("duplicate email is rejected case-insensitively", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		if _, err := f.svc.Register(ctx, validInput()); err != nil {
			t.Fatalf("register: %v", err)
		}
		before := len(f.dir.All(ctx))

		in := validInput()
		in.Email = "LUCIA.RAMOS@example.COM"
		_, err := f.svc.Register(ctx, in)
		if !errors.Is(err, ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
		if after := len(f.dir.All(ctx)); after != before {
			t.Fatalf("directory size changed from %d to %d", before, after)
		}
	})

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{"missing last name", func(in *RegisterInput) { in.LastName = "  " }, ErrMissingFields},
		{"bad email", func(in *RegisterInput) { in.Email = "lucia@example" }, ErrInvalidEmail},
		{"short password", func(in *RegisterInput) { in.Password, in.ConfirmPassword = "abc12", "abc12" }, ErrWeakPassword},
		{"password over 72 bytes", func(in *RegisterInput) {
			in.Password = strings.Repeat("a", 80)
			in.ConfirmPassword = in.Password
		}, ErrPasswordTooLong},
		{"confirmation mismatch", func(in *RegisterInput) { in.ConfirmPassword = "secreto2" }, ErrPasswordMismatch},
		{"short phone", func(in *RegisterInput) { in.Phone = "09912" }, ErrInvalidPhone},
		{"letters in phone", func(in *RegisterInput) { in.Phone = "09912345ab" }, ErrInvalidPhone},
		{"seeded email", func(in *RegisterInput) { in.Email = "Cliente@Bocatto.com" }, ErrEmailTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, prefixHasher{})
			in := validInput()
			tc.mutate(&in)
			_, err := f.svc.Register(ctx, in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if f.svc.IsAuthenticated() {
				t.Fatalf("failed registration must not sign in")
			}
			if n := len(f.dir.All(ctx)); n != 3 {
				t.Fatalf("failed registration must not mutate the directory, got %d users", n)
			}
		})
	}

	t.Run("empty phone is allowed", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		in := validInput()
		in.Phone = ""
		if _, err := f.svc.Register(ctx, in); err != nil {
			t.Fatalf("register: %v", err)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("administrator lands on the admin page", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		res, err := f.svc.Login(ctx, "ADMIN@adminbocatto.com", "adminPass123", false)
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if res.RedirectTo != "/admin" || !f.svc.IsAdmin() {
			t.Fatalf("unexpected result %+v", res)
		}
		if _, ok, _ := f.tab.Get(ctx, session.Key); !ok {
			t.Fatalf("expected per-tab session without remember me")
		}
		if _, ok, _ := f.durable.Get(ctx, session.Key); ok {
			t.Fatalf("expected no durable session without remember me")
		}
	})

	t.Run("client lands on the home page", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		res, err := f.svc.Login(ctx, "cliente@bocatto.com", "cliente123", true)
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if res.RedirectTo != "/" || !f.svc.IsClient() {
			t.Fatalf("unexpected result %+v", res)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		_, err := f.svc.Login(ctx, "cliente@bocatto.com", "cliente124", true)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if err.Error() != ErrInvalidCredentials.Message {
			t.Fatalf("unexpected message %q", err.Error())
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		if _, err := f.svc.Login(ctx, "nobody@example.com", "x", true); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("deactivated account", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		u, _ := f.dir.FindByID(ctx, 3)
		u.IsActive = false
		if err := f.dir.Update(ctx, u); err != nil {
			t.Fatalf("update: %v", err)
		}
		_, err := f.svc.Login(ctx, "juan.perez@example.com", "123456", true)
		if !errors.Is(err, ErrAccountDeactivated) {
			t.Fatalf("expected ErrAccountDeactivated, got %v", err)
		}
		if f.svc.IsAuthenticated() {
			t.Fatalf("deactivated user must not be signed in")
		}
	})

	t.Run("bcrypt accepts a 72 byte password", func(t *testing.T) {
		f := newFixture(t, utils.BcryptHasher{Cost: bcrypt.MinCost})
		in := validInput()
		in.Password = strings.Repeat("a", MaxPasswordBytes)
		in.ConfirmPassword = in.Password
		if _, err := f.svc.Register(ctx, in); err != nil {
			t.Fatalf("register: %v", err)
		}
		if _, err := f.svc.Login(ctx, in.Email, in.Password, false); err != nil {
			t.Fatalf("login: %v", err)
		}
	})

	t.Run("bcrypt hasher", func(t *testing.T) {
		f := newFixture(t, utils.BcryptHasher{Cost: bcrypt.MinCost})
		if _, err := f.svc.Login(ctx, "cliente@bocatto.com", "cliente123", false); err != nil {
			t.Fatalf("login: %v", err)
		}
		if _, err := f.svc.Login(ctx, "cliente@bocatto.com", "wrong", false); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestLoadSession(t *testing.T) {
	ctx := context.Background()

	t.Run("restores across page loads", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		if _, err := f.svc.Login(ctx, "cliente@bocatto.com", "cliente123", true); err != nil {
			t.Fatalf("login: %v", err)
		}
		f.svc.Teardown()
		if f.svc.IsAuthenticated() {
			t.Fatalf("teardown must drop the current user")
		}
		f.now = f.now.Add(23 * time.Hour)
		if !f.svc.LoadSession(ctx) {
			t.Fatalf("expected session to be restored")
		}
		u, _ := f.svc.CurrentUser()
		if u.ID != 2 {
			t.Fatalf("unexpected current user %+v", u)
		}
	})

	t.Run("expired session clears both stores", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		if _, err := f.svc.Login(ctx, "cliente@bocatto.com", "cliente123", true); err != nil {
			t.Fatalf("login: %v", err)
		}
		_ = f.tab.Set(ctx, session.Key, `{"user":{"id":2},"timestamp":0}`)
		f.now = f.now.Add(session.MaxAge + time.Minute)

		if f.svc.LoadSession(ctx) {
			t.Fatalf("expected unauthenticated")
		}
		if _, ok, _ := f.durable.Get(ctx, session.Key); ok {
			t.Fatalf("durable session must be cleared")
		}
		if _, ok, _ := f.tab.Get(ctx, session.Key); ok {
			t.Fatalf("per-tab session must be cleared")
		}
	})

	t.Run("deactivated user is not restored", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		if _, err := f.svc.Login(ctx, "cliente@bocatto.com", "cliente123", true); err != nil {
			t.Fatalf("login: %v", err)
		}
		u, _ := f.dir.FindByID(ctx, 2)
		u.IsActive = false
		_ = f.dir.Update(ctx, u)
		if f.svc.LoadSession(ctx) {
			t.Fatalf("expected unauthenticated")
		}
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		f.svc.Logout(ctx)
		f.svc.Logout(ctx)
		if f.svc.LoadSession(ctx) {
			t.Fatalf("expected unauthenticated")
		}
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, prefixHasher{})

	if _, err := f.svc.UpdateProfile(ctx, ProfilePatch{}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "cliente@bocatto.com", "cliente123", false); err != nil {
		t.Fatalf("login: %v", err)
	}
	addr, prefs := "Loja", "Mesa junto a la ventana"
	u, err := f.svc.UpdateProfile(ctx, ProfilePatch{Address: &addr, Preferences: &prefs})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Address != "Loja" || u.FirstName != "María" {
		t.Fatalf("unexpected user %+v", u)
	}
	stored, _ := f.dir.FindByID(ctx, 2)
	if p := stored.Profile.(model.ClientProfile); p.Preferences != prefs || p.LoyaltyPoints != 150 {
		t.Fatalf("unexpected stored profile %#v", p)
	}
	if _, ok, _ := f.durable.Get(ctx, session.Key); !ok {
		t.Fatalf("profile update re-saves the session durably")
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a session", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		if err := f.svc.ChangePassword(ctx, "cliente123", "nueva123"); !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("short new password leaves the old one", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		_, _ = f.svc.Login(ctx, "cliente@bocatto.com", "cliente123", true)
		if err := f.svc.ChangePassword(ctx, "cliente123", "abcde"); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("expected ErrWeakPassword, got %v", err)
		}
		stored, _ := f.dir.FindByID(ctx, 2)
		if stored.PasswordHash != "h:cliente123" {
			t.Fatalf("password changed to %q", stored.PasswordHash)
		}
	})

	t.Run("new password over 72 bytes", func(t *testing.T) {
		f := newFixture(t, utils.BcryptHasher{Cost: bcrypt.MinCost})
		_, _ = f.svc.Login(ctx, "cliente@bocatto.com", "cliente123", false)
		if err := f.svc.ChangePassword(ctx, "cliente123", strings.Repeat("b", 73)); !errors.Is(err, ErrPasswordTooLong) {
			t.Fatalf("expected ErrPasswordTooLong, got %v", err)
		}
		if _, err := f.svc.Login(ctx, "cliente@bocatto.com", "cliente123", false); err != nil {
			t.Fatalf("old password must still work: %v", err)
		}
	})

	t.Run("wrong old password", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		_, _ = f.svc.Login(ctx, "cliente@bocatto.com", "cliente123", true)
		if err := f.svc.ChangePassword(ctx, "nope", "nueva123"); !errors.Is(err, ErrWrongPassword) {
			t.Fatalf("expected ErrWrongPassword, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t, prefixHasher{})
		_, _ = f.svc.Login(ctx, "cliente@bocatto.com", "cliente123", true)
		if err := f.svc.ChangePassword(ctx, "cliente123", "nueva123"); err != nil {
			t.Fatalf("change: %v", err)
		}
		f.svc.Logout(ctx)
		if _, err := f.svc.Login(ctx, "cliente@bocatto.com", "nueva123", true); err != nil {
			t.Fatalf("login with new password: %v", err)
		}
	})
}

func TestGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, prefixHasher{})

	if err := f.svc.Guard(""); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	_, _ = f.svc.Login(ctx, "cliente@bocatto.com", "cliente123", false)
	if err := f.svc.Guard(model.RoleAdministrator); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.svc.Guard(model.RoleClient); err != nil {
		t.Fatalf("client guard: %v", err)
	}
}

func TestErrorKind(t *testing.T) {
	if got := ErrorKind(nil); got != "" {
		t.Fatalf("expected empty kind, got %q", got)
	}
	if got := ErrorKind(ErrWeakPassword); got != "weak_password" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := ErrorKind(errors.New("boom")); got != "unexpected" {
		t.Fatalf("unexpected kind %q", got)
	}
}
