// Package directory keeps the in-app user directory: an ordered list of user
// records stored as JSON under the durable key bocatto_users.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bocattovalley/bocatto-server/internal/kv"
	"github.com/bocattovalley/bocatto-server/internal/model"
)

// Key is the durable storage key of the directory.
const Key = "bocatto_users"

// legacyAdminEmail is the address the administrator used before the
// adminbocatto.com domain; stored records with it are replaced on Init.
const legacyAdminEmail = "admin@bocatto.com"

var (
	// ErrEmailTaken is returned by Add when the normalized email exists.
	ErrEmailTaken = errors.New("directory: email already registered")
	// ErrNotFound is returned by Update for an unknown id.
	ErrNotFound = errors.New("directory: user not found")
)

// Hasher turns a plaintext password into its stored form.
type Hasher interface {
	Hash(password string) (string, error)
}

// Directory reads and writes the user list of one durable scope.
type Directory struct {
	store  kv.Store
	seed   []model.User
	logger *zap.Logger
}

// New returns a Directory over store. seed is written when the store holds
// no users and is returned when the stored list cannot be read.
func New(store kv.Store, seed []model.User, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{store: store, seed: seed, logger: logger.With(zap.String("component", "directory"))}
}

// Normalize lower-cases and trims an email address.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SeedUsers returns the sample records every new device starts with, with
// passwords hashed through h.
func SeedUsers(h Hasher) ([]model.User, error) {
	type seedUser struct {
		user     model.User
		password string
	}
	raw := []seedUser{
		{
			user: model.User{
				ID: 1, FirstName: "Raul", LastName: "Administrador", Email: "admin@adminbocatto.com",
				Phone: "0999999999", Address: "Quito, Ecuador",
				RegisteredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), IsActive: true,
				Profile: model.AdministratorProfile{Access: []string{"FULL_ACCESS", "SUPER_ADMIN"}},
			},
			password: "adminPass123",
		},
		{
			user: model.User{
				ID: 2, FirstName: "María", LastName: "Cliente", Email: "cliente@bocatto.com",
				Phone: "0988888888", Address: "Guayaquil, Ecuador",
				RegisteredAt: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), IsActive: true,
				Profile: model.ClientProfile{LoyaltyPoints: 150, Preferences: "Sin gluten, vegetariano"},
			},
			password: "cliente123",
		},
		{
			user: model.User{
				ID: 3, FirstName: "Juan", LastName: "Pérez", Email: "juan.perez@example.com",
				Phone: "0987654321", Address: "Cuenca, Ecuador",
				RegisteredAt: time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), IsActive: true,
				Profile: model.ClientProfile{LoyaltyPoints: 50},
			},
			password: "123456",
		},
	}
	users := make([]model.User, 0, len(raw))
	for _, s := range raw {
		hash, err := h.Hash(s.password)
		if err != nil {
			return nil, err
		}
		u := s.user
		u.PasswordHash = hash
		users = append(users, u)
	}
	return users, nil
}

// Init stores the seed records when the directory is empty and replaces a
// legacy administrator record with the seeded one.
func (d *Directory) Init(ctx context.Context) {
	raw, ok, err := d.store.Get(ctx, Key)
	if err != nil {
		d.logger.Error("read users failed", zap.Error(err))
		return
	}
	if !ok || raw == "" {
		d.Save(ctx, d.seedCopy())
		return
	}
	var users []model.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		d.logger.Error("stored users are malformed, resetting to seed", zap.Error(err))
		d.Save(ctx, d.seedCopy())
		return
	}
	admin, hasAdmin := d.seedAdmin()
	if !hasAdmin {
		return
	}
	for i, u := range users {
		if Normalize(u.Email) == legacyAdminEmail {
			users[i] = admin
			d.Save(ctx, users)
			d.logger.Info("administrator credentials updated")
			return
		}
	}
}

// All returns every stored user in insertion order. Read failures are
// logged and answered with the seed records.
func (d *Directory) All(ctx context.Context) []model.User {
	raw, ok, err := d.store.Get(ctx, Key)
	if err != nil {
		d.logger.Error("read users failed", zap.Error(err))
		return d.seedCopy()
	}
	if !ok {
		return d.seedCopy()
	}
	var users []model.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		d.logger.Error("decode users failed", zap.Error(err))
		return d.seedCopy()
	}
	return users
}

// Save replaces the stored list. Failures are logged, not returned.
func (d *Directory) Save(ctx context.Context, users []model.User) {
	b, err := json.Marshal(users)
	if err != nil {
		d.logger.Error("encode users failed", zap.Error(err))
		return
	}
	if err := d.store.Set(ctx, Key, string(b)); err != nil {
		d.logger.Error("write users failed", zap.Error(err))
	}
}

// FindByEmail looks a user up by case-insensitive email.
func (d *Directory) FindByEmail(ctx context.Context, email string) (model.User, bool) {
	want := Normalize(email)
	for _, u := range d.All(ctx) {
		if Normalize(u.Email) == want {
			return u, true
		}
	}
	return model.User{}, false
}

// FindByID looks a user up by id.
func (d *Directory) FindByID(ctx context.Context, id int) (model.User, bool) {
	for _, u := range d.All(ctx) {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// Add assigns the next id to u, appends it and persists the list.
func (d *Directory) Add(ctx context.Context, u model.User) (model.User, error) {
	users := d.All(ctx)
	want := Normalize(u.Email)
	for _, existing := range users {
		if Normalize(existing.Email) == want {
			return model.User{}, ErrEmailTaken
		}
	}
	u.ID = NextID(users)
	users = append(users, u)
	d.Save(ctx, users)
	return u, nil
}

// Update replaces the stored record that has u's id.
func (d *Directory) Update(ctx context.Context, u model.User) error {
	users := d.All(ctx)
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = u
			d.Save(ctx, users)
			return nil
		}
	}
	return ErrNotFound
}

// Stats summarizes the directory for the admin dashboard.
type Stats struct {
	Total          int `json:"total"`
	Active         int `json:"active"`
	Clients        int `json:"clients"`
	Administrators int `json:"administrators"`
}

// Stats counts users by role and activity.
func (d *Directory) Stats(ctx context.Context) Stats {
	var s Stats
	for _, u := range d.All(ctx) {
		s.Total++
		if u.IsActive {
			s.Active++
		}
		switch u.Profile.(type) {
		case model.AdministratorProfile:
			s.Administrators++
		case model.ClientProfile, nil:
			s.Clients++
		}
	}
	return s
}

// NextID returns max(id)+1, or 1 for an empty list.
func NextID(users []model.User) int {
	highest := 0
	for _, u := range users {
		if u.ID > highest {
			highest = u.ID
		}
	}
	return highest + 1
}

func (d *Directory) seedCopy() []model.User {
	out := make([]model.User, len(d.seed))
	copy(out, d.seed)
	return out
}

func (d *Directory) seedAdmin() (model.User, bool) {
	for _, u := range d.seed {
		if u.Role() == model.RoleAdministrator {
			return u, true
		}
	}
	return model.User{}, false
}
