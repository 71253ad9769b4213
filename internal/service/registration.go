package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bocattovalley/bocatto-server/internal/model"
	"github.com/bocattovalley/bocatto-server/internal/repository"
)

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// ErrPasswordTooLong rejects a password bcrypt cannot hash.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Hasher turns a plaintext password into its stored form.
type Hasher interface {
	Hash(password string) (string, error)
}

// Registration is the payload of POST /api/register.
type Registration struct {
	Name     string
	Surname  string
	Email    string
	Password string
	Phone    string
	Address  string
}

// Registrar creates accounts in an AccountStore. It shares nothing with
// the in-app user directory.
type Registrar struct {
	store  repository.AccountStore
	hasher Hasher
	now    func() time.Time
	logger *zap.Logger
}

// NewRegistrar returns a Registrar. A nil now defaults to time.Now.
func NewRegistrar(store repository.AccountStore, hasher Hasher, now func() time.Time, logger *zap.Logger) *Registrar {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registrar{store: store, hasher: hasher, now: now, logger: logger.With(zap.String("component", "registrar"))}
}

// Register stores a new active account unless one with the same email
// exists, in which case it returns repository.ErrEmailExists. Passwords
// over MaxPasswordBytes fail with ErrPasswordTooLong before any lookup. The check
// and the insert are not atomic.
func (r *Registrar) Register(ctx context.Context, in Registration) error {
	if len(in.Password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	_, err := r.store.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return repository.ErrEmailExists
	case !errors.Is(err, repository.ErrNotFound):
		r.logger.Error("lookup account failed", zap.Error(err))
		return err
	}

	hash, err := r.hasher.Hash(in.Password)
	if err != nil {
		r.logger.Error("hash password failed", zap.Error(err))
		return err
	}
	acct := model.Account{
		Name:         in.Name,
		Surname:      in.Surname,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Address:      in.Address,
		RegisteredAt: r.now().UTC(),
		IsActive:     true,
	}
	if err := r.store.Insert(ctx, acct); err != nil {
		r.logger.Error("insert account failed", zap.Error(err))
		return err
	}
	r.logger.Info("account registered")
	return nil
}
