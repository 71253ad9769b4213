package repository

import (
	"context"
	"sync"

	"github.com/bocattovalley/bocatto-server/internal/model"
)

// MemoryAccountRepo keeps accounts in process memory. The server falls back
// to it when the configured database cannot be reached.
type MemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts []model.Account
}

func NewMemoryAccountRepo() *MemoryAccountRepo { return &MemoryAccountRepo{} }

func (r *MemoryAccountRepo) FindByEmail(_ context.Context, email string) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return model.Account{}, ErrNotFound
}

func (r *MemoryAccountRepo) Insert(_ context.Context, a model.Account) error {
	r.mu.Lock()
	r.accounts = append(r.accounts, a)
	r.mu.Unlock()
	return nil
}

// Len returns the number of stored accounts.
func (r *MemoryAccountRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

var (
	_ AccountStore = (*MySQLAccountRepo)(nil)
	_ AccountStore = (*MongoAccountRepo)(nil)
	_ AccountStore = (*MemoryAccountRepo)(nil)
)
