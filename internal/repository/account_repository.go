package repository

import (
	"context"

	"github.com/bocattovalley/bocatto-server/internal/model"
)

// AccountStore persists the accounts created through POST /api/register.
// Email lookups are exact matches on the submitted address.
type AccountStore interface {
	// FindByEmail returns ErrNotFound when no account has email.
	FindByEmail(ctx context.Context, email string) (model.Account, error)
	Insert(ctx context.Context, a model.Account) error
}
