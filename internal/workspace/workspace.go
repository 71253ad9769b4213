// Package workspace assembles the per-request view of a device/tab scope:
// the auth service, the user directory and the reservation store, all over
// the scope's two storage tiers.
package workspace

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bocattovalley/bocatto-server/internal/auth"
	"github.com/bocattovalley/bocatto-server/internal/availability"
	"github.com/bocattovalley/bocatto-server/internal/directory"
	"github.com/bocattovalley/bocatto-server/internal/kv"
	"github.com/bocattovalley/bocatto-server/internal/model"
	"github.com/bocattovalley/bocatto-server/internal/reservation"
	"github.com/bocattovalley/bocatto-server/internal/session"
)

// Provider opens workspaces. It is built once at startup and shared.
type Provider struct {
	Registry  *kv.Registry
	Seed      []model.User
	Hasher    auth.PasswordHasher
	Index     availability.Index
	Catalog   *reservation.Catalog
	Publisher reservation.Publisher
	NewID     func() int64
	Now       func() time.Time
	Logger    *zap.Logger
}

// Workspace is one page load of a scope.
type Workspace struct {
	DeviceID     string
	TabID        string
	Auth         *auth.Service
	Directory    *directory.Directory
	Reservations *reservation.Store

	p      *Provider
	logger *zap.Logger
}

// Open builds the services of a scope and runs auth initialization, which
// seeds the directory and restores the session.
func (p *Provider) Open(ctx context.Context, deviceID, tabID string) *Workspace {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("device_id", deviceID), zap.String("tab_id", tabID))

	durable := p.Registry.Durable(deviceID)
	perTab := p.Registry.PerTab(tabID)
	dir := directory.New(durable, p.Seed, logger)
	svc := auth.New(auth.Options{
		Directory: dir,
		Sessions:  session.NewStore(durable, perTab, p.Now, logger),
		Hasher:    p.Hasher,
		Now:       p.Now,
		Logger:    logger,
	})
	svc.Init(ctx)

	return &Workspace{
		DeviceID:     deviceID,
		TabID:        tabID,
		Auth:         svc,
		Directory:    dir,
		Reservations: reservation.NewStore(durable, logger),
		p:            p,
		logger:       logger,
	}
}

// NewFlow starts a booking attempt owned by the signed-in user, if any.
func (w *Workspace) NewFlow() *reservation.Flow {
	return reservation.NewFlow(reservation.Options{
		Catalog:   w.p.Catalog,
		Index:     w.p.Index,
		Store:     w.Reservations,
		Owner:     w.Auth,
		Publisher: w.p.Publisher,
		NewID:     w.p.NewID,
		Now:       w.p.Now,
		Logger:    w.logger,
	})
}

// Close ends the page load.
func (w *Workspace) Close() {
	w.Auth.Teardown()
}
