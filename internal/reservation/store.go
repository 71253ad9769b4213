package reservation

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/bocattovalley/bocatto-server/internal/kv"
	"github.com/bocattovalley/bocatto-server/internal/model"
)

// StoreKey is the durable storage key of the reservation list.
const StoreKey = "bocatto_reservations"

// Store keeps the reservations made from one device as a JSON array.
type Store struct {
	kv     kv.Store
	logger *zap.Logger
}

// NewStore returns a Store over the durable tier s.
func NewStore(s kv.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: s, logger: logger.With(zap.String("component", "reservation_store"))}
}

// All returns the stored reservations, oldest first. Unreadable data
// yields an empty list.
func (s *Store) All(ctx context.Context) []model.Reservation {
	raw, ok, err := s.kv.Get(ctx, StoreKey)
	if err != nil {
		s.logger.Error("read reservations failed", zap.Error(err))
		return []model.Reservation{}
	}
	if !ok || raw == "" {
		return []model.Reservation{}
	}
	var out []model.Reservation
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.logger.Error("decode reservations failed", zap.Error(err))
		return []model.Reservation{}
	}
	return out
}

// Append adds r to the end of the list.
func (s *Store) Append(ctx context.Context, r model.Reservation) error {
	list := append(s.All(ctx), r)
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, StoreKey, string(b))
}
