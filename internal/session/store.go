// Package session persists the signed-in session record in one of the two
// scoped tiers: the durable tier when "remember me" was requested, the
// per-tab tier otherwise.
package session

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/bocattovalley/bocatto-server/internal/kv"
	"github.com/bocattovalley/bocatto-server/internal/model"
)

// Key is the storage key of the session record in both tiers.
const Key = "bocatto_session"

// MaxAge is the fixed lifetime of a session record, measured at load time.
const MaxAge = 24 * time.Hour

// Record is the persisted session: a safe user projection plus the creation
// time in unix milliseconds.
type Record struct {
	User      model.SafeUser `json:"user"`
	Timestamp int64          `json:"timestamp"`
}

// CreatedAt returns the creation time of the record.
func (r Record) CreatedAt() time.Time { return time.UnixMilli(r.Timestamp) }

// Expired reports whether the record is older than MaxAge at now.
func (r Record) Expired(now time.Time) bool {
	return now.Sub(r.CreatedAt()) > MaxAge
}

// Store reads and writes the session record.
type Store struct {
	durable kv.Store
	perTab  kv.Store
	now     func() time.Time
	logger  *zap.Logger
}

// NewStore returns a Store over the two tiers. A nil now defaults to
// time.Now and a nil logger to a no-op logger.
func NewStore(durable, perTab kv.Store, now func() time.Time, logger *zap.Logger) *Store {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{durable: durable, perTab: perTab, now: now, logger: logger}
}

// Save writes a fresh record for user into the durable tier when
// rememberMe is set and into the per-tab tier otherwise. The other tier is
// cleared so a stale record cannot shadow the new one.
func (s *Store) Save(ctx context.Context, user model.SafeUser, rememberMe bool) error {
	rec := Record{User: user, Timestamp: s.now().UnixMilli()}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	target, other := s.perTab, s.durable
	if rememberMe {
		target, other = s.durable, s.perTab
	}
	if err := target.Set(ctx, Key, string(b)); err != nil {
		return err
	}
	if err := other.Delete(ctx, Key); err != nil {
		s.logger.Warn("session: clear other tier failed", zap.Error(err))
	}
	return nil
}

// Load returns the stored record, reading the durable tier first. A
// malformed record is logged and reported as absent.
func (s *Store) Load(ctx context.Context) (Record, bool, error) {
	for _, tier := range []kv.Store{s.durable, s.perTab} {
		raw, ok, err := tier.Get(ctx, Key)
		if err != nil {
			return Record{}, false, err
		}
		if !ok || raw == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			s.logger.Warn("session: malformed record", zap.Error(err))
			return Record{}, false, nil
		}
		return rec, true, nil
	}
	return Record{}, false, nil
}

// Clear removes the record from both tiers. Clearing an absent session is
// not an error.
func (s *Store) Clear(ctx context.Context) error {
	errDurable := s.durable.Delete(ctx, Key)
	errTab := s.perTab.Delete(ctx, Key)
	if errDurable != nil {
		return errDurable
	}
	return errTab
}
