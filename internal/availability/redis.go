package availability

import (
	"context"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis keeps one set per slot under bocatto:availability:<date>:<time>.
// Sets carry no expiry: the index only grows.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis returns a Redis-backed Index.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, prefix: "bocatto:availability:"}
}

func (r *Redis) key(date, slot string) string {
	return r.prefix + date + ":" + slot
}

func (r *Redis) IsBooked(ctx context.Context, date, slot, envID string) (bool, error) {
	return r.rdb.SIsMember(ctx, r.key(date, slot), envID).Result()
}

func (r *Redis) Occupied(ctx context.Context, date, slot string) ([]string, error) {
	out, err := r.rdb.SMembers(ctx, r.key(date, slot)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (r *Redis) Book(ctx context.Context, date, slot, envID string) error {
	return r.rdb.SAdd(ctx, r.key(date, slot), envID).Err()
}

// Seed adds the given bookings. Sets are unions, so running it on every
// start is harmless.
func (r *Redis) Seed(ctx context.Context, seed Slots) error {
	pipe := r.rdb.Pipeline()
	for date, times := range seed {
		for slot, envs := range times {
			for _, env := range envs {
				pipe.SAdd(ctx, r.key(date, slot), env)
			}
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

// New returns the index the server runs on: Redis seeded with the existing
// bookings, or a memory index when rdb is nil. A failed seed is logged and
// the Redis index is still returned.
func New(ctx context.Context, rdb *redis.Client, logger *zap.Logger) Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rdb == nil {
		return NewMemory(Existing())
	}
	idx := NewRedis(rdb)
	seedCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := idx.Seed(seedCtx, Existing()); err != nil {
		logger.Warn("seed availability failed", zap.Error(err))
	}
	return idx
}
