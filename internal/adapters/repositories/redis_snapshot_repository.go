package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/apperr"
	"safe-route-service/internal/platform/obs"
	"safe-route-service/internal/ports"
)

const snapshotKeyPrefix = "saferoute:share:"

// RedisSnapshotRepository stores each snapshot as one JSON value. Writes use
// SET NX so an id is never overwritten.
type RedisSnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotRepository returns a store whose snapshots expire after
// ttl. Zero keeps them forever.
func NewRedisSnapshotRepository(client *redis.Client, ttl time.Duration) *RedisSnapshotRepository {
	return &RedisSnapshotRepository{client: client, ttl: ttl}
}

var _ ports.SnapshotRepository = (*RedisSnapshotRepository)(nil)

func (r *RedisSnapshotRepository) Save(ctx context.Context, snapshot domain.ShareSnapshot) (err error) {
	defer obs.Time(ctx, "snapshots.redis.Save")(&err)

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("save snapshot: encode: %w", err)
	}

	ok, err := r.client.SetNX(ctx, snapshotKeyPrefix+snapshot.ID, raw, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", snapshot.ID, err)
	}
	if !ok {
		return fmt.Errorf("save snapshot: id %q already exists", snapshot.ID)
	}
	return nil
}

func (r *RedisSnapshotRepository) Get(ctx context.Context, id string) (_ domain.ShareSnapshot, err error) {
	defer obs.Time(ctx, "snapshots.redis.Get")(&err)

	raw, err := r.client.Get(ctx, snapshotKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ShareSnapshot{}, apperr.NotFound(fmt.Sprintf("share %q not found", id))
	}
	if err != nil {
		return domain.ShareSnapshot{}, fmt.Errorf("get snapshot %q: %w", id, err)
	}

	var snapshot domain.ShareSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return domain.ShareSnapshot{}, fmt.Errorf("get snapshot %q: decode: %w", id, err)
	}
	return snapshot, nil
}
