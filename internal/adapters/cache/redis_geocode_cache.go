package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"safe-route-service/internal/domain"
	"safe-route-service/internal/platform/obs"
)

const geocodeKeyPrefix = "saferoute:geocode:"

// RedisGeocodeCache keeps address -> coordinate mappings in Redis with an
// optional expiry.
type RedisGeocodeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGeocodeCache returns a cache whose entries expire after ttl.
// Zero keeps them forever.
func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{client: client, ttl: ttl}
}

func (r *RedisGeocodeCache) Get(ctx context.Context, address string) (_ domain.Coordinate, ok bool, err error) {
	defer obs.Time(ctx, "geocode.redis.Get")(&err)

	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Coordinate{}, false, nil
	}

	raw, err := r.client.Get(ctx, geocodeKeyPrefix+address).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Coordinate{}, false, nil
	}
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("get geocode cache: %w", err)
	}

	var c domain.Coordinate
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("get geocode cache: decode %q: %w", address, err)
	}
	return c, true, nil
}

func (r *RedisGeocodeCache) Put(ctx context.Context, address string, c domain.Coordinate) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("insert geocode cache: empty address key")
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("insert geocode cache: encode: %w", err)
	}
	if err := r.client.Set(ctx, geocodeKeyPrefix+address, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("insert geocode cache address=%q: %w", address, err)
	}
	return nil
}
