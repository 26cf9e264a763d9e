package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

const routeKeyPrefix = "route:v1:"

// RedisRouteCache stores routes as JSON under a key built from the ordered
// waypoint coordinates. Entries expire after TTL.
type RedisRouteCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisRouteCache(client redis.Cmdable, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{client: client, ttl: ttl}
}

func (c *RedisRouteCache) Get(ctx context.Context, points []domain.Coordinates) (_ ports.Route, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	b, err := c.client.Get(ctx, routeKey(points)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.Route{}, false, nil
	}
	if err != nil {
		return ports.Route{}, false, fmt.Errorf("get route cache: %w", err)
	}

	var route ports.Route
	if err := json.Unmarshal(b, &route); err != nil {
		return ports.Route{}, false, fmt.Errorf("get route cache: decode: %w", err)
	}

	return route, true, nil
}

func (c *RedisRouteCache) Put(ctx context.Context, points []domain.Coordinates, route ports.Route) (err error) {
	defer obs.Time(ctx, "route.cache.Put")(&err)

	b, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("put route cache: encode: %w", err)
	}

	if err := c.client.Set(ctx, routeKey(points), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("put route cache: %w", err)
	}
	return nil
}

func routeKey(points []domain.Coordinates) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, p.LonLatString())
	}
	return routeKeyPrefix + strings.Join(parts, ";")
}
