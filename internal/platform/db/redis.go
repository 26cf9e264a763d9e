package db

import (
	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a client for addr, or nil when no address is configured.
// The client connects lazily; the first command surfaces connection errors.
func ConnectRedis(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}
