package realtime

import (
	"log"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates a Redis client for cross-instance event fanout. An empty
// addr disables Redis entirely; the hub then only reaches local clients.
func NewRedis(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	log.Printf("realtime: redis client created (addr: %s)", addr)
	return rdb
}
