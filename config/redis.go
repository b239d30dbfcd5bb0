package config

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
)

// RedisClient is a global Redis client instance
var RedisClient *redis.Client
//Accessed as config.RedisClient in other files

func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		RedisClient = nil
		return
	}
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       GetEnvInt("REDIS_DB", 0),
	})
}

func RedisCtx() context.Context {
	return context.Background()
}

// PingRedis disables RedisClient when it is configured but not reachable.
// It returns a status line for the startup log.
func PingRedis() string {
	if RedisClient == nil {
		return "Redis not configured, using in-memory cache."
	}
	if err := RedisClient.Ping(RedisCtx()).Err(); err != nil {
		RedisClient = nil
		return "Redis configured but not reachable, using in-memory cache."
	}
	return "Redis connection successful."
}
