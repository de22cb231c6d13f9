// Package redis provides the Redis client setup used by the horizontal
// state-store deployment: URL-based configuration, a startup retry loop and
// a ping healthcheck, built on github.com/redis/go-redis/v9.
//
// Redis stays optional. When REDIS_URL is unset the service runs with the
// in-memory state store instead.
package redis
