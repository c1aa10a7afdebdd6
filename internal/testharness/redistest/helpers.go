package redistest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// GetRedisAddress returns the Redis address, defaulting to "localhost:6379".
// If REDIS_ADDR environment variable is set, it's used.
// If CI environment variable is "true", it defaults to "redis:6379".
func GetRedisAddress() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	if os.Getenv("CI") == "true" {
		return "redis:6379"
	}
	return "localhost:6379"
}

// SetupRedisClient initializes and returns a Redis client for integration tests.
// It fails the test if connection to Redis cannot be established.
func SetupRedisClient(tb testing.TB) *redis.Client {
	tb.Helper()
	redisAddr := GetRedisAddress()
	tb.Logf("Connecting to Redis for integration tests at %s", redisAddr)

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		tb.Fatalf("Failed to connect to Redis at %s: %v. Ensure Redis is running and accessible.", redisAddr, err)
	}
	return client
}

// CleanupRedisKeys deletes every key under "keyPrefix:*".
func CleanupRedisKeys(tb testing.TB, client *redis.Client, keyPrefix string) {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scanPattern := keyPrefix + ":*"
	var keys []string
	iter := client.Scan(ctx, 0, scanPattern, 50).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		tb.Fatalf("Failed to SCAN for keys with pattern '%s': %v", scanPattern, err)
	}
	if len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		tb.Errorf("Failed to DEL keys during cleanup (pattern: %s): %v", scanPattern, err)
	}
	tb.Logf("Cleaned up %d keys matching pattern '%s'", len(keys), scanPattern)
}
