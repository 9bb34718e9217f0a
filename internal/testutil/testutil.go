// Package testutil provides testing utilities and helpers for the console client stack.
package testutil

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TestingTB is a subset of testing.TB used by the helpers here.
type TestingTB interface {
	Helper()
	Cleanup(func())
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
}

// GetTestRedisAddr returns the Redis address for tests, defaulting to the
// local test instance. TEST_REDIS_ADDR overrides it; an empty value after an
// explicit override disables Redis tests.
func GetTestRedisAddr() string {
	if addr, ok := os.LookupEnv("TEST_REDIS_ADDR"); ok {
		return strings.TrimSpace(addr)
	}
	return "localhost:6379"
}

// SetupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := GetTestRedisAddr()
	if addr == "" {
		t.Skip("Redis tests disabled (TEST_REDIS_ADDR is empty)")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client after ping error: %v", cerr)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("warning: failed to close redis client: %v", err)
		}
	})

	return client
}
