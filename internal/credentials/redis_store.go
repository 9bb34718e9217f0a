package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

const defaultRedisKey = "console:credentials"

// RedisStore persists the credential pair in Redis, in its oauth2 token
// form. It exists for shared or headless environments (CI runners,
// multi-process consoles) where a single login should be reusable across
// processes.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore creates a Redis-backed credential store using the default key.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		key:    defaultRedisKey,
	}
}

// NewRedisStoreWithKey creates a Redis credential store with a custom key,
// allowing several consoles to share one Redis instance.
func NewRedisStoreWithKey(client redis.UniversalClient, key string) *RedisStore {
	return &RedisStore{
		client: client,
		key:    key,
	}
}

func (s *RedisStore) Get(ctx context.Context) (Pair, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Pair{}, ErrNoCredentials
		}
		return Pair{}, fmt.Errorf("redis get: %w", err)
	}

	var tok oauth2.Token
	if unmarshalErr := json.Unmarshal([]byte(data), &tok); unmarshalErr != nil {
		return Pair{}, fmt.Errorf("unmarshal credentials: %w", unmarshalErr)
	}
	pair := PairFromToken(&tok)
	if pair.IsZero() {
		return Pair{}, ErrNoCredentials
	}
	return pair, nil
}

func (s *RedisStore) Set(ctx context.Context, pair Pair) error {
	data, err := json.Marshal(pair.Token())
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	// Tokens have no client-visible expiry; the server decides their lifetime.
	return s.client.Set(ctx, s.key, data, 0).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
