// Package redis wraps the go-redis client used as the backing store for
// material records and session revocation.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/icsiak/studyshare/internal/config"
)

type Service struct {
	client *redis.Client
}

// NewService connects to Redis using process configuration. Returns nil
// when unconfigured or unreachable; dependent services degrade gracefully.
func NewService() *Service {
	url := config.GetRedisURL()
	if url == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     url,
		Password: config.GetRedisPassword(),
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Error().
			Err(err).
			Str("addr", url).
			Msg("Failed to establish Redis connection")
		return nil
	}

	return &Service{client: client}
}

// Set stores a value with an optional expiration.
func (s *Service) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	if err := s.client.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Redis SET operation failed")
		return err
	}
	return nil
}

// Get retrieves a value. found is false when the key does not exist.
func (s *Service) Get(ctx context.Context, key string) (value string, found bool, err error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Redis GET operation failed")
		return "", false, err
	}
	return val, true, nil
}

// Del removes a key.
func (s *Service) Del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Redis DEL operation failed")
		return err
	}
	return nil
}

// SAdd adds a member to a set.
func (s *Service) SAdd(ctx context.Context, key, member string) error {
	if err := s.client.SAdd(ctx, key, member).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Redis SADD operation failed")
		return err
	}
	return nil
}

// SRem removes a member from a set.
func (s *Service) SRem(ctx context.Context, key, member string) error {
	if err := s.client.SRem(ctx, key, member).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Redis SREM operation failed")
		return err
	}
	return nil
}

// SMembers returns all members of a set.
func (s *Service) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Redis SMEMBERS operation failed")
		return nil, err
	}
	return members, nil
}
