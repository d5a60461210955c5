package config

import "github.com/rs/zerolog/log"

// GetRedisURL returns the Redis address, empty when not configured.
func GetRedisURL() string {
	value := GetEnvOrDefault("REDIS_URL", "")
	if value == "" {
		log.Warn().Msg("Redis URL not set - record store will be unavailable")
	}
	return value
}

// GetRedisPassword returns the Redis password.
func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}
