package config

import "github.com/rs/zerolog/log"

// GetSessionSecret returns the HMAC secret used to sign session tokens and
// signed download URLs.
func GetSessionSecret() string {
	value := GetEnvOrDefault("SESSION_SECRET", "")
	if value == "" {
		log.Warn().Msg("SESSION_SECRET not set - auth endpoints will be unavailable")
	}
	return value
}
