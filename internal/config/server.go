package config

import "github.com/rs/zerolog"

// GetPort returns the port the HTTP server listens on.
func GetPort() string {
	return GetEnvOrDefault("PORT", "8080")
}

// GetAllowedOrigin returns the origin permitted by the CORS headers.
func GetAllowedOrigin() string {
	return GetEnvOrDefault("ALLOWED_ORIGIN", "https://studyshare.icsiak.site")
}

// GetLogLevel parses LOG_LEVEL into a zerolog level, defaulting to info.
func GetLogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(GetEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
