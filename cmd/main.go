package main

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/icsiak/studyshare/internal/api/v1/handlers"
	"github.com/icsiak/studyshare/internal/config"
	redisinfra "github.com/icsiak/studyshare/internal/infrastructure/redis"
	"github.com/icsiak/studyshare/internal/relay"
	"github.com/icsiak/studyshare/internal/services/materials"
	"github.com/icsiak/studyshare/internal/services/session"
	"github.com/icsiak/studyshare/internal/services/storage"
)

func main() {
	zerolog.SetGlobalLevel(config.GetLogLevel())

	api := buildAPI()

	addr := ":" + config.GetPort()
	log.Info().Str("addr", addr).Msg("Server starting")
	if err := http.ListenAndServe(addr, api.Router()); err != nil {
		log.Fatal().Err(err).Msg("ListenAndServe error")
	}
}

func buildAPI() *handlers.API {
	origin := config.GetAllowedOrigin()
	upstream := buildUpstream()

	redisService := redisinfra.NewService()

	// A nil *Service must not become a non-nil interface value.
	var sessionStore session.Store
	var materialStore materials.Store
	if redisService != nil {
		sessionStore = redisService
		materialStore = redisService
	}

	sessions := session.NewService(config.GetSessionSecret(), sessionStore)

	store, err := storage.NewService(config.GetStorageDir(), config.GetSessionSecret())
	if err != nil {
		log.Warn().Err(err).Msg("Object store unavailable")
		store = nil
	}

	return &handlers.API{
		Relay:     relay.NewHandler(upstream, origin),
		Upstream:  upstream,
		Sessions:  sessions,
		Materials: materials.NewService(materialStore),
		Storage:   store,
		Origin:    origin,
	}
}

// buildUpstream selects the deployment's provider adapter. One adapter is
// active at a time; both speak the same normalized event contract.
func buildUpstream() relay.Upstream {
	switch provider := config.GetUpstreamProvider(); provider {
	case "gemini":
		if u := relay.NewGeminiUpstream(config.GetGeminiURL(), config.GetGeminiKey(), config.GetGeminiModel(), nil); u != nil {
			return u
		}
	default:
		if u := relay.NewGatewayUpstream(config.GetGatewayURL(), config.GetGatewayKey(), config.GetGatewayModel(), nil); u != nil {
			return u
		}
	}
	return nil
}
