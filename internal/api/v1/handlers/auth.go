package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/icsiak/studyshare/internal/middleware"
	"github.com/icsiak/studyshare/pkg/httpext"
)

type signInRequest struct {
	Email string `json:"email"`
}

type signInResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// HandleSignIn issues a session token for the given email.
func (a *API) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if a.Sessions == nil {
		httpext.JsonError(w, "Auth is not configured", http.StatusServiceUnavailable)
		return
	}

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	token, sess, err := a.Sessions.SignIn(r.Context(), req.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue session")
		httpext.JsonError(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, signInResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   sess.ExpiresAt,
	})
}

// HandleSignOut revokes the session carried by the bearer token.
func (a *API) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if a.Sessions == nil {
		httpext.JsonError(w, "Auth is not configured", http.StatusServiceUnavailable)
		return
	}

	token := middleware.ExtractBearer(r)
	if token == "" {
		httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := a.Sessions.SignOut(r.Context(), token); err != nil {
		httpext.JsonError(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession returns the current session.
func (a *API) HandleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.GetSession(r))
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
