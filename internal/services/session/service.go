// Package session implements the auth-provider collaborator: sign-in
// issues a signed session token, sign-out revokes it, and handlers look up
// the current session from a bearer token.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	keyPrefix  = "session:"
	defaultTTL = 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("session: invalid token")
	ErrRevoked      = errors.New("session: token has been revoked")
)

// Session is one authenticated session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store records active session IDs so sign-out can revoke a token before
// its expiry. Implemented by the Redis infrastructure service.
type Store interface {
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Del(ctx context.Context, key string) error
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
	store  Store
}

// NewService builds the session service. Returns nil when the signing
// secret is missing. A nil store degrades to stateless validation: tokens
// stay valid until expiry and sign-out is a no-op.
func NewService(secret string, store Store) *Service {
	if secret == "" {
		log.Warn().Msg("Session service not configured - signing secret missing")
		return nil
	}
	return &Service{
		secret: []byte(secret),
		ttl:    defaultTTL,
		store:  store,
	}
}

// SignIn issues a signed token for the given email.
func (s *Service) SignIn(ctx context.Context, email string) (string, Session, error) {
	now := time.Now()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    uuid.NewString(),
		Email:     email,
		ExpiresAt: now.Add(s.ttl),
	}

	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Session{}, err
	}

	if s.store != nil {
		if err := s.store.Set(ctx, keyPrefix+sess.ID, sess.UserID, s.ttl); err != nil {
			return "", Session{}, err
		}
	}

	log.Info().Str("session_id", sess.ID).Msg("Session issued")
	return token, sess, nil
}

// Session validates a token and returns the session it carries.
func (s *Service) Session(ctx context.Context, token string) (Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return Session{}, err
	}

	if s.store != nil {
		_, found, err := s.store.Get(ctx, keyPrefix+claims.ID)
		if err != nil {
			return Session{}, err
		}
		if !found {
			return Session{}, ErrRevoked
		}
	}

	return Session{
		ID:        claims.ID,
		UserID:    claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignOut revokes the session carried by the token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}
	return s.store.Del(ctx, keyPrefix+claims.ID)
}

func (s *Service) parse(token string) (*sessionClaims, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
