// Package storage implements the object-store collaborator: uploads land
// in a local directory and downloads go through time-limited signed URLs.
package storage

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidKey   = errors.New("storage: invalid object key")
	ErrInvalidToken = errors.New("storage: invalid download token")
)

type Service struct {
	dir    string
	secret []byte
}

// NewService prepares the backing directory.
func NewService(dir, secret string) (*Service, error) {
	if secret == "" {
		return nil, errors.New("storage: signing secret is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Service{dir: dir, secret: []byte(secret)}, nil
}

// Put stores an object under key, returning the number of bytes written.
func (s *Service) Put(key string, r io.Reader) (int64, error) {
	path, err := s.path(key)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return n, err
	}

	log.Info().Str("key", key).Int64("bytes", n).Msg("Object stored")
	return n, nil
}

// SignedURL returns a relative download URL valid for ttl.
func (s *Service) SignedURL(key string, ttl time.Duration) (string, error) {
	if _, err := s.path(key); err != nil {
		return "", err
	}

	claims := jwt.RegisteredClaims{
		Subject:   key,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("/v1/files/%s?token=%s", url.PathEscape(key), token), nil
}

// Open verifies the download token against the key and opens the object.
func (s *Service) Open(key, token string) (*os.File, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject != key {
		return nil, ErrInvalidToken
	}

	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// path resolves a key inside the backing directory, rejecting anything
// that would escape it.
func (s *Service) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, "/\\") || key != filepath.Base(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.dir, key), nil
}
