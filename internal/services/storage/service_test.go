package storage

import (
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func signedToken(t *testing.T, signed string) string {
	t.Helper()
	u, err := url.Parse(signed)
	assert.NoError(t, err)
	return u.Query().Get("token")
}

func TestPutAndSignedDownload(t *testing.T) {
	svc, err := NewService(t.TempDir(), "test-secret")
	assert.NoError(t, err)

	n, err := svc.Put("user-1-1700000000.pdf", strings.NewReader("catatan biologi"))
	assert.NoError(t, err)
	assert.Equal(t, int64(len("catatan biologi")), n)

	signed, err := svc.SignedURL("user-1-1700000000.pdf", time.Hour)
	assert.NoError(t, err)
	assert.Contains(t, signed, "/v1/files/user-1-1700000000.pdf?token=")

	f, err := svc.Open("user-1-1700000000.pdf", signedToken(t, signed))
	assert.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	assert.NoError(t, err)
	assert.Equal(t, "catatan biologi", string(content))
}

func TestOpenRejectsBadTokens(t *testing.T) {
	svc, err := NewService(t.TempDir(), "test-secret")
	assert.NoError(t, err)

	_, err = svc.Put("a.txt", strings.NewReader("x"))
	assert.NoError(t, err)
	_, err = svc.Put("b.txt", strings.NewReader("y"))
	assert.NoError(t, err)

	// Garbage token.
	_, err = svc.Open("a.txt", "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Token signed for a different key.
	signed, err := svc.SignedURL("b.txt", time.Hour)
	assert.NoError(t, err)
	_, err = svc.Open("a.txt", signedToken(t, signed))
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Expired token.
	signed, err = svc.SignedURL("a.txt", -time.Minute)
	assert.NoError(t, err)
	_, err = svc.Open("a.txt", signedToken(t, signed))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestKeysCannotEscapeDirectory(t *testing.T) {
	svc, err := NewService(t.TempDir(), "test-secret")
	assert.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/b", `a\b`, "."} {
		_, err := svc.Put(key, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}
