package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc, err := NewTokenService(testKey(), time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(Identity{
		ExternalID: "google-123",
		Email:      "ona@example.com",
		Name:       "Ona",
		Picture:    "https://example.com/ona.png",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	ident := claims.Identity()
	assert.Equal(t, "google-123", ident.ExternalID)
	assert.Equal(t, "ona@example.com", ident.Email)
	assert.Equal(t, "Ona", ident.Name)
	assert.Equal(t, "https://example.com/ona.png", ident.Picture)
	assert.Equal(t, TokenIssuer, claims.Issuer)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	svc, err := NewTokenService(testKey(), time.Minute)
	require.NoError(t, err)

	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.Issue(Identity{ExternalID: "google-123"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsOtherKey(t *testing.T) {
	issuer, err := NewTokenService(testKey(), time.Hour)
	require.NoError(t, err)
	token, err := issuer.Issue(Identity{ExternalID: "google-123"})
	require.NoError(t, err)

	other, err := NewTokenService([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)

	_, err = other.Verify("not-a-token")
	assert.Error(t, err)
}

func TestTokenService_IssueRequiresSubject(t *testing.T) {
	svc, err := NewTokenService(testKey(), time.Hour)
	require.NoError(t, err)

	_, err = svc.Issue(Identity{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestNewTokenService_KeyLength(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Hour)
	assert.Error(t, err)
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := t.TempDir()

	key, err := LoadOrGenerateKey("", dir)
	require.NoError(t, err)
	assert.Len(t, key, keyLength)

	info, err := os.Stat(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := LoadOrGenerateKey("", dir)
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestLoadOrGenerateKey_ConfiguredWins(t *testing.T) {
	hexKey := strings.Repeat("ab", 32)

	key, err := LoadOrGenerateKey(hexKey, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), key[0])

	_, err = LoadOrGenerateKey("abc", t.TempDir())
	assert.Error(t, err)

	_, err = DecodeKey(strings.Repeat("zz", 32))
	assert.Error(t, err)
}
