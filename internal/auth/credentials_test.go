package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "learner@example.com",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestManager_NoCredential(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "creds.json"))
	require.NoError(t, m.Init())

	_, err := m.Token()
	assert.ErrorIs(t, err, ErrNoCredential)
	_, ok := m.Current()
	assert.False(t, ok)
}

func TestManager_LoginPersistsAndLogoutRemoves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "creds.json")
	m := NewManager(path)
	token := signedToken(t, time.Now().Add(time.Hour))

	require.NoError(t, m.Login(Credential{AccessToken: token, TokenType: "bearer", Email: "a@b.c"}))

	got, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, token, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A fresh manager sees the persisted credential.
	other := NewManager(path)
	require.NoError(t, other.Init())
	cred, ok := other.Current()
	require.True(t, ok)
	assert.Equal(t, "a@b.c", cred.Email)

	require.NoError(t, m.Logout())
	_, err = m.Token()
	assert.ErrorIs(t, err, ErrNoCredential)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Logging out twice is harmless.
	assert.NoError(t, m.Logout())
}

func TestManager_ExpiredToken(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "creds.json"))
	require.NoError(t, m.Login(Credential{AccessToken: signedToken(t, time.Now().Add(-time.Minute))}))

	_, err := m.Token()
	assert.ErrorIs(t, err, ErrExpired)
}

func TestManager_OpaqueTokenAccepted(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "creds.json"))
	require.NoError(t, m.Login(Credential{AccessToken: "opaque-token"}))

	got, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", got)
}

func TestManager_LoginRejectsEmptyToken(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "creds.json"))
	assert.Error(t, m.Login(Credential{AccessToken: "  "}))
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := ExpiresAt(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = ExpiresAt("not.a.jwt")
	assert.False(t, ok)
}
