package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/api"
)

type fakeAuthenticator struct {
	token *api.Token
	err   error
	calls int
}

func (f *fakeAuthenticator) Login(_ context.Context, _, _ string) (*api.Token, error) {
	f.calls++
	return f.token, f.err
}

func TestSignIn_StoresCredential(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "creds.json"))
	token := signedToken(t, time.Now().Add(time.Hour))
	backend := &fakeAuthenticator{token: &api.Token{AccessToken: token, TokenType: "bearer"}}

	cred, err := m.SignIn(context.Background(), backend, "learner@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "learner@example.com", cred.Email)
	assert.False(t, cred.IssuedAt.IsZero())

	got, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestSignIn_FailureKeepsExistingCredential(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "creds.json"))
	require.NoError(t, m.Login(Credential{AccessToken: "opaque-token", TokenType: "bearer", Email: "old@example.com"}))

	backend := &fakeAuthenticator{err: &api.Error{Kind: api.KindUnauthenticated, Op: "login", Status: 401}}
	_, err := m.SignIn(context.Background(), backend, "new@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, api.IsKind(err, api.KindUnauthenticated))

	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "old@example.com", cur.Email)
}
