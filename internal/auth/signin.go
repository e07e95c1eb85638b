package auth

import (
	"context"
	"fmt"

	"github.com/abhisek/studyhall/internal/api"
)

// Authenticator exchanges email and password for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.Token, error)
}

// SignIn logs in against the backend and makes the returned token the
// process credential. A failed login leaves the current credential alone.
func (m *Manager) SignIn(ctx context.Context, backend Authenticator, email, password string) (Credential, error) {
	tok, err := backend.Login(ctx, email, password)
	if err != nil {
		return Credential{}, err
	}
	cred := Credential{AccessToken: tok.AccessToken, TokenType: tok.TokenType, Email: email}
	if err := m.Login(cred); err != nil {
		return Credential{}, fmt.Errorf("save credential: %w", err)
	}
	cred, _ = m.Current()
	return cred, nil
}
