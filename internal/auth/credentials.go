// Package auth owns the process-wide credential: it is established by
// login, persisted between runs, and torn down by logout.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoCredential means nobody is logged in.
	ErrNoCredential = errors.New("not logged in")
	// ErrExpired means the stored token is past its exp claim.
	ErrExpired = errors.New("credential expired")
)

// Credential is a bearer token and who it belongs to.
type Credential struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Email       string    `json:"email,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Manager holds the current credential and mirrors it to a file.
// It is safe for concurrent use.
type Manager struct {
	mu   sync.RWMutex
	path string
	cred *Credential
	now  func() time.Time
}

// NewManager returns a Manager persisting to path. Call Init to load any
// previously saved credential.
func NewManager(path string) *Manager {
	return &Manager{path: path, now: time.Now}
}

// Init loads the persisted credential. A missing file is not an error.
func (m *Manager) Init() error {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return fmt.Errorf("decode credentials: %w", err)
	}
	if cred.AccessToken == "" {
		return nil
	}

	m.mu.Lock()
	m.cred = &cred
	m.mu.Unlock()
	return nil
}

// Login replaces the current credential and persists it.
func (m *Manager) Login(cred Credential) error {
	if strings.TrimSpace(cred.AccessToken) == "" {
		return errors.New("empty access token")
	}
	if cred.IssuedAt.IsZero() {
		cred.IssuedAt = m.now().UTC()
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}

	m.mu.Lock()
	m.cred = &cred
	m.mu.Unlock()
	return nil
}

// Logout clears the credential in memory and on disk.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.cred = nil
	m.mu.Unlock()

	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// Current returns a copy of the credential, if any.
func (m *Manager) Current() (Credential, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil {
		return Credential{}, false
	}
	return *m.cred, true
}

// Token returns the bearer token, or ErrNoCredential / ErrExpired.
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	cred := m.cred
	m.mu.RUnlock()

	if cred == nil {
		return "", ErrNoCredential
	}
	if exp, ok := ExpiresAt(cred.AccessToken); ok && !m.now().Before(exp) {
		return "", ErrExpired
	}
	return cred.AccessToken, nil
}

// ExpiresAt reads the exp claim of a JWT without verifying its signature.
// The server is the authority on validity; this only avoids sending a
// token that is already known to be dead. Opaque tokens report false.
func ExpiresAt(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
