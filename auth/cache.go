package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// loadToken reads the cached token from disk. A missing or unreadable
// cache maps to ErrNoAccount so callers fall through to interactive
// sign-in.
func (a *Authenticator) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(a.cachePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoAccount
		}
		return nil, fmt.Errorf("read token cache: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		a.log.Warn("discarding corrupt token cache", "path", a.cachePath, "error", err)
		_ = os.Remove(a.cachePath)
		return nil, ErrNoAccount
	}
	if tok.RefreshToken == "" && !tok.Valid() {
		return nil, fmt.Errorf("%w: cached token expired", ErrNoAccount)
	}
	return &tok, nil
}

// saveToken writes the token cache with owner-only permissions.
func (a *Authenticator) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(a.cachePath), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(a.cachePath, data, 0600)
}

func (a *Authenticator) removeToken() error {
	err := os.Remove(a.cachePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// cachingTokenSource persists refreshed tokens so the next launch can
// sign in silently.
type cachingTokenSource struct {
	mu     sync.Mutex
	src    oauth2.TokenSource
	auth   *Authenticator
	access string
}

func (s *cachingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.access {
		s.access = tok.AccessToken
		if err := s.auth.saveToken(tok); err != nil {
			s.auth.log.Warn("token cache write failed", "error", err)
		}
	}
	return tok, nil
}
