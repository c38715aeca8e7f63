// Package gmail reads recent inbox messages and sends digest mail through
// the Gmail API.
package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"golang.org/x/oauth2"

	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
)

// Token manages an OAuth2 token with thread-safe access and disk
// persistence. Refreshed tokens are written back so re-authorization is only
// needed when the refresh token itself expires.
type Token struct {
	mu          sync.RWMutex
	cfg         *oauth2.Config
	token       *oauth2.Token
	persistPath string
}

// NewToken creates a Token manager, loading from disk if the file exists.
func NewToken(cfg *oauth2.Config, persistPath string) (*Token, error) {
	t := &Token{
		cfg:         cfg,
		persistPath: persistPath,
	}
	if persistPath == "" {
		return t, nil
	}

	f, err := os.Open(persistPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return t, nil
		}

		return nil, fmt.Errorf("os.Open failed: %w", err)
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("json.NewDecoder.Decode failed: %w", err)
	}
	t.token = token

	return t, nil
}

// Set stores a freshly exchanged token and persists it.
func (t *Token) Set(token *oauth2.Token) error {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()

	return t.Persist()
}

// OAuthToken returns the current OAuth2 token.
func (t *Token) OAuthToken() (*oauth2.Token, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.token == nil {
		return nil, apperrors.ErrTokenNotSet
	}

	return t.token, nil
}

// TokenSource wraps the config's refreshing source so refreshed tokens are
// captured and persisted.
func (t *Token) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	current, err := t.OAuthToken()
	if err != nil {
		return nil, err
	}

	return &persistingSource{token: t, src: t.cfg.TokenSource(ctx, current)}, nil
}

// Persist saves the token to disk.
func (t *Token) Persist() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.persistPath == "" || t.token == nil {
		return nil
	}

	f, err := os.OpenFile(t.persistPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("os.OpenFile failed: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(t.token); err != nil {
		return fmt.Errorf("json.NewEncoder.Encode failed: %w", err)
	}

	return nil
}

// persistingSource persists tokens whenever the underlying source refreshes
// them.
type persistingSource struct {
	token *Token
	src   oauth2.TokenSource
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.token.mu.Lock()
	changed := s.token.token == nil || s.token.token.AccessToken != tok.AccessToken
	s.token.token = tok
	s.token.mu.Unlock()

	if changed {
		if err := s.token.Persist(); err != nil {
			return nil, err
		}
	}

	return tok, nil
}
