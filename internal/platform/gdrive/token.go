package gdrive

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenSource prefers the caller's own access token and falls back to Application
// Default Credentials for the requested scopes.
type TokenSource struct {
	// DisableADC refuses the fallback, so a missing caller token is an auth failure.
	DisableADC bool
	find       func(ctx context.Context, scopes ...string) (oauth2.TokenSource, error)
}

func NewTokenSource(disableADC bool) *TokenSource {
	return &TokenSource{DisableADC: disableADC, find: google.DefaultTokenSource}
}

func (s *TokenSource) Token(ctx context.Context, fallback string, scopes []string) (string, error) {
	if tok := strings.TrimSpace(fallback); tok != "" {
		return tok, nil
	}
	if s.DisableADC || s.find == nil {
		return "", fmt.Errorf("no access token supplied")
	}
	ts, err := s.find(ctx, scopes...)
	if err != nil {
		return "", fmt.Errorf("default credentials: %w", err)
	}
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("acquire token: %w", err)
	}
	if !tok.Valid() {
		return "", fmt.Errorf("acquired token is not valid")
	}
	return tok.AccessToken, nil
}
