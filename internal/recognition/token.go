package recognition

import (
	"context"
	"strings"
)

// TokenSource resolves the API token for one call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed token, typically from the environment.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(t)), nil
}

// TokenStore holds a token that operators can change at runtime.
type TokenStore interface {
	GetRecognitionToken(ctx context.Context) (string, error)
}

// RuntimeToken prefers the runtime value and falls back to the configured one.
// A store error falls back too; the token is a setting, not a hard dependency.
type RuntimeToken struct {
	Store    TokenStore
	Fallback string
}

func (t RuntimeToken) Token(ctx context.Context) (string, error) {
	if t.Store != nil {
		if v, err := t.Store.GetRecognitionToken(ctx); err == nil {
			if v = strings.TrimSpace(v); v != "" {
				return v, nil
			}
		}
	}
	return strings.TrimSpace(t.Fallback), nil
}

// MaskToken hides all but the last four characters.
func MaskToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
