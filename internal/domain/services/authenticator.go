package services

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
)

type tokenSource interface {
	AdminToken() string
	IsUserToken(token string) bool
	Refresh(ctx context.Context) (bool, error)
}

// Authenticator classifies tokens against a TokenStore.
type Authenticator struct {
	tokens tokenSource
}

func NewAuthenticator(tokens *TokenStore) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Classify resolves token against the store. An unknown token triggers one
// rate-limited reload so tokens issued by other processes are recognized.
func (a *Authenticator) Classify(ctx context.Context, token string) entities.TokenClass {
	if token == "" {
		return entities.TokenInvalid
	}
	if c := a.classify(token); c != entities.TokenInvalid {
		return c
	}

	refreshed, err := a.tokens.Refresh(ctx)
	if err != nil {
		slog.Warn("falha ao recarregar tokens", "error", err)
		return entities.TokenInvalid
	}
	if !refreshed {
		return entities.TokenInvalid
	}
	return a.classify(token)
}

func (a *Authenticator) classify(token string) entities.TokenClass {
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.tokens.AdminToken())) == 1 {
		return entities.TokenAdmin
	}
	if a.tokens.IsUserToken(token) {
		return entities.TokenUser
	}
	return entities.TokenInvalid
}

// Policy reports whether a token class may call an operation.
type Policy func(entities.TokenClass) bool

// AdminOnly accepts only the admin token.
func AdminOnly(c entities.TokenClass) bool { return c == entities.TokenAdmin }

// AdminOrUser accepts any issued token plus the admin token.
func AdminOrUser(c entities.TokenClass) bool {
	return c == entities.TokenAdmin || c == entities.TokenUser
}

// Authorize returns entities.ErrUnauthorized when policy rejects token.
func (a *Authenticator) Authorize(ctx context.Context, token string, policy Policy) error {
	if !policy(a.Classify(ctx, token)) {
		return entities.ErrUnauthorized
	}
	return nil
}
