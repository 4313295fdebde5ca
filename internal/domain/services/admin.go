package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
)

const maxIssueAttempts = 5

type AdminService struct {
	auth     *Authenticator
	tokens   *TokenStore
	generate TokenGenerator
}

func NewAdminService(auth *Authenticator, tokens *TokenStore, generate TokenGenerator) *AdminService {
	if generate == nil {
		generate = NewTokenGenerator(UserTokenBytes)
	}
	return &AdminService{auth: auth, tokens: tokens, generate: generate}
}

// IssueToken mints, persists and returns a new user token. Only the admin token may call it.
func (s *AdminService) IssueToken(ctx context.Context, adminToken string) (string, error) {
	if err := s.auth.Authorize(ctx, adminToken, AdminOnly); err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		token, err := s.generate()
		if err != nil {
			return "", err
		}

		err = s.tokens.AddUserToken(ctx, token)
		if errors.Is(err, entities.ErrDuplicateToken) {
			continue
		}
		if err != nil {
			return "", err
		}

		slog.Debug("novo token de usuário emitido", "user_tokens", len(s.tokens.Snapshot().UserTokens))
		return token, nil
	}

	return "", fmt.Errorf("nenhum token único após %d tentativas: %w", maxIssueAttempts, entities.ErrDuplicateToken)
}
