package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/gateways"
)

const (
	// DefaultRefreshInterval bounds how often an unknown token triggers a reload.
	DefaultRefreshInterval = 5 * time.Second

	maxSaveAttempts = 5
)

// TokenStore holds the admin token and the issued user tokens.
// Reads take a shared lock; AddUserToken serializes writers and only
// commits the new token in memory after it was persisted.
// Several processes may share one repository: every append reloads and
// merges the persisted config first, and Refresh picks up tokens issued elsewhere.
type TokenStore struct {
	mu   sync.RWMutex
	cfg  entities.TokenConfig
	repo gateways.TokenConfigRepository

	refreshMu       sync.Mutex
	refreshInterval time.Duration
	loadedAt        time.Time
}

// LoadTokenStore reads the persisted config, creating and saving a fresh one
// with a new admin token when none exists.
func LoadTokenStore(ctx context.Context, repo gateways.TokenConfigRepository, newAdminToken TokenGenerator) (*TokenStore, error) {
	cfg, err := repo.Load(ctx)
	switch {
	case err == nil:
		slog.Debug("configuração de tokens carregada", "user_tokens", len(cfg.UserTokens))
	case errors.Is(err, entities.ErrConfigNotFound):
		admin, genErr := newAdminToken()
		if genErr != nil {
			return nil, genErr
		}
		cfg = entities.TokenConfig{AdminToken: admin, UserTokens: []string{}}
		err = repo.Save(ctx, cfg)
		switch {
		case err == nil:
			slog.Info("nova configuração de tokens criada")
		case errors.Is(err, entities.ErrConfigConflict):
			// another process created it first
			if cfg, err = repo.Load(ctx); err != nil {
				return nil, fmt.Errorf("falha ao carregar configuração de tokens: %w", err)
			}
		default:
			return nil, fmt.Errorf("falha ao salvar nova configuração de tokens: %w", err)
		}
	default:
		return nil, fmt.Errorf("falha ao carregar configuração de tokens: %w", err)
	}

	if cfg.AdminToken == "" {
		return nil, errors.New("configuração de tokens sem ADMIN_API")
	}
	if cfg.UserTokens == nil {
		cfg.UserTokens = []string{}
	}

	return &TokenStore{
		cfg:             cfg,
		repo:            repo,
		refreshInterval: DefaultRefreshInterval,
		loadedAt:        time.Now(),
	}, nil
}

func (s *TokenStore) AdminToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.AdminToken
}

func (s *TokenStore) IsUserToken(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.cfg.UserTokens, token)
}

// Snapshot returns a copy of the current config.
func (s *TokenStore) Snapshot() entities.TokenConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Refresh reloads the persisted config and merges it into memory when the
// last reload is older than the refresh interval. It reports whether a reload happened.
func (s *TokenStore) Refresh(ctx context.Context) (bool, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.RLock()
	fresh := time.Since(s.loadedAt) < s.refreshInterval
	s.mu.RUnlock()
	if fresh {
		return false, nil
	}

	loaded, err := s.repo.Load(ctx)
	if errors.Is(err, entities.ErrConfigNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("falha ao recarregar configuração de tokens: %w", err)
	}

	s.mu.Lock()
	s.cfg = mergeConfig(s.cfg, loaded)
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return true, nil
}

// AddUserToken appends token and persists the whole config.
// It returns entities.ErrDuplicateToken if the token is already known
// (including when it equals the admin token).
func (s *TokenStore) AddUserToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		loaded, err := s.repo.Load(ctx)
		switch {
		case err == nil:
			s.cfg = mergeConfig(s.cfg, loaded)
			s.loadedAt = time.Now()
		case errors.Is(err, entities.ErrConfigNotFound):
		default:
			return fmt.Errorf("falha ao recarregar configuração de tokens: %w", err)
		}

		if token == s.cfg.AdminToken || slices.Contains(s.cfg.UserTokens, token) {
			return entities.ErrDuplicateToken
		}

		next := s.cfg.Clone()
		next.UserTokens = append(next.UserTokens, token)

		err = s.repo.Save(ctx, next)
		if errors.Is(err, entities.ErrConfigConflict) {
			slog.Debug("configuração de tokens alterada durante a gravação, recarregando", "attempt", attempt+1)
			continue
		}
		if err != nil {
			return fmt.Errorf("falha ao persistir configuração de tokens: %w", err)
		}

		s.cfg = next
		slog.Debug("configuração de tokens atualizada", "user_tokens", len(next.UserTokens))
		return nil
	}

	return fmt.Errorf("configuração de tokens não gravada após %d tentativas: %w", maxSaveAttempts, entities.ErrConfigConflict)
}

// mergeConfig keeps the persisted admin token and the union of user tokens,
// persisted ones first.
func mergeConfig(current, persisted entities.TokenConfig) entities.TokenConfig {
	merged := persisted.Clone()
	if merged.AdminToken == "" {
		merged.AdminToken = current.AdminToken
	}
	for _, t := range current.UserTokens {
		if !slices.Contains(merged.UserTokens, t) {
			merged.UserTokens = append(merged.UserTokens, t)
		}
	}
	return merged
}
