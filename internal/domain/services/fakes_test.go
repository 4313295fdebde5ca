package services

import (
	"context"
	"errors"
	"sync"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
)

type memoryConfigRepo struct {
	mu      sync.Mutex
	cfg     *entities.TokenConfig
	saves   int
	saveErr error
	version int
}

func (m *memoryConfigRepo) Load(ctx context.Context) (entities.TokenConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return entities.TokenConfig{}, entities.ErrConfigNotFound
	}
	return m.cfg.Clone(), nil
}

func (m *memoryConfigRepo) Save(ctx context.Context, cfg entities.TokenConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	c := cfg.Clone()
	m.cfg = &c
	m.saves++
	m.version++
	return nil
}

// processView is one process's handle on a shared memoryConfigRepo. Save is
// conditional on the version seen by the last Load, like an S3 If-Match put.
type processView struct {
	shared     *memoryConfigRepo
	seen       int
	beforeSave func()
}

func (v *processView) Load(ctx context.Context) (entities.TokenConfig, error) {
	v.shared.mu.Lock()
	defer v.shared.mu.Unlock()
	v.seen = v.shared.version
	if v.shared.cfg == nil {
		return entities.TokenConfig{}, entities.ErrConfigNotFound
	}
	return v.shared.cfg.Clone(), nil
}

func (v *processView) Save(ctx context.Context, cfg entities.TokenConfig) error {
	if hook := v.beforeSave; hook != nil {
		v.beforeSave = nil
		hook()
	}
	v.shared.mu.Lock()
	defer v.shared.mu.Unlock()
	if v.shared.version != v.seen {
		return entities.ErrConfigConflict
	}
	c := cfg.Clone()
	v.shared.cfg = &c
	v.shared.saves++
	v.shared.version++
	v.seen = v.shared.version
	return nil
}

type recordingSink struct {
	mu       sync.Mutex
	sensors  []entities.SensorRecord
	commands []entities.CommandRecord
	err      error
}

func (r *recordingSink) InsertSensor(ctx context.Context, rec entities.SensorRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sensors = append(r.sensors, rec)
	return nil
}

func (r *recordingSink) InsertCommand(ctx context.Context, rec entities.CommandRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.commands = append(r.commands, rec)
	return nil
}

var errSinkDown = errors.New("sink down")

func newTestStore(admin string, users ...string) (*TokenStore, *memoryConfigRepo) {
	repo := &memoryConfigRepo{cfg: &entities.TokenConfig{AdminToken: admin, UserTokens: users}}
	store, err := LoadTokenStore(context.Background(), repo, NewTokenGenerator(AdminTokenBytes))
	if err != nil {
		panic(err)
	}
	return store, repo
}
