package gateways

import (
	"context"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
)

type SensorRepository interface {
	InsertSensor(ctx context.Context, record entities.SensorRecord) error
}

type CommandRepository interface {
	InsertCommand(ctx context.Context, record entities.CommandRecord) error
}

// TokenConfigRepository loads and saves the whole token config at once.
// Load returns entities.ErrConfigNotFound when nothing has been saved yet.
// Save must replace the stored blob atomically. Repositories shared between
// processes may reject a Save with entities.ErrConfigConflict when the blob
// changed after their last Load; callers reload and try again.
type TokenConfigRepository interface {
	Load(ctx context.Context) (entities.TokenConfig, error)
	Save(ctx context.Context, cfg entities.TokenConfig) error
}
