// Package configfile persists the token config as YAML on local disk.
package configfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
)

// Encode renders cfg in the on-disk format (ADMIN_API / API_keys).
func Encode(cfg entities.TokenConfig) ([]byte, error) {
	if cfg.UserTokens == nil {
		cfg.UserTokens = []string{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("falha ao serializar configuração: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (entities.TokenConfig, error) {
	var cfg entities.TokenConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return entities.TokenConfig{}, fmt.Errorf("falha ao ler configuração YAML: %w", err)
	}
	return cfg, nil
}

type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Load(ctx context.Context) (entities.TokenConfig, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entities.TokenConfig{}, entities.ErrConfigNotFound
	}
	if err != nil {
		return entities.TokenConfig{}, fmt.Errorf("falha ao abrir %s: %w", r.path, err)
	}
	return Decode(data)
}

// Save writes to a temporary file in the same directory and renames it over the target.
func (r *FileRepository) Save(ctx context.Context, cfg entities.TokenConfig) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("falha ao criar diretório %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("falha ao criar arquivo temporário: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("falha ao escrever arquivo temporário: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("falha ao sincronizar arquivo temporário: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("falha ao fechar arquivo temporário: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("falha ao ajustar permissões: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("falha ao substituir %s: %w", r.path, err)
	}
	return nil
}
