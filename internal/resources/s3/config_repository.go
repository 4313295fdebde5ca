package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
	"github.com/patrik-rangel/hvac-telemetry-api/internal/resources/configfile"
)

const yamlContentType = "application/yaml"

// ConfigRepository keeps the token config as a single YAML object.
// PutObject replaces the object atomically, so readers never see a partial file.
// Save only succeeds against the version seen by the last Load and returns
// entities.ErrConfigConflict when another process wrote in between.
type ConfigRepository struct {
	reader *S3Resource
	writer *S3ResourceWriter
	bucket string
	key    string

	mu   sync.Mutex
	etag string
}

// NewConfigRepository loads the default AWS configuration (env, shared files, IAM role).
func NewConfigRepository(ctx context.Context, bucket, key string) (*ConfigRepository, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar a configuração AWS: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &ConfigRepository{
		reader: NewS3Resource(client),
		writer: NewS3ResourceWriter(client),
		bucket: bucket,
		key:    key,
	}, nil
}

func (r *ConfigRepository) Load(ctx context.Context) (entities.TokenConfig, error) {
	body, etag, err := r.reader.GetObjectStream(ctx, r.bucket, r.key)
	if errors.Is(err, ErrObjectNotFound) {
		r.setETag("")
		return entities.TokenConfig{}, entities.ErrConfigNotFound
	}
	if err != nil {
		return entities.TokenConfig{}, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return entities.TokenConfig{}, fmt.Errorf("falha ao ler s3://%s/%s: %w", r.bucket, r.key, err)
	}
	cfg, err := configfile.Decode(data)
	if err != nil {
		return entities.TokenConfig{}, err
	}
	r.setETag(etag)
	return cfg, nil
}

func (r *ConfigRepository) Save(ctx context.Context, cfg entities.TokenConfig) error {
	data, err := configfile.Encode(cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	etag, err := r.writer.UploadFile(ctx, r.bucket, r.key, data, yamlContentType, r.etag)
	if errors.Is(err, ErrPreconditionFailed) {
		return entities.ErrConfigConflict
	}
	if err != nil {
		return err
	}
	r.etag = etag
	return nil
}

func (r *ConfigRepository) setETag(etag string) {
	r.mu.Lock()
	r.etag = etag
	r.mu.Unlock()
}
