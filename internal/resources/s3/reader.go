package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrObjectNotFound is returned when the requested key does not exist.
var ErrObjectNotFound = errors.New("objeto não encontrado no S3")

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Resource struct {
	client objectGetter
}

func NewS3Resource(client *s3.Client) *S3Resource {
	return &S3Resource{client: client}
}

// GetObjectStream baixa um objeto do S3 e retorna seu conteúdo como um io.ReadCloser,
// junto com o ETag da versão lida.
// É responsabilidade do chamador fechar o io.ReadCloser.
func (a *S3Resource) GetObjectStream(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, string, error) {
	slog.Debug("obtendo stream do objeto", "bucket", bucketName, "key", objectKey)

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	}

	resp, err := a.client.GetObject(ctx, input)
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("falha ao obter stream do objeto S3 %s/%s: %w", bucketName, objectKey, err)
	}

	return resp.Body, aws.ToString(resp.ETag), nil
}
