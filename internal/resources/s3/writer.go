package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ErrPreconditionFailed is returned when a conditional upload finds the object
// in a different state than expected.
var ErrPreconditionFailed = errors.New("objeto S3 alterado desde a última leitura")

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3ResourceWriter struct {
	client objectPutter
}

func NewS3ResourceWriter(client *s3.Client) *S3ResourceWriter {
	return &S3ResourceWriter{client: client}
}

// UploadFile faz o upload do conteúdo de um slice de bytes para um bucket S3
// e retorna o ETag da nova versão.
// Com ifMatch vazio o upload só acontece se o objeto ainda não existir;
// caso contrário só substitui a versão com esse ETag.
func (a *S3ResourceWriter) UploadFile(ctx context.Context, bucketName, objectKey string, fileContent []byte, contentType, ifMatch string) (string, error) {
	slog.Debug("iniciando upload", "bucket", bucketName, "key", objectKey, "content_type", contentType)

	putObjectInput := &s3.PutObjectInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(fileContent),
		ContentType: aws.String(contentType),
	}
	if ifMatch == "" {
		putObjectInput.IfNoneMatch = aws.String("*")
	} else {
		putObjectInput.IfMatch = aws.String(ifMatch)
	}

	resp, err := a.client.PutObject(ctx, putObjectInput)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "PreconditionFailed", "ConditionalRequestConflict":
				return "", ErrPreconditionFailed
			}
		}
		return "", fmt.Errorf("falha ao fazer upload para S3 para a chave '%s': %w", objectKey, err)
	}

	return aws.ToString(resp.ETag), nil
}
