package objectstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("object storage is not configured")

// UploadURL is a presigned PUT request the client performs itself.
type UploadURL struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	Key       string            `json:"key"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string) (*UploadURL, error)
}

type s3Presigner struct {
	client *s3.PresignClient
	bucket string
	expiry time.Duration
}

// NewS3Presigner loads the default AWS credential chain. AWS_ENDPOINT_URL_S3
// is honoured by the SDK for local S3-compatible stores.
func NewS3Presigner(ctx context.Context, bucket string, expiry time.Duration) (Presigner, error) {
	if bucket == "" {
		return nil, ErrDisabled
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return &s3Presigner{client: s3.NewPresignClient(client), bucket: bucket, expiry: expiry}, nil
}

func (p *s3Presigner) PresignPut(ctx context.Context, key, contentType string) (*UploadURL, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	presigned, err := p.client.PresignPutObject(ctx, input, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign put object: %w", err)
	}

	headers := make(map[string]string)
	for k, v := range presigned.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &UploadURL{
		URL:       presigned.URL,
		Method:    presigned.Method,
		Headers:   headers,
		Key:       key,
		ExpiresAt: time.Now().Add(p.expiry),
	}, nil
}
