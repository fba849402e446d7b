package uploads

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/user/inkwell-go/config"
)

// PresignedPut is a signed request a browser can replay to upload one object.
type PresignedPut struct {
	URL     string
	Method  string
	Headers http.Header
}

// Presigner signs object uploads.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (*PresignedPut, error)
}

// S3Presigner signs PUTs against an S3-compatible bucket.
type S3Presigner struct {
	client *s3.PresignClient
	bucket string
}

// NewS3Presigner loads the AWS configuration for cfg. Static credentials
// are used when an access key is configured, and a custom endpoint switches
// to path-style addressing for MinIO and similar stores.
func NewS3Presigner(ctx context.Context, cfg *config.UploadConfig) (*S3Presigner, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Presigner{client: s3.NewPresignClient(client), bucket: cfg.Bucket}, nil
}

func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (*PresignedPut, error) {
	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return nil, fmt.Errorf("presign put %s: %w", key, err)
	}
	return &PresignedPut{URL: req.URL, Method: req.Method, Headers: req.SignedHeader}, nil
}
