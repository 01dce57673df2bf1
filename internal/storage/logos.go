// Package storage uploads producer logos to an S3-compatible bucket and
// returns their public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp" // WebP decode support

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mifmarket/directory-api/internal/config"
)

// MaxLogoSize caps logo uploads. The browser enforces the same limit, but
// the server re-validates because the client check is trivially bypassed.
const MaxLogoSize = 5 * 1024 * 1024

// Upload validation errors
var (
	ErrLogoTooLarge = errors.New("logo exceeds the 5 MB size limit")
	ErrNotAnImage   = errors.New("uploaded file is not a supported image (png, jpeg, gif, webp)")
)

var contentTypeByFormat = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// S3Putter is the S3 surface the uploader needs
type S3Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// LogoStore uploads validated logo images
type LogoStore struct {
	client        S3Putter
	bucket        string
	publicBaseURL string
}

// NewLogoStore creates a logo store from storage configuration
func NewLogoStore(ctx context.Context, cfg config.StorageConfig) (*LogoStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &LogoStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// NewLogoStoreWithClient builds a store around an existing client (tests)
func NewLogoStoreWithClient(client S3Putter, bucket, publicBaseURL string) *LogoStore {
	return &LogoStore{client: client, bucket: bucket, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// ValidateLogo checks size and decodes the image header, returning the
// detected content type.
func ValidateLogo(data []byte) (string, error) {
	if len(data) > MaxLogoSize {
		return "", ErrLogoTooLarge
	}
	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", ErrNotAnImage
	}
	contentType, ok := contentTypeByFormat[format]
	if !ok {
		return "", ErrNotAnImage
	}
	return contentType, nil
}

// Upload validates the image, writes it to the bucket (upserting any
// previous logo at the same path) and returns the public URL.
func (s *LogoStore) Upload(ctx context.Context, path string, data []byte) (string, error) {
	contentType, err := ValidateLogo(data)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("uploading logo: %w", err)
	}

	return s.publicBaseURL + "/" + strings.TrimLeft(path, "/"), nil
}
