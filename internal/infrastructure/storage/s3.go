package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/crickarena/fantasy-cricket/internal/usecase"
)

type S3UploaderConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
}

type s3Uploader struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3Uploader builds an uploader for AWS S3 or any S3-compatible store.
// A non-empty Endpoint points the client at alternatives like Cloudflare R2.
func NewS3Uploader(ctx context.Context, cfg S3UploaderConfig) (usecase.AssetStore, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("storage credentials and bucket are required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws sdk config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if strings.TrimSpace(cfg.Endpoint) != "" {
			o.BaseEndpoint = aws.String(strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"))
		}
	})

	return &s3Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
	}, nil
}

func (u *s3Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (usecase.StoredAsset, error) {
	if strings.TrimSpace(key) == "" {
		return usecase.StoredAsset{}, fmt.Errorf("object key is required")
	}

	out, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return usecase.StoredAsset{}, fmt.Errorf("put object key=%s: %w", key, err)
	}

	etag := ""
	if out.ETag != nil {
		// S3-compatible APIs wrap the ETag in quotes.
		etag = strings.Trim(*out.ETag, "\"")
	}

	return usecase.StoredAsset{
		Key:      key,
		Location: u.PublicURL(key),
		ETag:     etag,
	}, nil
}

func (u *s3Uploader) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("object key is required")
	}

	if _, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object key=%s: %w", key, err)
	}
	return nil
}

func (u *s3Uploader) PublicURL(key string) string {
	if u.publicBaseURL == "" || key == "" {
		return ""
	}
	return u.publicBaseURL + "/" + strings.TrimPrefix(key, "/")
}
