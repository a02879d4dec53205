package storage

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nguyentantai21042004/summarai/internal/logger"
)

// Config holds the S3-compatible endpoint settings
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

type implArchiver struct {
	client *minio.Client
	bucket string
	prefix string
	logger logger.Logger
}

// New connects to the endpoint and creates the bucket when it is missing
func New(ctx context.Context, cfg Config, log logger.Logger) (Archiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info(ctx, "Created bucket %s", cfg.Bucket)
	}

	return &implArchiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: log,
	}, nil
}

func (a *implArchiver) Upload(ctx context.Context, localPath, group string) (string, error) {
	object := ObjectName(a.prefix, group, filepath.Base(localPath))
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := a.client.FPutObject(ctx, a.bucket, object, localPath, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	a.logger.Debug(ctx, "Archived %s (%d bytes) to s3://%s/%s", localPath, info.Size, a.bucket, object)
	return fmt.Sprintf("s3://%s/%s", a.bucket, object), nil
}

// ObjectName joins the non-empty parts with "/" after trimming slashes
func ObjectName(prefix, group, filename string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, group, filename} {
		if p = strings.Trim(p, "/ "); p != "" {
			parts = append(parts, p)
		}
	}
	return path.Join(parts...)
}
