// internal/storage/minio.go
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/resaleworks/bookkeeper/internal/config"
)

// MinioClient implements ReceiptStorage against MinIO or any S3-compatible
// endpoint.
type MinioClient struct {
	client *minio.Client
	bucket string
}

func NewMinioClient(cfg config.ReceiptsConfig) (*MinioClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("receipts endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("receipts credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("receipts bucket must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	return &MinioClient{client: client, bucket: cfg.Bucket}, nil
}

func (c *MinioClient) UploadReceipt(ctx context.Context, key string, contentType string, size int64, body io.Reader) (string, error) {
	info, err := c.client.PutObject(ctx, c.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("receipt upload %s: %w", key, err)
	}
	return info.Key, nil
}

func (c *MinioClient) DownloadReceipt(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("receipt download %s: %w", key, err)
	}
	return obj, nil
}

func (c *MinioClient) DeleteReceipt(ctx context.Context, key string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("receipt delete %s: %w", key, err)
	}
	return nil
}

var _ ReceiptStorage = (*MinioClient)(nil)
