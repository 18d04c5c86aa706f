// internal/storage/storage.go
package storage

import (
	"context"
	"io"
)

// ReceiptStorage captures the minimal object operations receipt attachment
// needs. Uploads return the stored object key.
type ReceiptStorage interface {
	UploadReceipt(ctx context.Context, key string, contentType string, size int64, body io.Reader) (string, error)
	DownloadReceipt(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteReceipt(ctx context.Context, key string) error
}
