package storage

import (
	"context"
	"io"
)

// ObjectStorage captures the S3-compatible operations the simulator needs:
// reading historical input files and publishing reports.
type ObjectStorage interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
	UploadObject(ctx context.Context, key string, data []byte) error
}
