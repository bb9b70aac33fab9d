package storage

import (
	"context"
	"io"
)

// Uploader writes a blob and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error)
	Close() error
}
