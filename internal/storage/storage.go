// Package storage provides object storage sinks for publishing run reports.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectExists = errors.New("object already exists")
	ErrUploadFailed = errors.New("upload failed")
)

// ObjectStorage abstracts the object storage operations report publishing
// needs. Implementations include S3 and the local filesystem.
type ObjectStorage interface {
	// Upload uploads a file to object storage.
	// localPath is the path to the local file to upload.
	// objectPath is the destination path in object storage.
	Upload(ctx context.Context, localPath, objectPath string) error

	// Exists checks if an object exists in storage.
	Exists(ctx context.Context, objectPath string) (bool, error)
}
