package storage

import (
	"context"
	"fmt"

	benchErrors "github.com/arkilian/readbench/internal/errors"
)

// Publish uploads localPath to objectPath, refusing to replace an existing
// object. Run reports are keyed by run ID, so a collision means two runs
// shared an ID or the same report is being published twice.
func Publish(ctx context.Context, store ObjectStorage, localPath, objectPath string) error {
	exists, err := store.Exists(ctx, objectPath)
	if err != nil {
		return benchErrors.NewStorageError(benchErrors.CodeUploadFailed,
			fmt.Sprintf("failed to check %s", objectPath), err)
	}
	if exists {
		return benchErrors.NewStorageError(benchErrors.CodeObjectExists,
			fmt.Sprintf("refusing to overwrite %s", objectPath), ErrObjectExists)
	}

	if err := store.Upload(ctx, localPath, objectPath); err != nil {
		return benchErrors.NewStorageError(benchErrors.CodeUploadFailed,
			fmt.Sprintf("failed to upload %s", objectPath), err)
	}
	return nil
}
